package net

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// Errorf replies to an HTTP request with the specified error, also logging it to stderr.
func Errorf(w http.ResponseWriter, code int, msgfmt string, args ...interface{}) {
	http.Error(w, fmt.Sprintf(msgfmt, args...), code)
	log.Printf(msgfmt, args...)
}

// JSON replies to an HTTP request with v marshaled as JSON.
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Printf("sending JSON response: %s", err)
	}
}
