package gitpaid

const schema = `
CREATE TABLE IF NOT EXISTS contracts (
  utxo_id BLOB NOT NULL PRIMARY KEY,
  owner_key BLOB NOT NULL,
  certifier_key BLOB NOT NULL,
  value INTEGER NOT NULL,
  spent INTEGER NOT NULL DEFAULT 0,
  created_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transitions (
  seq INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
  utxo_id BLOB NOT NULL,
  successor_id BLOB,
  kind TEXT NOT NULL,
  amount INTEGER NOT NULL,
  residual INTEGER NOT NULL,
  recipient BLOB,
  event_id TEXT NOT NULL DEFAULT '',
  commitment BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS pins (
  name TEXT NOT NULL PRIMARY KEY,
  seq INTEGER NOT NULL
);
`
