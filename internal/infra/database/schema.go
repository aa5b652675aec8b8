package database

const postgresSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id            TEXT PRIMARY KEY,
    display_name  TEXT NOT NULL DEFAULT '',
    last_balance  NUMERIC(14,2) NOT NULL DEFAULT 0,
    last_synced   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS bills (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    category       TEXT NOT NULL DEFAULT '',
    amount         NUMERIC(14,2) NOT NULL,
    frequency      TEXT NOT NULL,
    repeats_every  INTEGER NOT NULL DEFAULT 1,
    start_date     TEXT NOT NULL,
    end_date       TEXT,
    owner          TEXT NOT NULL DEFAULT '',
    note           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS settings (
    id                       INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    projection_days          INTEGER NOT NULL DEFAULT 7,
    balance_threshold        NUMERIC(14,2) NOT NULL DEFAULT 1000,
    manual_balance_override  NUMERIC(14,2),
    last_projected_at        TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS projections (
    proj_date          DATE PRIMARY KEY,
    projected_balance  NUMERIC(14,2) NOT NULL,
    highest            BOOLEAN NOT NULL DEFAULT FALSE,
    lowest             BOOLEAN NOT NULL DEFAULT FALSE,
    bills              JSONB NOT NULL DEFAULT '[]'::jsonb
);
`

// Amounts are stored as decimal text and timestamps as unix milliseconds.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id            TEXT PRIMARY KEY,
    display_name  TEXT NOT NULL DEFAULT '',
    last_balance  TEXT NOT NULL DEFAULT '0',
    last_synced   INTEGER
);

CREATE TABLE IF NOT EXISTS bills (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    category       TEXT NOT NULL DEFAULT '',
    amount         TEXT NOT NULL,
    frequency      TEXT NOT NULL,
    repeats_every  INTEGER NOT NULL DEFAULT 1,
    start_date     TEXT NOT NULL,
    end_date       TEXT,
    owner          TEXT NOT NULL DEFAULT '',
    note           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS settings (
    id                       INTEGER PRIMARY KEY CHECK (id = 1),
    projection_days          INTEGER NOT NULL DEFAULT 7,
    balance_threshold        TEXT NOT NULL DEFAULT '1000',
    manual_balance_override  TEXT,
    last_projected_at        INTEGER
);

CREATE TABLE IF NOT EXISTS projections (
    proj_date          TEXT PRIMARY KEY,
    projected_balance  TEXT NOT NULL,
    highest            INTEGER NOT NULL DEFAULT 0,
    lowest             INTEGER NOT NULL DEFAULT 0,
    bills              TEXT NOT NULL DEFAULT '[]'
);
`
