package database

// schema is the single source of truth for the store's tables. Monetary
// amounts and quantities are stored as decimal strings; sqlite never does
// arithmetic on them.
const schema = `
CREATE TABLE IF NOT EXISTS stocks (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    symbol     TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    sector     TEXT NOT NULL DEFAULT '',
    grade      TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS portfolios (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    name               TEXT NOT NULL,
    currency           TEXT NOT NULL,
    max_positions      INTEGER NOT NULL DEFAULT 0,
    max_risk_per_trade REAL NOT NULL DEFAULT 0,
    is_active          INTEGER NOT NULL DEFAULT 1,
    created_at         TEXT NOT NULL,
    updated_at         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    portfolio_id   INTEGER NOT NULL REFERENCES portfolios(id),
    stock_id       INTEGER NOT NULL REFERENCES stocks(id),
    symbol         TEXT NOT NULL,
    side           TEXT NOT NULL CHECK (side IN ('buy', 'sell')),
    quantity       TEXT NOT NULL,
    price_amount   TEXT NOT NULL,
    price_currency TEXT NOT NULL,
    fees_amount    TEXT NOT NULL DEFAULT '0',
    fees_currency  TEXT NOT NULL DEFAULT '',
    executed_at    TEXT NOT NULL,
    created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_portfolio
    ON transactions(portfolio_id, executed_at, id);

CREATE TABLE IF NOT EXISTS targets (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    stock_id         INTEGER NOT NULL UNIQUE REFERENCES stocks(id),
    pivot_amount     TEXT NOT NULL,
    pivot_currency   TEXT NOT NULL,
    failure_amount   TEXT NOT NULL,
    failure_currency TEXT NOT NULL,
    notes            TEXT NOT NULL DEFAULT '',
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS balances (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    portfolio_id   INTEGER NOT NULL REFERENCES portfolios(id),
    value_amount   TEXT NOT NULL,
    value_currency TEXT NOT NULL,
    recorded_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_balances_portfolio
    ON balances(portfolio_id, recorded_at);

CREATE TABLE IF NOT EXISTS journal_entries (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    portfolio_id INTEGER NOT NULL DEFAULT 0,
    title        TEXT NOT NULL,
    body         TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_outbox (
    event_id     TEXT PRIMARY KEY,
    event_type   TEXT NOT NULL,
    occurred_at  TEXT NOT NULL,
    sequence     INTEGER NOT NULL,
    payload      BLOB,
    published_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_outbox_pending
    ON event_outbox(occurred_at, sequence) WHERE published_at IS NULL;
`
