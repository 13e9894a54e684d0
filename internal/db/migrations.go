package db

import (
	"context"
	"fmt"
)

// schema is the full relational schema. Statements are idempotent so
// Migrate can run against an already-initialized database.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
    customer_id     BIGSERIAL PRIMARY KEY,
    customer_number CHAR(10) NOT NULL UNIQUE,
    full_name       VARCHAR(200) NOT NULL,
    email           VARCHAR(320) NOT NULL UNIQUE,
    password_hash   VARCHAR(100) NOT NULL,
    verified        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS cards (
    card_id     BIGSERIAL PRIMARY KEY,
    card_number CHAR(16) NOT NULL UNIQUE,
    customer_id BIGINT NOT NULL REFERENCES customers(customer_id) ON DELETE CASCADE,
    balance     NUMERIC(10,2) NOT NULL DEFAULT 0.00 CHECK (balance >= 0),
    status      VARCHAR(20) NOT NULL DEFAULT 'Active',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cards_customer_id ON cards(customer_id);

CREATE TABLE IF NOT EXISTS transactions (
    transaction_id   BIGSERIAL PRIMARY KEY,
    card_id          BIGINT NOT NULL REFERENCES cards(card_id) ON DELETE CASCADE,
    counterpart_id   BIGINT REFERENCES transactions(transaction_id) ON DELETE SET NULL,
    amount           NUMERIC(10,2) NOT NULL CHECK (amount > 0),
    transaction_type VARCHAR(20) NOT NULL,
    description      VARCHAR(500) NOT NULL DEFAULT '',
    status           VARCHAR(20) NOT NULL DEFAULT 'Completed',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_transactions_card_id ON transactions(card_id);

CREATE TABLE IF NOT EXISTS idempotency_keys (
    key             VARCHAR(255) NOT NULL,
    request_path    VARCHAR(255) NOT NULL,
    response_status INT NOT NULL,
    response_body   TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (key, request_path)
);
`

// Migrate applies the embedded schema.
func (db *DB) Migrate(ctx context.Context) error {
	db.logger.Info("applying database schema")

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	db.logger.Info("database schema applied")
	return nil
}
