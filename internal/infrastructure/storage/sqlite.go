package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite opens the record store and creates missing tables
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		return nil, errors.New("db path must not be empty")
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sku TEXT NOT NULL DEFAULT '',
	manufacturer_reference TEXT NOT NULL DEFAULT '',
	barcode TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	brand TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	purchase_cost TEXT NOT NULL DEFAULT '0',
	sale_price TEXT NOT NULL DEFAULT '0',
	short_description TEXT NOT NULL DEFAULT '',
	long_description TEXT NOT NULL DEFAULT '',
	tech_specs TEXT NOT NULL DEFAULT '[]',
	datasheet_url TEXT NOT NULL DEFAULT '',
	image_ref TEXT NOT NULL DEFAULT '',
	image_is_placeholder INTEGER NOT NULL DEFAULT 0,
	videos TEXT NOT NULL DEFAULT '[]',
	blog_draft TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_sku ON products (sku COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_products_mref ON products (manufacturer_reference COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS customers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	reference TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	company TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	salesperson TEXT NOT NULL DEFAULT '',
	activity TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS asset_jobs (
	id TEXT PRIMARY KEY,
	product_id INTEGER NOT NULL,
	assets TEXT NOT NULL,
	force_assets TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	log TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_asset_jobs_status ON asset_jobs (status, product_id);

CREATE TABLE IF NOT EXISTS provider_usage (
	provider TEXT NOT NULL,
	day TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (provider, day)
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
