/*
Copyright 2025 Ledgerline Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"database/sql"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ledgerline/wmsbridge/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}

	// The database may still be coming up when the workers start.
	ping := func() error { return db.Ping() }
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(ping, policy); err != nil {
		logrus.WithError(err).Error("database connection failed")
		return nil, errors.Wrap(err, "pinging database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// IsUniqueViolation reports whether an error is a postgres unique-constraint
// violation. The enqueue fast path checks for an open entry first; this
// closes the remaining check-then-act window.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// Migrate creates the pipeline-owned tables and the read-side views of the
// ERP records. Idempotent; safe to run at every startup.
func Migrate(db *sql.DB) error {
	for _, ddl := range migrations {
		if _, err := db.Exec(ddl); err != nil {
			return errors.Wrap(err, "running schema migration")
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS queue_entries (
		id SERIAL PRIMARY KEY,
		entry_id TEXT NOT NULL UNIQUE,
		topic TEXT NOT NULL,
		source_record_type TEXT NOT NULL,
		source_record_id TEXT NOT NULL,
		status TEXT NOT NULL,
		record_ref TEXT NOT NULL DEFAULT '',
		output_file_id TEXT NOT NULL DEFAULT '',
		last_error TEXT NOT NULL DEFAULT '',
		status_changed_at TIMESTAMP NOT NULL DEFAULT NOW(),
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE queue_entries
		ADD COLUMN IF NOT EXISTS status_changed_at TIMESTAMP NOT NULL DEFAULT NOW()`,
	// At most one non-terminal entry per (topic, record type, record id).
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_queue_entries_open_key
		ON queue_entries (topic, source_record_type, source_record_id)
		WHERE status NOT IN ('SENT', 'ERROR')`,
	`CREATE TABLE IF NOT EXISTS inbound_files (
		id SERIAL PRIMARY KEY,
		file_id TEXT NOT NULL UNIQUE,
		file_name TEXT NOT NULL,
		stored_path TEXT NOT NULL,
		topic TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS prep_lines (
		id SERIAL PRIMARY KEY,
		prep_line_id TEXT NOT NULL UNIQUE,
		inbound_file_id TEXT NOT NULL REFERENCES inbound_files(file_id),
		order_number TEXT NOT NULL DEFAULT '',
		transaction_id TEXT NOT NULL DEFAULT '',
		item_id TEXT NOT NULL DEFAULT '',
		item_code TEXT NOT NULL DEFAULT '',
		erp_line_no INTEGER NOT NULL DEFAULT 0,
		lot_number TEXT NOT NULL DEFAULT '',
		quantity NUMERIC NOT NULL DEFAULT 0,
		line_status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		internal_id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		base_unit TEXT NOT NULL DEFAULT '',
		barcode TEXT NOT NULL DEFAULT '',
		family TEXT NOT NULL DEFAULT '',
		weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		length_cm DOUBLE PRECISION NOT NULL DEFAULT 0,
		width_cm DOUBLE PRECISION NOT NULL DEFAULT 0,
		height_cm DOUBLE PRECISION NOT NULL DEFAULT 0,
		units_per_case INTEGER NOT NULL DEFAULT 0,
		cases_per_layer INTEGER NOT NULL DEFAULT 0,
		layers_per_pal INTEGER NOT NULL DEFAULT 0,
		lot_managed BOOLEAN NOT NULL DEFAULT FALSE,
		shelf_life_days INTEGER NOT NULL DEFAULT 0,
		inactive BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales_orders (
		internal_id TEXT PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		location_id TEXT NOT NULL DEFAULT '',
		customer_code TEXT NOT NULL DEFAULT '',
		customer_name TEXT NOT NULL DEFAULT '',
		ship_addressee TEXT NOT NULL DEFAULT '',
		ship_addr1 TEXT NOT NULL DEFAULT '',
		ship_addr2 TEXT NOT NULL DEFAULT '',
		ship_zip TEXT NOT NULL DEFAULT '',
		ship_city TEXT NOT NULL DEFAULT '',
		ship_country TEXT NOT NULL DEFAULT '',
		ship_phone TEXT NOT NULL DEFAULT '',
		ship_email TEXT NOT NULL DEFAULT '',
		carrier_code TEXT NOT NULL DEFAULT '',
		ship_date TIMESTAMP,
		tran_date TIMESTAMP NOT NULL DEFAULT NOW(),
		customer_po TEXT NOT NULL DEFAULT '',
		memo TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sales_order_lines (
		id SERIAL PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES sales_orders(internal_id),
		line_no INTEGER NOT NULL,
		item_id TEXT NOT NULL,
		item_code TEXT NOT NULL DEFAULT '',
		item_description TEXT NOT NULL DEFAULT '',
		quantity NUMERIC NOT NULL DEFAULT 0,
		unit_code TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sales_order_lots (
		id SERIAL PRIMARY KEY,
		order_id TEXT NOT NULL,
		line_no INTEGER NOT NULL,
		lot_number TEXT NOT NULL,
		quantity NUMERIC NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_orders (
		internal_id TEXT PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		location_id TEXT NOT NULL DEFAULT '',
		vendor_code TEXT NOT NULL DEFAULT '',
		vendor_name TEXT NOT NULL DEFAULT '',
		expected_date TIMESTAMP,
		tran_date TIMESTAMP NOT NULL DEFAULT NOW(),
		memo TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_order_lines (
		id SERIAL PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES purchase_orders(internal_id),
		line_no INTEGER NOT NULL,
		item_id TEXT NOT NULL,
		item_code TEXT NOT NULL DEFAULT '',
		item_description TEXT NOT NULL DEFAULT '',
		quantity NUMERIC NOT NULL DEFAULT 0,
		unit_code TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_order_lots (
		id SERIAL PRIMARY KEY,
		order_id TEXT NOT NULL,
		line_no INTEGER NOT NULL,
		lot_number TEXT NOT NULL,
		quantity NUMERIC NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS lot_numbers (
		internal_id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		number TEXT NOT NULL,
		UNIQUE (item_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS item_fulfillments (
		fulfillment_id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		location_id TEXT NOT NULL DEFAULT '',
		tran_date TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS item_fulfillment_lines (
		id SERIAL PRIMARY KEY,
		fulfillment_id TEXT NOT NULL REFERENCES item_fulfillments(fulfillment_id),
		order_line_no INTEGER NOT NULL,
		item_id TEXT NOT NULL,
		quantity NUMERIC NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS item_fulfillment_lots (
		id SERIAL PRIMARY KEY,
		fulfillment_id TEXT NOT NULL,
		order_line_no INTEGER NOT NULL,
		lot_internal_id TEXT NOT NULL,
		lot_number TEXT NOT NULL,
		quantity NUMERIC NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS item_receipts (
		receipt_id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		location_id TEXT NOT NULL DEFAULT '',
		tran_date TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS item_receipt_lines (
		id SERIAL PRIMARY KEY,
		receipt_id TEXT NOT NULL REFERENCES item_receipts(receipt_id),
		order_line_no INTEGER NOT NULL,
		item_id TEXT NOT NULL,
		quantity NUMERIC NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS item_receipt_lots (
		id SERIAL PRIMARY KEY,
		receipt_id TEXT NOT NULL,
		order_line_no INTEGER NOT NULL,
		lot_internal_id TEXT NOT NULL,
		lot_number TEXT NOT NULL,
		quantity NUMERIC NOT NULL DEFAULT 0
	)`,
}
