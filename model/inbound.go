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

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inbound file statuses. A file is NEW from retrieval until the parser
// consumes it exactly once.
const (
	InboundStatusNew   = "NEW"
	InboundStatusDone  = "DONE"
	InboundStatusError = "ERROR"
)

// Prep line statuses. NEW lines await materialization into a fulfillment or
// receipt line; DONE and ERROR are terminal.
const (
	PrepStatusNew   = "NEW"
	PrepStatusDone  = "DONE"
	PrepStatusError = "ERROR"
)

// InboundFile is a return file downloaded from the warehouse outbound
// directory. Topic is inferred from the filename prefix and stays empty when
// the prefix is not recognized.
type InboundFile struct {
	ID           int64     `json:"-"`
	FileID       string    `json:"file_id"`
	FileName     string    `json:"file_name"`
	StoredPath   string    `json:"stored_path"`
	Topic        Topic     `json:"topic,omitempty"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PrepLine is one resolved (order, item, lot, quantity) fact extracted from
// an inbound file, pending materialization into an ERP document line.
type PrepLine struct {
	ID            int64           `json:"-"`
	PrepLineID    string          `json:"prep_line_id"`
	InboundFileID string          `json:"inbound_file_id"`
	OrderNumber   string          `json:"order_number"`
	TransactionID string          `json:"transaction_id,omitempty"`
	ItemID        string          `json:"item_id,omitempty"`
	ItemCode      string          `json:"item_code,omitempty"`
	ERPLineNo     int             `json:"erp_line_no,omitempty"`
	LotNumber     string          `json:"lot_number,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	LineStatus    string          `json:"line_status"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
