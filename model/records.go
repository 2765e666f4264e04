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

// Business records are owned by the ERP side of the database. The pipeline
// only reads them and appends fulfillment/receipt documents; it never deletes
// or rewrites an order or item.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is the master-data view of an inventory item, flattened to the fields
// the warehouse schema consumes.
type Item struct {
	InternalID    string    `json:"internal_id"`
	Code          string    `json:"code"`
	DisplayName   string    `json:"display_name"`
	Description   string    `json:"description"`
	BaseUnit      string    `json:"base_unit"`
	Barcode       string    `json:"barcode"`
	Family        string    `json:"family"`
	WeightKG      float64   `json:"weight_kg"`
	LengthCM      float64   `json:"length_cm"`
	WidthCM       float64   `json:"width_cm"`
	HeightCM      float64   `json:"height_cm"`
	UnitsPerCase  int       `json:"units_per_case"`
	CasesPerLayer int       `json:"cases_per_layer"`
	LayersPerPal  int       `json:"layers_per_pal"`
	LotManaged    bool      `json:"lot_managed"`
	ShelfLifeDays int       `json:"shelf_life_days"`
	Inactive      bool      `json:"inactive"`
	CreatedAt     time.Time `json:"created_at"`
}

// LotDetail is one lot assignment on an order line. Orders without detailed
// inventory assignment carry no lot details and export as a single row per
// line.
type LotDetail struct {
	LotNumber string          `json:"lot_number"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// SalesOrderLine is one sellable line of a sales order.
type SalesOrderLine struct {
	LineNo          int             `json:"line_no"`
	ItemID          string          `json:"item_id"`
	ItemCode        string          `json:"item_code"`
	ItemDescription string          `json:"item_description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCode        string          `json:"unit_code"`
	LotDetails      []LotDetail     `json:"lot_details,omitempty"`
}

// SalesOrder is the outbound preparation order sent to the warehouse.
type SalesOrder struct {
	InternalID     string           `json:"internal_id"`
	OrderNumber    string           `json:"order_number"`
	LocationID     string           `json:"location_id"`
	CustomerCode   string           `json:"customer_code"`
	CustomerName   string           `json:"customer_name"`
	ShipAddressee  string           `json:"ship_addressee"`
	ShipAddr1      string           `json:"ship_addr1"`
	ShipAddr2      string           `json:"ship_addr2"`
	ShipZip        string           `json:"ship_zip"`
	ShipCity       string           `json:"ship_city"`
	ShipCountry    string           `json:"ship_country"`
	ShipPhone      string           `json:"ship_phone"`
	ShipEmail      string           `json:"ship_email"`
	CarrierCode    string           `json:"carrier_code"`
	ShipDate       time.Time        `json:"ship_date"`
	TranDate       time.Time        `json:"tran_date"`
	CustomerPO     string           `json:"customer_po"`
	Memo           string           `json:"memo"`
	Lines          []SalesOrderLine `json:"lines"`
}

// PurchaseOrderLine is one expected line of an inbound reception.
type PurchaseOrderLine struct {
	LineNo          int             `json:"line_no"`
	ItemID          string          `json:"item_id"`
	ItemCode        string          `json:"item_code"`
	ItemDescription string          `json:"item_description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCode        string          `json:"unit_code"`
	LotDetails      []LotDetail     `json:"lot_details,omitempty"`
}

// PurchaseOrder is the expected reception announced to the warehouse.
type PurchaseOrder struct {
	InternalID   string              `json:"internal_id"`
	OrderNumber  string              `json:"order_number"`
	LocationID   string              `json:"location_id"`
	VendorCode   string              `json:"vendor_code"`
	VendorName   string              `json:"vendor_name"`
	ExpectedDate time.Time           `json:"expected_date"`
	TranDate     time.Time           `json:"tran_date"`
	Memo         string              `json:"memo"`
	Lines        []PurchaseOrderLine `json:"lines"`
}

// LotNumber is the ERP-side lot/serial record resolved when materializing a
// warehouse-reported lot back onto a document line.
type LotNumber struct {
	InternalID string `json:"internal_id"`
	ItemID     string `json:"item_id"`
	Number     string `json:"number"`
}

// LotAssignment is one lot applied to a fulfillment or receipt line.
type LotAssignment struct {
	LotInternalID string          `json:"lot_internal_id"`
	LotNumber     string          `json:"lot_number"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// FulfillmentLine mirrors one order line on the transformed document. Only
// lines flagged Fulfill are committed.
type FulfillmentLine struct {
	OrderLineNo    int             `json:"order_line_no"`
	ItemID         string          `json:"item_id"`
	Fulfill        bool            `json:"fulfill"`
	Quantity       decimal.Decimal `json:"quantity"`
	LotAssignments []LotAssignment `json:"lot_assignments,omitempty"`
}

// ItemFulfillment is the document created from a sales order once the
// warehouse confirms a preparation.
type ItemFulfillment struct {
	FulfillmentID string            `json:"fulfillment_id"`
	OrderID       string            `json:"order_id"`
	LocationID    string            `json:"location_id"`
	TranDate      time.Time         `json:"tran_date"`
	Lines         []FulfillmentLine `json:"lines"`
}

// ItemReceipt is the document created from a purchase order once the
// warehouse confirms a reception.
type ItemReceipt struct {
	ReceiptID  string            `json:"receipt_id"`
	OrderID    string            `json:"order_id"`
	LocationID string            `json:"location_id"`
	TranDate   time.Time         `json:"tran_date"`
	Lines      []FulfillmentLine `json:"lines"`
}
