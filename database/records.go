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
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/ledgerline/wmsbridge/model"
)

// GetItem loads one inventory item by internal id.
func (d Datasource) GetItem(ctx context.Context, internalID string) (*model.Item, error) {
	ctx, span := otel.Tracer("Records").Start(ctx, "Fetching item from db")
	defer span.End()

	item := &model.Item{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT internal_id, code, display_name, description, base_unit, barcode,
			family, weight_kg, length_cm, width_cm, height_cm, units_per_case,
			cases_per_layer, layers_per_pal, lot_managed, shelf_life_days,
			inactive, created_at
		FROM items
		WHERE internal_id = $1
	`, internalID).Scan(
		&item.InternalID, &item.Code, &item.DisplayName, &item.Description,
		&item.BaseUnit, &item.Barcode, &item.Family, &item.WeightKG,
		&item.LengthCM, &item.WidthCM, &item.HeightCM, &item.UnitsPerCase,
		&item.CasesPerLayer, &item.LayersPerPal, &item.LotManaged,
		&item.ShelfLifeDays, &item.Inactive, &item.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no item found with id: %s", internalID)
		}
		return nil, err
	}

	return item, nil
}

// FindItemByCode resolves an item code from a warehouse return file to the
// ERP item. Returns nil when no item carries the code.
func (d Datasource) FindItemByCode(ctx context.Context, code string) (*model.Item, error) {
	ctx, span := otel.Tracer("Records").Start(ctx, "Looking up item by code")
	defer span.End()

	item := &model.Item{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT internal_id, code, display_name, lot_managed
		FROM items
		WHERE code = $1
	`, code).Scan(&item.InternalID, &item.Code, &item.DisplayName, &item.LotManaged)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return item, nil
}

// GetSalesOrder loads a sales order with its lines and lot details.
func (d Datasource) GetSalesOrder(ctx context.Context, internalID string) (*model.SalesOrder, error) {
	ctx, span := otel.Tracer("Records").Start(ctx, "Fetching sales order from db")
	defer span.End()

	order := &model.SalesOrder{}
	var shipDate sql.NullTime
	err := d.Conn.QueryRowContext(ctx, `
		SELECT internal_id, order_number, location_id, customer_code, customer_name,
			ship_addressee, ship_addr1, ship_addr2, ship_zip, ship_city, ship_country,
			ship_phone, ship_email, carrier_code, ship_date, tran_date, customer_po, memo
		FROM sales_orders
		WHERE internal_id = $1
	`, internalID).Scan(
		&order.InternalID, &order.OrderNumber, &order.LocationID, &order.CustomerCode,
		&order.CustomerName, &order.ShipAddressee, &order.ShipAddr1, &order.ShipAddr2,
		&order.ShipZip, &order.ShipCity, &order.ShipCountry, &order.ShipPhone,
		&order.ShipEmail, &order.CarrierCode, &shipDate, &order.TranDate,
		&order.CustomerPO, &order.Memo,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no sales order found with id: %s", internalID)
		}
		return nil, err
	}
	if shipDate.Valid {
		order.ShipDate = shipDate.Time
	}

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT line_no, item_id, item_code, item_description, quantity, unit_code
		FROM sales_order_lines
		WHERE order_id = $1
		ORDER BY line_no
	`, internalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line model.SalesOrderLine
		err = rows.Scan(&line.LineNo, &line.ItemID, &line.ItemCode,
			&line.ItemDescription, &line.Quantity, &line.UnitCode)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lots, err := d.orderLots(ctx, "sales_order_lots", internalID)
	if err != nil {
		return nil, err
	}
	for i := range order.Lines {
		order.Lines[i].LotDetails = lots[order.Lines[i].LineNo]
	}

	return order, nil
}

// FindSalesOrderByNumber resolves an order number to the sales order internal
// id. Returns "" when the number is unknown.
func (d Datasource) FindSalesOrderByNumber(ctx context.Context, orderNumber string) (string, error) {
	ctx, span := otel.Tracer("Records").Start(ctx, "Looking up sales order by number")
	defer span.End()

	var internalID string
	err := d.Conn.QueryRowContext(ctx, `
		SELECT internal_id FROM sales_orders WHERE order_number = $1
	`, orderNumber).Scan(&internalID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return internalID, nil
}

// GetPurchaseOrder loads a purchase order with its lines and lot details.
func (d Datasource) GetPurchaseOrder(ctx context.Context, internalID string) (*model.PurchaseOrder, error) {
	ctx, span := otel.Tracer("Records").Start(ctx, "Fetching purchase order from db")
	defer span.End()

	order := &model.PurchaseOrder{}
	var expectedDate sql.NullTime
	err := d.Conn.QueryRowContext(ctx, `
		SELECT internal_id, order_number, location_id, vendor_code, vendor_name,
			expected_date, tran_date, memo
		FROM purchase_orders
		WHERE internal_id = $1
	`, internalID).Scan(
		&order.InternalID, &order.OrderNumber, &order.LocationID, &order.VendorCode,
		&order.VendorName, &expectedDate, &order.TranDate, &order.Memo,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no purchase order found with id: %s", internalID)
		}
		return nil, err
	}
	if expectedDate.Valid {
		order.ExpectedDate = expectedDate.Time
	}

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT line_no, item_id, item_code, item_description, quantity, unit_code
		FROM purchase_order_lines
		WHERE order_id = $1
		ORDER BY line_no
	`, internalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line model.PurchaseOrderLine
		err = rows.Scan(&line.LineNo, &line.ItemID, &line.ItemCode,
			&line.ItemDescription, &line.Quantity, &line.UnitCode)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lots, err := d.orderLots(ctx, "purchase_order_lots", internalID)
	if err != nil {
		return nil, err
	}
	for i := range order.Lines {
		order.Lines[i].LotDetails = lots[order.Lines[i].LineNo]
	}

	return order, nil
}

// FindPurchaseOrderByNumber resolves an order number to the purchase order
// internal id. Returns "" when the number is unknown.
func (d Datasource) FindPurchaseOrderByNumber(ctx context.Context, orderNumber string) (string, error) {
	ctx, span := otel.Tracer("Records").Start(ctx, "Looking up purchase order by number")
	defer span.End()

	var internalID string
	err := d.Conn.QueryRowContext(ctx, `
		SELECT internal_id FROM purchase_orders WHERE order_number = $1
	`, orderNumber).Scan(&internalID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return internalID, nil
}

// FindLotNumber resolves a warehouse-reported lot number for an item. Returns
// nil when the ERP carries no such lot.
func (d Datasource) FindLotNumber(ctx context.Context, itemID, number string) (*model.LotNumber, error) {
	ctx, span := otel.Tracer("Records").Start(ctx, "Looking up lot number")
	defer span.End()

	lot := &model.LotNumber{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT internal_id, item_id, number
		FROM lot_numbers
		WHERE item_id = $1 AND number = $2
	`, itemID, number).Scan(&lot.InternalID, &lot.ItemID, &lot.Number)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return lot, nil
}

// orderLots loads lot details keyed by line number from one of the two
// order-lot tables. Table name comes from a fixed internal set, never from
// input.
func (d Datasource) orderLots(ctx context.Context, table string, orderID string) (map[int][]model.LotDetail, error) {
	rows, err := d.Conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT line_no, lot_number, quantity
		FROM %s
		WHERE order_id = $1
		ORDER BY id
	`, table), orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lots := make(map[int][]model.LotDetail)
	for rows.Next() {
		var lineNo int
		var lot model.LotDetail
		if err := rows.Scan(&lineNo, &lot.LotNumber, &lot.Quantity); err != nil {
			return nil, err
		}
		lots[lineNo] = append(lots[lineNo], lot)
	}

	return lots, rows.Err()
}

// CreateItemFulfillment commits a fulfillment document with its lines and lot
// assignments in one transaction. Only lines flagged for fulfillment are
// written.
func (d Datasource) CreateItemFulfillment(ctx context.Context, doc *model.ItemFulfillment) error {
	ctx, span := otel.Tracer("Records").Start(ctx, "Saving item fulfillment to db")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO item_fulfillments(fulfillment_id, order_id, location_id, tran_date)
		 VALUES ($1, $2, $3, $4)`,
		doc.FulfillmentID, doc.OrderID, doc.LocationID, doc.TranDate,
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, line := range doc.Lines {
		if !line.Fulfill {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO item_fulfillment_lines(fulfillment_id, order_line_no, item_id, quantity)
			 VALUES ($1, $2, $3, $4)`,
			doc.FulfillmentID, line.OrderLineNo, line.ItemID, line.Quantity,
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, lot := range line.LotAssignments {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO item_fulfillment_lots(fulfillment_id, order_line_no, lot_internal_id, lot_number, quantity)
				 VALUES ($1, $2, $3, $4, $5)`,
				doc.FulfillmentID, line.OrderLineNo, lot.LotInternalID, lot.LotNumber, lot.Quantity,
			)
			if err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}

	return tx.Commit()
}

// CreateItemReceipt commits a receipt document with its lines and lot
// assignments in one transaction.
func (d Datasource) CreateItemReceipt(ctx context.Context, doc *model.ItemReceipt) error {
	ctx, span := otel.Tracer("Records").Start(ctx, "Saving item receipt to db")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO item_receipts(receipt_id, order_id, location_id, tran_date)
		 VALUES ($1, $2, $3, $4)`,
		doc.ReceiptID, doc.OrderID, doc.LocationID, doc.TranDate,
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, line := range doc.Lines {
		if !line.Fulfill {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO item_receipt_lines(receipt_id, order_line_no, item_id, quantity)
			 VALUES ($1, $2, $3, $4)`,
			doc.ReceiptID, line.OrderLineNo, line.ItemID, line.Quantity,
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, lot := range line.LotAssignments {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO item_receipt_lots(receipt_id, order_line_no, lot_internal_id, lot_number, quantity)
				 VALUES ($1, $2, $3, $4, $5)`,
				doc.ReceiptID, line.OrderLineNo, lot.LotInternalID, lot.LotNumber, lot.Quantity,
			)
			if err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}

	return tx.Commit()
}
