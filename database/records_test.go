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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ledgerline/wmsbridge/model"
)

func TestFindItemByCode_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	ctx := context.TODO()

	mock.ExpectQuery("SELECT internal_id, code, display_name, lot_managed").
		WithArgs("UNKNOWN").
		WillReturnError(sql.ErrNoRows)

	item, err := ds.FindItemByCode(ctx, "UNKNOWN")
	assert.NoError(t, err)
	assert.Nil(t, item)
}

func TestFindItemByCode_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	ctx := context.TODO()

	mock.ExpectQuery("SELECT internal_id, code, display_name, lot_managed").
		WithArgs("SKU-42").
		WillReturnRows(sqlmock.NewRows([]string{"internal_id", "code", "display_name", "lot_managed"}).
			AddRow("42", "SKU-42", "Widget", true))

	item, err := ds.FindItemByCode(ctx, "SKU-42")
	assert.NoError(t, err)
	assert.Equal(t, "42", item.InternalID)
	assert.True(t, item.LotManaged)
}

func TestGetSalesOrder_WithLinesAndLots(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	ctx := context.TODO()

	mock.ExpectQuery("SELECT internal_id, order_number, location_id, customer_code").
		WithArgs("501").
		WillReturnRows(sqlmock.NewRows([]string{
			"internal_id", "order_number", "location_id", "customer_code", "customer_name",
			"ship_addressee", "ship_addr1", "ship_addr2", "ship_zip", "ship_city", "ship_country",
			"ship_phone", "ship_email", "carrier_code", "ship_date", "tran_date", "customer_po", "memo",
		}).AddRow("501", "SO1001", "3", "CUST1", "Acme",
			"Acme Receiving", "1 Dock Rd", "", "75001", "Paris", "FR",
			"", "", "DHL", time.Now(), time.Now(), "PO-77", ""))

	mock.ExpectQuery("SELECT line_no, item_id, item_code, item_description, quantity, unit_code").
		WithArgs("501").
		WillReturnRows(sqlmock.NewRows([]string{"line_no", "item_id", "item_code", "item_description", "quantity", "unit_code"}).
			AddRow(1, "42", "SKU-42", "Widget", "10", "EA").
			AddRow(2, "43", "SKU-43", "Gadget", "4", "EA"))

	mock.ExpectQuery("SELECT line_no, lot_number, quantity").
		WithArgs("501").
		WillReturnRows(sqlmock.NewRows([]string{"line_no", "lot_number", "quantity"}).
			AddRow(1, "LOT-A", "6").
			AddRow(1, "LOT-B", "4"))

	order, err := ds.GetSalesOrder(ctx, "501")
	assert.NoError(t, err)
	assert.Equal(t, "SO1001", order.OrderNumber)
	assert.Len(t, order.Lines, 2)
	assert.Len(t, order.Lines[0].LotDetails, 2)
	assert.Empty(t, order.Lines[1].LotDetails)
}

func TestFindSalesOrderByNumber_Unknown(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	ctx := context.TODO()

	mock.ExpectQuery("SELECT internal_id FROM sales_orders").
		WithArgs("SO9999").
		WillReturnError(sql.ErrNoRows)

	id, err := ds.FindSalesOrderByNumber(ctx, "SO9999")
	assert.NoError(t, err)
	assert.Empty(t, id)
}

func TestFindLotNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	ctx := context.TODO()

	mock.ExpectQuery("SELECT internal_id, item_id, number").
		WithArgs("42", "LOT-A").
		WillReturnRows(sqlmock.NewRows([]string{"internal_id", "item_id", "number"}).
			AddRow("9001", "42", "LOT-A"))

	lot, err := ds.FindLotNumber(ctx, "42", "LOT-A")
	assert.NoError(t, err)
	assert.Equal(t, "9001", lot.InternalID)

	mock.ExpectQuery("SELECT internal_id, item_id, number").
		WithArgs("42", "LOT-X").
		WillReturnError(sql.ErrNoRows)

	lot, err = ds.FindLotNumber(ctx, "42", "LOT-X")
	assert.NoError(t, err)
	assert.Nil(t, lot)
}

func TestCreateItemFulfillment_SkipsUnfulfilledLines(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	ctx := context.TODO()

	doc := &model.ItemFulfillment{
		FulfillmentID: "fulfil_1",
		OrderID:       "501",
		LocationID:    "3",
		TranDate:      time.Now(),
		Lines: []model.FulfillmentLine{
			{OrderLineNo: 1, ItemID: "42", Fulfill: true, Quantity: decimal.RequireFromString("8"),
				LotAssignments: []model.LotAssignment{
					{LotInternalID: "9001", LotNumber: "LOT-A", Quantity: decimal.RequireFromString("5")},
					{LotInternalID: "9002", LotNumber: "LOT-B", Quantity: decimal.RequireFromString("3")},
				}},
			{OrderLineNo: 2, ItemID: "43", Fulfill: false},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO item_fulfillments").
		WithArgs(doc.FulfillmentID, doc.OrderID, doc.LocationID, doc.TranDate).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO item_fulfillment_lines").
		WithArgs(doc.FulfillmentID, 1, "42", doc.Lines[0].Quantity).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO item_fulfillment_lots").
		WithArgs(doc.FulfillmentID, 1, "9001", "LOT-A", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO item_fulfillment_lots").
		WithArgs(doc.FulfillmentID, 1, "9002", "LOT-B", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = ds.CreateItemFulfillment(ctx, doc)
	assert.NoError(t, err)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
