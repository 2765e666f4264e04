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

package wmsbridge

import "github.com/ledgerline/wmsbridge/model"

// salesOrderColumns is the preparation order schema. Every row repeats the
// order header alongside one line, fanned out per lot detail when the line
// carries inventory assignment.
var salesOrderColumns = buildSalesOrderColumns()

func buildSalesOrderColumns() []exportColumn {
	named := []exportColumn{
		{name: "ORDER_NUMBER", value: func(r *exportRow) string { return r.SalesOrder.OrderNumber }},
		{name: "ORDER_TYPE"},
		{name: "ORDER_DATE", value: func(r *exportRow) string { return fmtDate(r.SalesOrder.TranDate) }},
		{name: "EXPECTED_SHIP_DATE", value: func(r *exportRow) string { return fmtDate(r.SalesOrder.ShipDate) }},
		{name: "PRIORITY"},
		{name: "WAREHOUSE_CODE", value: func(r *exportRow) string { return r.SalesOrder.LocationID }},
		{name: "CUSTOMER_CODE", value: func(r *exportRow) string { return r.SalesOrder.CustomerCode }},
		{name: "CUSTOMER_NAME", value: func(r *exportRow) string { return r.SalesOrder.CustomerName }},
		{name: "SHIP_TO_NAME", value: func(r *exportRow) string { return r.SalesOrder.ShipAddressee }},
		{name: "SHIP_TO_ADDR1", value: func(r *exportRow) string { return r.SalesOrder.ShipAddr1 }},
		{name: "SHIP_TO_ADDR2", value: func(r *exportRow) string { return r.SalesOrder.ShipAddr2 }},
		{name: "SHIP_TO_ADDR3"},
		{name: "SHIP_TO_ZIP", value: func(r *exportRow) string { return r.SalesOrder.ShipZip }},
		{name: "SHIP_TO_CITY", value: func(r *exportRow) string { return r.SalesOrder.ShipCity }},
		{name: "SHIP_TO_STATE"},
		{name: "SHIP_TO_COUNTRY", value: func(r *exportRow) string { return r.SalesOrder.ShipCountry }},
		{name: "SHIP_TO_PHONE", value: func(r *exportRow) string { return r.SalesOrder.ShipPhone }},
		{name: "SHIP_TO_EMAIL", value: func(r *exportRow) string { return r.SalesOrder.ShipEmail }},
		{name: "CARRIER_CODE", value: func(r *exportRow) string { return r.SalesOrder.CarrierCode }},
		{name: "CARRIER_SERVICE"},
		{name: "INCOTERM"},
		{name: "CUSTOMER_PO", value: func(r *exportRow) string { return r.SalesOrder.CustomerPO }},
		{name: "DELIVERY_NOTE"},
		{name: "ORDER_MEMO", value: func(r *exportRow) string { return r.SalesOrder.Memo }},
		{name: "BILL_TO_NAME"},
		{name: "BILL_TO_ADDR1"},
		{name: "BILL_TO_ADDR2"},
		{name: "BILL_TO_ZIP"},
		{name: "BILL_TO_CITY"},
		{name: "BILL_TO_COUNTRY"},
		{name: "ROUTE_CODE"},
		{name: "DOCK_CODE"},
		{name: "CURRENCY"},
		{name: "LANGUAGE"},
		{name: "PARTIAL_ALLOWED"},
		{name: "SIGNATURE_REQUIRED"},
		{name: "COD_AMOUNT"},
		{name: "INSURANCE_AMOUNT"},
		{name: "FREIGHT_TERMS"},
		{name: "DELIVERY_INSTRUCTIONS"},
		{name: "LINE_NO", value: func(r *exportRow) string { return fmtInt(r.SalesLine.LineNo) }},
		{name: "ITEM_CODE", value: func(r *exportRow) string { return r.SalesLine.ItemCode }},
		{name: "ITEM_DESC", value: func(r *exportRow) string { return r.SalesLine.ItemDescription }},
		{name: "QTY_ORDERED", value: func(r *exportRow) string { return fmtDecimal(r.SalesLine.Quantity) }},
		{name: "UNIT_CODE", value: func(r *exportRow) string { return r.SalesLine.UnitCode }},
		{name: "QTY_PER_CASE"},
		{name: "LOT_NUMBER", value: func(r *exportRow) string {
			if r.Lot == nil {
				return ""
			}
			return r.Lot.LotNumber
		}},
		{name: "LOT_QTY", value: func(r *exportRow) string {
			if r.Lot == nil {
				return ""
			}
			return fmtDecimal(r.Lot.Quantity)
		}},
		{name: "SERIAL_NUMBER"},
		{name: "EXPIRY_DATE"},
		{name: "LINE_MEMO"},
		{name: "PRICE"},
		{name: "DISCOUNT"},
		{name: "TAX_CODE"},
		{name: "KIT_PARENT_LINE"},
		{name: "PACKAGING_CODE"},
		{name: "LABEL_TYPE"},
		{name: "QUALITY_STATUS"},
		{name: "RETURN_REASON"},
		{name: "PROMO_CODE"},
		{name: "GIFT_MESSAGE"},
		{name: "CUSTOM_REF1"},
		{name: "CUSTOM_REF2"},
		{name: "CUSTOM_REF3"},
		{name: "INTERFACE_VERSION"},
	}

	cols := append(named, padColumns("USER_FIELD", 40)...)
	return append(cols, padColumns("RESERVED", 40)...)
}

// buildSalesOrderRows renders the export rows for one sales order: one row
// per line, multiplied per lot detail when the line carries any.
func buildSalesOrderRows(order *model.SalesOrder, sep string) [][]string {
	var rows [][]string
	for i := range order.Lines {
		line := &order.Lines[i]
		if len(line.LotDetails) == 0 {
			rows = append(rows, buildRow(salesOrderColumns, &exportRow{SalesOrder: order, SalesLine: line}, sep))
			continue
		}
		for j := range line.LotDetails {
			r := &exportRow{SalesOrder: order, SalesLine: line, Lot: &line.LotDetails[j]}
			rows = append(rows, buildRow(salesOrderColumns, r, sep))
		}
	}
	return rows
}
