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

// purchaseOrderColumns is the expected-reception schema, the narrowest of the
// three topics.
var purchaseOrderColumns = buildPurchaseOrderColumns()

func buildPurchaseOrderColumns() []exportColumn {
	named := []exportColumn{
		{name: "ORDER_NUMBER", value: func(r *exportRow) string { return r.PurchaseOrder.OrderNumber }},
		{name: "ORDER_TYPE"},
		{name: "ORDER_DATE", value: func(r *exportRow) string { return fmtDate(r.PurchaseOrder.TranDate) }},
		{name: "EXPECTED_DATE", value: func(r *exportRow) string { return fmtDate(r.PurchaseOrder.ExpectedDate) }},
		{name: "WAREHOUSE_CODE", value: func(r *exportRow) string { return r.PurchaseOrder.LocationID }},
		{name: "VENDOR_CODE", value: func(r *exportRow) string { return r.PurchaseOrder.VendorCode }},
		{name: "VENDOR_NAME", value: func(r *exportRow) string { return r.PurchaseOrder.VendorName }},
		{name: "ORDER_MEMO", value: func(r *exportRow) string { return r.PurchaseOrder.Memo }},
		{name: "CARRIER_CODE"},
		{name: "CONTAINER_NUMBER"},
		{name: "BL_NUMBER"},
		{name: "ORIGIN_COUNTRY"},
		{name: "LINE_NO", value: func(r *exportRow) string { return fmtInt(r.PurchaseLine.LineNo) }},
		{name: "ITEM_CODE", value: func(r *exportRow) string { return r.PurchaseLine.ItemCode }},
		{name: "ITEM_DESC", value: func(r *exportRow) string { return r.PurchaseLine.ItemDescription }},
		{name: "QTY_EXPECTED", value: func(r *exportRow) string { return fmtDecimal(r.PurchaseLine.Quantity) }},
		{name: "UNIT_CODE", value: func(r *exportRow) string { return r.PurchaseLine.UnitCode }},
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
		{name: "EXPIRY_DATE"},
		{name: "QUALITY_CONTROL"},
		{name: "PACKAGING_CODE"},
		{name: "QTY_PER_CASE"},
		{name: "VENDOR_ITEM_CODE"},
		{name: "LINE_MEMO"},
		{name: "PRICE"},
		{name: "CURRENCY"},
		{name: "CUSTOM_REF1"},
		{name: "CUSTOM_REF2"},
		{name: "CUSTOM_REF3"},
		{name: "DOCK_CODE"},
		{name: "APPOINTMENT_DATE"},
		{name: "PRIORITY"},
		{name: "RETURN_FLAG"},
		{name: "INTERFACE_VERSION"},
	}

	return append(named, padColumns("RESERVED", 10)...)
}

// buildPurchaseOrderRows renders the export rows for one purchase order with
// the same line-per-lot fan-out as preparations.
func buildPurchaseOrderRows(order *model.PurchaseOrder, sep string) [][]string {
	var rows [][]string
	for i := range order.Lines {
		line := &order.Lines[i]
		if len(line.LotDetails) == 0 {
			rows = append(rows, buildRow(purchaseOrderColumns, &exportRow{PurchaseOrder: order, PurchaseLine: line}, sep))
			continue
		}
		for j := range line.LotDetails {
			r := &exportRow{PurchaseOrder: order, PurchaseLine: line, Lot: &line.LotDetails[j]}
			rows = append(rows, buildRow(purchaseOrderColumns, r, sep))
		}
	}
	return rows
}
