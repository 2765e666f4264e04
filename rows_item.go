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

// itemColumns is the article master schema. One item exports as exactly one
// row.
var itemColumns = buildItemColumns()

func buildItemColumns() []exportColumn {
	named := []exportColumn{
		{name: "ITEM_CODE", value: func(r *exportRow) string { return r.Item.Code }},
		{name: "SHORT_DESC", value: func(r *exportRow) string { return r.Item.DisplayName }},
		{name: "LONG_DESC", value: func(r *exportRow) string { return r.Item.Description }},
		{name: "ITEM_FAMILY", value: func(r *exportRow) string { return r.Item.Family }},
		{name: "ITEM_SUBFAMILY"},
		{name: "ITEM_GROUP"},
		{name: "BASE_UNIT", value: func(r *exportRow) string { return r.Item.BaseUnit }},
		{name: "EAN_UNIT", value: func(r *exportRow) string { return r.Item.Barcode }},
		{name: "EAN_CASE"},
		{name: "EAN_PALLET"},
		{name: "WEIGHT_NET_KG", value: func(r *exportRow) string { return fmtFloat(r.Item.WeightKG) }},
		{name: "WEIGHT_GROSS_KG"},
		{name: "LENGTH_CM", value: func(r *exportRow) string { return fmtFloat(r.Item.LengthCM) }},
		{name: "WIDTH_CM", value: func(r *exportRow) string { return fmtFloat(r.Item.WidthCM) }},
		{name: "HEIGHT_CM", value: func(r *exportRow) string { return fmtFloat(r.Item.HeightCM) }},
		{name: "VOLUME_DM3"},
		{name: "UNITS_PER_CASE", value: func(r *exportRow) string { return fmtInt(r.Item.UnitsPerCase) }},
		{name: "CASES_PER_LAYER", value: func(r *exportRow) string { return fmtInt(r.Item.CasesPerLayer) }},
		{name: "LAYERS_PER_PALLET", value: func(r *exportRow) string { return fmtInt(r.Item.LayersPerPal) }},
		{name: "LOT_MANAGED", value: func(r *exportRow) string { return fmtBool(r.Item.LotManaged) }},
		{name: "SHELF_LIFE_DAYS", value: func(r *exportRow) string { return fmtInt(r.Item.ShelfLifeDays) }},
		{name: "ACTIVE", value: func(r *exportRow) string { return fmtBool(!r.Item.Inactive) }},
		{name: "ROTATION_CLASS"},
		{name: "STORAGE_CLASS"},
		{name: "TEMPERATURE_CLASS"},
		{name: "HAZMAT_CODE"},
		{name: "CUSTOMS_CODE"},
		{name: "ORIGIN_COUNTRY"},
		{name: "SERIAL_MANAGED"},
		{name: "EXPIRY_CONTROL"},
		{name: "MIN_REMAINING_LIFE_DAYS"},
		{name: "PICKING_UNIT"},
		{name: "PACKING_UNIT"},
		{name: "PALLET_TYPE"},
		{name: "STACKABLE"},
		{name: "FRAGILE"},
		{name: "SUBSTITUTE_ITEM"},
		{name: "SUPPLIER_CODE"},
		{name: "SUPPLIER_ITEM_CODE"},
		{name: "BRAND"},
		{name: "SEASON"},
		{name: "CREATION_DATE", value: func(r *exportRow) string { return fmtDate(r.Item.CreatedAt) }},
	}

	cols := append(named, padColumns("USER_FIELD", 40)...)
	return append(cols, padColumns("RESERVED", 40)...)
}

// buildItemRows renders the export rows for one item.
func buildItemRows(item *model.Item, sep string) [][]string {
	return [][]string{buildRow(itemColumns, &exportRow{Item: item}, sep)}
}
