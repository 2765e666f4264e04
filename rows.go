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

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/wmsbridge/model"
)

// exportRow is the source material for one CSV row. Which fields are set
// depends on the topic: item exports carry only Item, order exports carry the
// order header, one line and optionally one lot detail.
type exportRow struct {
	Item          *model.Item
	SalesOrder    *model.SalesOrder
	SalesLine     *model.SalesOrderLine
	PurchaseOrder *model.PurchaseOrder
	PurchaseLine  *model.PurchaseOrderLine
	Lot           *model.LotDetail
}

// exportColumn binds one fixed-position column of the warehouse schema to
// its value extractor. Columns the warehouse defines but the ERP does not
// populate carry a nil extractor and always export as the empty string; they
// still occupy their position so every row has the full column count.
type exportColumn struct {
	name  string
	value func(r *exportRow) string
}

// schemaFor returns the fixed column schema of a topic. The order and count
// are part of the wire contract with the warehouse and never vary per record.
func schemaFor(topic model.Topic) []exportColumn {
	switch topic {
	case model.TopicSalesOrder:
		return salesOrderColumns
	case model.TopicPurchaseOrder:
		return purchaseOrderColumns
	default:
		return itemColumns
	}
}

// buildRow renders one row against a topic schema. Every cell is sanitized
// so no value can smuggle a row or column break into the file.
func buildRow(schema []exportColumn, r *exportRow, sep string) []string {
	row := make([]string, len(schema))
	for i, col := range schema {
		if col.value == nil {
			continue
		}
		row[i] = sanitize(col.value(r), sep)
	}
	return row
}

// sanitize replaces CR, LF and the separator character with single spaces.
// The flat-file format has no quoting, so stripping is the only defense.
func sanitize(v, sep string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return strings.ReplaceAll(v, sep, " ")
}

// padColumns generates a run of positional columns with no ERP mapping, e.g.
// RESERVED_01..RESERVED_n.
func padColumns(prefix string, n int) []exportColumn {
	cols := make([]exportColumn, n)
	for i := range cols {
		cols[i] = exportColumn{name: fmt.Sprintf("%s_%02d", prefix, i+1)}
	}
	return cols
}

func fmtDecimal(d decimal.Decimal) string {
	return d.String()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtInt(v int) string {
	return strconv.Itoa(v)
}

func fmtBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// fmtDate renders the packed date format the warehouse expects; zero times
// export as empty.
func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("20060102")
}
