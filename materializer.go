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
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ledgerline/wmsbridge/internal/notification"
	"github.com/ledgerline/wmsbridge/internal/syncerror"
	"github.com/ledgerline/wmsbridge/model"
)

// MaterializeSummary reports the outcome of materializing one inbound file.
type MaterializeSummary struct {
	FileID     string `json:"file_id"`
	Orders     int    `json:"orders"`
	Documents  int    `json:"documents"`
	LinesDone  int    `json:"lines_done"`
	LinesError int    `json:"lines_error"`
}

// prepGroup aggregates the NEW prep lines of one (item, lot) pair on one
// order. The warehouse reports picks pallet by pallet; the ERP document wants
// one quantity per line with its lot assignments.
type prepGroup struct {
	itemID    string
	lotNumber string
	erpLineNo int
	total     decimal.Decimal
	prepIDs   []string
}

// MaterializeInboundFile turns the NEW prep lines of a parsed inbound file
// into ERP documents: item fulfillments for preparations, item receipts for
// receptions. Orders are processed independently; a fault in one order never
// blocks the others. An order without a location is skipped with its lines
// untouched so a config fix can be retried; transform faults mark the
// affected lines ERROR.
func (b *Bridge) MaterializeInboundFile(ctx context.Context, fileID string) (*MaterializeSummary, error) {
	file, err := b.datasource.GetInboundFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	lines, err := b.datasource.GetPrepLinesByFile(ctx, fileID, model.PrepStatusNew)
	if err != nil {
		return nil, err
	}

	summary := &MaterializeSummary{FileID: fileID}
	if len(lines) == 0 {
		return summary, nil
	}

	byOrder := make(map[string][]*model.PrepLine)
	var orderIDs []string
	for _, line := range lines {
		if _, seen := byOrder[line.TransactionID]; !seen {
			orderIDs = append(orderIDs, line.TransactionID)
		}
		byOrder[line.TransactionID] = append(byOrder[line.TransactionID], line)
	}

	for _, orderID := range orderIDs {
		summary.Orders++
		group := byOrder[orderID]

		if err := b.materializeOrder(ctx, file.Topic, orderID, group, summary); err != nil {
			notification.NotifyError(fmt.Errorf("materializing order %s from file %s: %w", orderID, file.FileName, err))
			if syncerror.ClassOf(err) == syncerror.Configuration {
				// Missing location is fixable on the order; keep the lines
				// NEW so the next run picks them up.
				continue
			}
			ids := prepLineIDs(group)
			summary.LinesError += len(ids)
			if markErr := b.datasource.MarkPrepLinesStatus(ctx, ids, model.PrepStatusError, model.TruncateDiagnostic(err.Error())); markErr != nil {
				return summary, markErr
			}
		}
	}

	return summary, nil
}

func (b *Bridge) materializeOrder(ctx context.Context, topic model.Topic, orderID string, lines []*model.PrepLine, summary *MaterializeSummary) error {
	var locationID string
	var docLines []model.FulfillmentLine

	switch topic {
	case model.TopicSalesOrder:
		order, err := b.datasource.GetSalesOrder(ctx, orderID)
		if err != nil {
			return err
		}
		locationID = order.LocationID
		docLines = make([]model.FulfillmentLine, len(order.Lines))
		for i, l := range order.Lines {
			docLines[i] = model.FulfillmentLine{OrderLineNo: l.LineNo, ItemID: l.ItemID}
		}
	case model.TopicPurchaseOrder:
		order, err := b.datasource.GetPurchaseOrder(ctx, orderID)
		if err != nil {
			return err
		}
		locationID = order.LocationID
		docLines = make([]model.FulfillmentLine, len(order.Lines))
		for i, l := range order.Lines {
			docLines[i] = model.FulfillmentLine{OrderLineNo: l.LineNo, ItemID: l.ItemID}
		}
	default:
		return syncerror.New(syncerror.MalformedInput, "file topic %q cannot be materialized", topic)
	}

	if locationID == "" {
		return syncerror.New(syncerror.Configuration, "order %s has no location", orderID)
	}

	groups := groupPrepLines(lines)
	var doneIDs []string

	for _, g := range groups {
		target := matchDocLine(docLines, g)
		if target == nil {
			summary.LinesError += len(g.prepIDs)
			if err := b.datasource.MarkPrepLinesStatus(ctx, g.prepIDs, model.PrepStatusError,
				fmt.Sprintf("item %s is not on order %s", g.itemID, orderID)); err != nil {
				return err
			}
			continue
		}

		var assignment *model.LotAssignment
		if g.lotNumber != "" {
			lot, err := b.datasource.FindLotNumber(ctx, g.itemID, g.lotNumber)
			if err != nil {
				return err
			}
			if lot == nil {
				// The lot was never registered on the ERP side. Committing
				// the quantity without it would strip traceability, so the
				// whole group fails and the rest of the order proceeds.
				summary.LinesError += len(g.prepIDs)
				if err := b.datasource.MarkPrepLinesStatus(ctx, g.prepIDs, model.PrepStatusError,
					fmt.Sprintf("unknown lot number %q for item %s", g.lotNumber, g.itemID)); err != nil {
					return err
				}
				continue
			}
			assignment = &model.LotAssignment{LotInternalID: lot.InternalID, LotNumber: lot.Number, Quantity: g.total}
		}

		target.Fulfill = true
		target.Quantity = target.Quantity.Add(g.total)
		if assignment != nil {
			target.LotAssignments = append(target.LotAssignments, *assignment)
		}
		doneIDs = append(doneIDs, g.prepIDs...)
	}

	if len(doneIDs) == 0 {
		return nil
	}

	if err := b.createDocument(ctx, topic, orderID, locationID, docLines); err != nil {
		summary.LinesError += len(doneIDs)
		if markErr := b.datasource.MarkPrepLinesStatus(ctx, doneIDs, model.PrepStatusError, model.TruncateDiagnostic(err.Error())); markErr != nil {
			return markErr
		}
		notification.NotifyError(fmt.Errorf("saving document for order %s: %w", orderID, err))
		return nil
	}
	summary.Documents++

	if err := b.datasource.MarkPrepLinesStatus(ctx, doneIDs, model.PrepStatusDone, ""); err != nil {
		return err
	}
	summary.LinesDone += len(doneIDs)
	logrus.Infof("materialized order %s: %d prep lines", orderID, len(doneIDs))
	return nil
}

func (b *Bridge) createDocument(ctx context.Context, topic model.Topic, orderID, locationID string, docLines []model.FulfillmentLine) error {
	if topic == model.TopicPurchaseOrder {
		return b.datasource.CreateItemReceipt(ctx, &model.ItemReceipt{
			ReceiptID:  model.GenerateUUIDWithSuffix("receipt"),
			OrderID:    orderID,
			LocationID: locationID,
			TranDate:   time.Now(),
			Lines:      docLines,
		})
	}
	return b.datasource.CreateItemFulfillment(ctx, &model.ItemFulfillment{
		FulfillmentID: model.GenerateUUIDWithSuffix("fulfil"),
		OrderID:       orderID,
		LocationID:    locationID,
		TranDate:      time.Now(),
		Lines:         docLines,
	})
}

func prepLineIDs(lines []*model.PrepLine) []string {
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.PrepLineID
	}
	return ids
}

// groupPrepLines folds an order's prep lines into (item, lot) groups,
// preserving first-seen order.
func groupPrepLines(lines []*model.PrepLine) []*prepGroup {
	index := make(map[string]*prepGroup)
	var groups []*prepGroup
	for _, line := range lines {
		key := line.ItemID + "\x00" + line.LotNumber
		g, ok := index[key]
		if !ok {
			g = &prepGroup{itemID: line.ItemID, lotNumber: line.LotNumber, erpLineNo: line.ERPLineNo}
			index[key] = g
			groups = append(groups, g)
		}
		g.total = g.total.Add(line.Quantity)
		g.prepIDs = append(g.prepIDs, line.PrepLineID)
	}
	return groups
}

// matchDocLine locates the document line a group belongs to, preferring the
// ERP line number echoed by the warehouse and falling back to item identity.
func matchDocLine(docLines []model.FulfillmentLine, g *prepGroup) *model.FulfillmentLine {
	if g.erpLineNo > 0 {
		for i := range docLines {
			if docLines[i].OrderLineNo == g.erpLineNo && docLines[i].ItemID == g.itemID {
				return &docLines[i]
			}
		}
	}
	for i := range docLines {
		if docLines[i].ItemID == g.itemID {
			return &docLines[i]
		}
	}
	return nil
}
