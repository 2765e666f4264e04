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
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ledgerline/wmsbridge/config"
	"github.com/ledgerline/wmsbridge/internal/notification"
	"github.com/ledgerline/wmsbridge/model"
)

// ExportSummary reports the outcome of one export run.
type ExportSummary struct {
	Topic    model.Topic `json:"topic"`
	Selected int         `json:"selected"`
	Sent     int         `json:"sent"`
	Failed   int         `json:"failed"`
	Files    []string    `json:"files,omitempty"`
}

// exportUnit is one output file in the making: the claimed entries that will
// share its fate and the rows they contributed.
type exportUnit struct {
	entryIDs []string
	rows     [][]string
}

// RunExport drains the READY entries of one topic into CSV files and delivers
// them. Entries are claimed IN_PROGRESS up front so overlapping runs never
// pick the same entry twice, then partitioned into files per the topic's
// policy. Every entry in a delivered file goes SENT together; every entry in
// a failed file goes ERROR together with the delivery diagnostic.
func (b *Bridge) RunExport(ctx context.Context, topic model.Topic) (*ExportSummary, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	topicCnf := cnf.TopicExport(string(topic))
	sep := cnf.Export.Separator

	entries, err := b.datasource.GetQueueEntriesByStatus(ctx, topic, model.StatusReady)
	if err != nil {
		return nil, err
	}

	summary := &ExportSummary{Topic: topic, Selected: len(entries)}
	if len(entries) == 0 {
		return summary, nil
	}

	claimed := make([]*model.QueueEntry, 0, len(entries))
	for _, entry := range entries {
		if err := b.datasource.UpdateQueueEntryStatus(ctx, entry.EntryID, model.StatusInProgress); err != nil {
			logrus.Errorf("claiming entry %s: %v", entry.EntryID, err)
			continue
		}
		claimed = append(claimed, entry)
	}

	units := b.buildUnits(ctx, topic, topicCnf.Partition, sep, claimed, summary)

	for _, unit := range units {
		if len(unit.rows) == 0 {
			// A record can legitimately produce no rows (e.g. an order with
			// no lines); close its entries without touching the transport.
			if err := b.datasource.MarkQueueEntriesSent(ctx, unit.entryIDs, ""); err != nil {
				return summary, err
			}
			summary.Sent += len(unit.entryIDs)
			continue
		}

		fileName := OutputFileName(topic, cnf.Export.OwnerCode, time.Now(), topicCnf.Extension)
		content := assembleFile(topic, sep, unit.rows)

		result := b.transport.Send(ctx, []byte(content), fileName, cnf.Sftp.OutboundDir)
		if !result.Success {
			summary.Failed += len(unit.entryIDs)
			notification.NotifyError(fmt.Errorf("delivering %s: %s", fileName, result.Message))
			if err := b.datasource.MarkQueueEntriesError(ctx, unit.entryIDs, result.Message); err != nil {
				return summary, err
			}
			continue
		}

		if err := b.datasource.MarkQueueEntriesSent(ctx, unit.entryIDs, fileName); err != nil {
			return summary, err
		}
		summary.Sent += len(unit.entryIDs)
		summary.Files = append(summary.Files, fileName)
		logrus.Infof("exported %s: %d entries, %d rows", fileName, len(unit.entryIDs), len(unit.rows))
	}

	return summary, nil
}

// buildUnits loads and renders each claimed entry, grouping the results per
// the partition policy. Entries whose record cannot be loaded or rendered go
// ERROR individually and never poison their unit.
func (b *Bridge) buildUnits(ctx context.Context, topic model.Topic, partition, sep string, claimed []*model.QueueEntry, summary *ExportSummary) []*exportUnit {
	var units []*exportUnit
	var current *exportUnit

	for _, entry := range claimed {
		recordID := entry.RecordID()
		if recordID == "" {
			b.failEntry(ctx, summary, entry, fmt.Errorf("entry %s has no record reference", entry.EntryID))
			continue
		}

		rows, err := b.buildRecordRows(ctx, topic, recordID, sep)
		if err != nil {
			b.failEntry(ctx, summary, entry, fmt.Errorf("rendering %s %s: %w", topic, recordID, err))
			continue
		}

		if partition == config.PartitionPerTopic {
			if current == nil {
				current = &exportUnit{}
				units = append(units, current)
			}
			current.entryIDs = append(current.entryIDs, entry.EntryID)
			current.rows = append(current.rows, rows...)
			continue
		}

		units = append(units, &exportUnit{entryIDs: []string{entry.EntryID}, rows: rows})
	}

	return units
}

func (b *Bridge) failEntry(ctx context.Context, summary *ExportSummary, entry *model.QueueEntry, cause error) {
	summary.Failed++
	notification.NotifyError(cause)
	if err := b.datasource.MarkQueueEntriesError(ctx, []string{entry.EntryID}, cause.Error()); err != nil {
		logrus.Errorf("marking entry %s failed: %v", entry.EntryID, err)
	}
}

// buildRecordRows loads one business record and renders its rows.
func (b *Bridge) buildRecordRows(ctx context.Context, topic model.Topic, recordID, sep string) ([][]string, error) {
	switch topic {
	case model.TopicItem:
		item, err := b.datasource.GetItem(ctx, recordID)
		if err != nil {
			return nil, err
		}
		return buildItemRows(item, sep), nil
	case model.TopicSalesOrder:
		order, err := b.datasource.GetSalesOrder(ctx, recordID)
		if err != nil {
			return nil, err
		}
		return buildSalesOrderRows(order, sep), nil
	case model.TopicPurchaseOrder:
		order, err := b.datasource.GetPurchaseOrder(ctx, recordID)
		if err != nil {
			return nil, err
		}
		return buildPurchaseOrderRows(order, sep), nil
	}
	return nil, fmt.Errorf("unknown topic: %q", topic)
}

// assembleFile joins the header and data rows into the final file content.
func assembleFile(topic model.Topic, sep string, rows [][]string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, BuildHeaderLine(topic, sep))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, sep))
	}
	return strings.Join(lines, "\n") + "\n"
}
