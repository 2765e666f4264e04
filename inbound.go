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
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ledgerline/wmsbridge/config"
	"github.com/ledgerline/wmsbridge/internal/files"
	"github.com/ledgerline/wmsbridge/internal/notification"
	"github.com/ledgerline/wmsbridge/internal/syncerror"
	"github.com/ledgerline/wmsbridge/model"
)

// returnFileLayout maps the fixed column positions of a warehouse return
// file. Positions are zero-based; minFields is the shortest row that still
// carries every mapped column.
type returnFileLayout struct {
	orderNumber int
	itemCode    int
	lineNo      int
	quantity    int
	lotNumber   int
	minFields   int
}

var (
	preparationLayout = returnFileLayout{orderNumber: 1, itemCode: 4, lineNo: 5, quantity: 6, lotNumber: 8, minFields: 9}
	receptionLayout   = returnFileLayout{orderNumber: 1, itemCode: 3, lineNo: 4, quantity: 5, lotNumber: 6, minFields: 7}
)

// FetchRemoteFiles lists the warehouse return directory, downloads every
// regular file into the local inbound store and registers each as a NEW
// inbound file. Directory entries and dot files are skipped. A download
// failure skips that file and continues; the next run picks it up again.
func (b *Bridge) FetchRemoteFiles(ctx context.Context) ([]*model.InboundFile, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	infos, err := b.transport.List(ctx, cnf.Sftp.InboundDir)
	if err != nil {
		return nil, err
	}

	var fetched []*model.InboundFile
	for _, info := range infos {
		if info.IsDir || strings.HasPrefix(info.Name, ".") {
			continue
		}

		content, err := b.transport.Fetch(ctx, path.Join(cnf.Sftp.InboundDir, info.Name))
		if err != nil {
			notification.NotifyError(fmt.Errorf("downloading %s: %w", info.Name, err))
			continue
		}

		stored, err := files.SaveInbound(cnf.Inbound.StorageDir, info.Name, content)
		if err != nil {
			notification.NotifyError(fmt.Errorf("storing %s: %w", info.Name, err))
			continue
		}

		file := &model.InboundFile{
			FileID:     model.GenerateUUIDWithSuffix("file"),
			FileName:   info.Name,
			StoredPath: stored,
			Topic:      inferTopic(info.Name, &cnf.Inbound),
			Status:     model.InboundStatusNew,
			CreatedAt:  time.Now(),
		}
		if err := b.datasource.CreateInboundFile(ctx, file); err != nil {
			return fetched, err
		}

		logrus.Infof("fetched %s as %s (topic %q)", info.Name, file.FileID, file.Topic)
		fetched = append(fetched, file)
	}

	return fetched, nil
}

// inferTopic classifies a return file by its name prefix. Unrecognized names
// stay topic-less and are never parsed.
func inferTopic(fileName string, cnf *config.InboundConfig) model.Topic {
	switch {
	case strings.HasPrefix(fileName, cnf.PreparationPrefix):
		return model.TopicSalesOrder
	case strings.HasPrefix(fileName, cnf.ReceptionPrefix):
		return model.TopicPurchaseOrder
	}
	return ""
}

// GetInboundFile fetches one inbound file by id.
func (b *Bridge) GetInboundFile(ctx context.Context, fileID string) (*model.InboundFile, error) {
	return b.datasource.GetInboundFile(ctx, fileID)
}

// ListInboundFiles returns the inbound files in a given status.
func (b *Bridge) ListInboundFiles(ctx context.Context, status string) ([]*model.InboundFile, error) {
	return b.datasource.GetInboundFilesByStatus(ctx, status)
}

// ListPrepLines returns a file's prep lines, optionally filtered by status.
func (b *Bridge) ListPrepLines(ctx context.Context, fileID, status string) ([]*model.PrepLine, error) {
	return b.datasource.GetPrepLinesByFile(ctx, fileID, status)
}

// InboundSummary reports the outcome of parsing one inbound file.
type InboundSummary struct {
	FileID   string `json:"file_id"`
	Lines    int    `json:"lines"`
	Resolved int    `json:"resolved"`
	Errored  int    `json:"errored"`
	Skipped  bool   `json:"skipped,omitempty"`
}

// ParseInboundFile turns one NEW inbound file into prep lines. Each data row
// resolves its order number and item code against the ERP; rows that are
// short, unparseable or unresolvable become ERROR prep lines while the rest
// of the file proceeds. A file that already has prep lines is skipped, so a
// rerun after a crash never duplicates lines. The file ends DONE unless the
// file itself cannot be processed, in which case it ends ERROR.
func (b *Bridge) ParseInboundFile(ctx context.Context, fileID string) (*InboundSummary, error) {
	file, err := b.datasource.GetInboundFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	summary := &InboundSummary{FileID: fileID}
	if file.Status != model.InboundStatusNew {
		summary.Skipped = true
		return summary, nil
	}

	exists, err := b.datasource.HasPrepLines(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if exists {
		logrus.Warnf("inbound file %s already has prep lines, skipping", fileID)
		summary.Skipped = true
		return summary, nil
	}

	if err := b.parseFile(ctx, file, summary); err != nil {
		if updErr := b.datasource.UpdateInboundFileStatus(ctx, fileID, model.InboundStatusError, err.Error()); updErr != nil {
			return summary, updErr
		}
		notification.NotifyError(fmt.Errorf("parsing inbound file %s: %w", file.FileName, err))
		return summary, err
	}

	if err := b.datasource.UpdateInboundFileStatus(ctx, fileID, model.InboundStatusDone, ""); err != nil {
		return summary, err
	}
	return summary, nil
}

func (b *Bridge) parseFile(ctx context.Context, file *model.InboundFile, summary *InboundSummary) error {
	var layout returnFileLayout
	switch file.Topic {
	case model.TopicSalesOrder:
		layout = preparationLayout
	case model.TopicPurchaseOrder:
		layout = receptionLayout
	default:
		return syncerror.New(syncerror.MalformedInput, "file %s has no recognized topic", file.FileName)
	}

	cnf, err := config.Fetch()
	if err != nil {
		return err
	}
	sep := cnf.Export.Separator

	content, err := files.ReadStored(file.StoredPath)
	if err != nil {
		return err
	}

	rows := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	for i, raw := range rows {
		if i == 0 || strings.TrimSpace(raw) == "" {
			// First row is the header echo; blanks carry nothing.
			continue
		}
		summary.Lines++

		if err := b.parseReturnRow(ctx, file, layout, raw, sep, summary); err != nil {
			return err
		}
	}

	return nil
}

// parseReturnRow handles one data row. Row-level faults become ERROR prep
// lines and return nil; only storage failures propagate.
func (b *Bridge) parseReturnRow(ctx context.Context, file *model.InboundFile, layout returnFileLayout, raw, sep string, summary *InboundSummary) error {
	fields := strings.Split(raw, sep)
	for i := range fields {
		fields[i] = cleanField(fields[i])
	}

	line := &model.PrepLine{
		PrepLineID:    model.GenerateUUIDWithSuffix("prep"),
		InboundFileID: file.FileID,
		LineStatus:    model.PrepStatusNew,
		CreatedAt:     time.Now(),
	}

	if len(fields) < layout.minFields {
		if layout.orderNumber < len(fields) {
			line.OrderNumber = fields[layout.orderNumber]
		}
		return b.failPrepLine(ctx, line, summary,
			syncerror.New(syncerror.MalformedInput, "row has %d fields, expected at least %d", len(fields), layout.minFields))
	}

	line.OrderNumber = fields[layout.orderNumber]
	line.ItemCode = fields[layout.itemCode]
	line.LotNumber = fields[layout.lotNumber]
	if n, err := strconv.Atoi(fields[layout.lineNo]); err == nil {
		line.ERPLineNo = n
	}

	qty, err := parseQuantity(fields[layout.quantity])
	if err != nil {
		return b.failPrepLine(ctx, line, summary,
			syncerror.New(syncerror.MalformedInput, "bad quantity %q: %v", fields[layout.quantity], err))
	}
	line.Quantity = qty

	transactionID, err := b.findOrderByNumber(ctx, file.Topic, line.OrderNumber)
	if err != nil {
		return err
	}
	if transactionID == "" {
		return b.failPrepLine(ctx, line, summary,
			syncerror.New(syncerror.Resolution, "unknown order number %q", line.OrderNumber))
	}
	line.TransactionID = transactionID

	item, err := b.datasource.FindItemByCode(ctx, line.ItemCode)
	if err != nil {
		return err
	}
	if item == nil {
		return b.failPrepLine(ctx, line, summary,
			syncerror.New(syncerror.Resolution, "unknown item code %q", line.ItemCode))
	}
	line.ItemID = item.InternalID

	if err := b.datasource.CreatePrepLine(ctx, line); err != nil {
		return err
	}
	summary.Resolved++
	return nil
}

func (b *Bridge) failPrepLine(ctx context.Context, line *model.PrepLine, summary *InboundSummary, cause *syncerror.SyncError) error {
	line.LineStatus = model.PrepStatusError
	line.ErrorMessage = model.TruncateDiagnostic(cause.Error())
	if err := b.datasource.CreatePrepLine(ctx, line); err != nil {
		return err
	}
	summary.Errored++
	return nil
}

func (b *Bridge) findOrderByNumber(ctx context.Context, topic model.Topic, orderNumber string) (string, error) {
	if topic == model.TopicPurchaseOrder {
		return b.datasource.FindPurchaseOrderByNumber(ctx, orderNumber)
	}
	return b.datasource.FindSalesOrderByNumber(ctx, orderNumber)
}

// cleanField strips the optional quoting and padding some WMS exports wrap
// around every value.
func cleanField(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"`)
	return strings.TrimSpace(v)
}

// parseQuantity accepts both decimal-comma and decimal-point notation.
func parseQuantity(v string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
}
