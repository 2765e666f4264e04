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
	"time"

	"github.com/ledgerline/wmsbridge/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	queue    // Sync queue entries
	inbound  // Inbound files and prep lines
	records  // Read-side of the ERP business records
	document // Fulfillment/receipt documents written back to the ERP
}

// queue defines methods for the durable sync queue.
type queue interface {
	CreateQueueEntry(ctx context.Context, entry *model.QueueEntry) error                                    // Inserts a new queue entry
	GetQueueEntry(ctx context.Context, entryID string) (*model.QueueEntry, error)                           // Retrieves an entry by its id
	FindOpenQueueEntry(ctx context.Context, topic model.Topic, recordType, recordID string) (*model.QueueEntry, error) // Key lookup; nil when no non-terminal entry exists
	GetQueueEntriesByStatus(ctx context.Context, topic model.Topic, status string) ([]*model.QueueEntry, error)        // Batch input selection
	UpdateQueueEntryStatus(ctx context.Context, entryID string, status string) error                        // Unconditional status overwrite
	MarkQueueEntriesSent(ctx context.Context, entryIDs []string, outputFileID string) error                 // Terminal success with audit link
	MarkQueueEntriesError(ctx context.Context, entryIDs []string, message string) error                     // Terminal failure with diagnostic
	RequeueQueueEntry(ctx context.Context, entryID string) error                                            // Operator action: ERROR back to READY
	RequeueStaleInProgress(ctx context.Context, topic model.Topic, olderThan time.Duration) (int64, error)  // Operator action: unstick killed runs
}

// inbound defines methods for warehouse return files and their prep lines.
type inbound interface {
	CreateInboundFile(ctx context.Context, file *model.InboundFile) error
	GetInboundFile(ctx context.Context, fileID string) (*model.InboundFile, error)
	GetInboundFilesByStatus(ctx context.Context, status string) ([]*model.InboundFile, error)
	UpdateInboundFileStatus(ctx context.Context, fileID string, status string, errorMessage string) error
	HasPrepLines(ctx context.Context, inboundFileID string) (bool, error)
	CreatePrepLine(ctx context.Context, line *model.PrepLine) error
	GetPrepLinesByFile(ctx context.Context, inboundFileID string, status string) ([]*model.PrepLine, error)
	MarkPrepLinesStatus(ctx context.Context, prepLineIDs []string, status string, errorMessage string) error
}

// records defines the read-only access to ERP business records.
type records interface {
	GetItem(ctx context.Context, internalID string) (*model.Item, error)
	FindItemByCode(ctx context.Context, code string) (*model.Item, error) // nil when no item carries the code
	GetSalesOrder(ctx context.Context, internalID string) (*model.SalesOrder, error)
	FindSalesOrderByNumber(ctx context.Context, orderNumber string) (string, error) // internal id, or "" when unknown
	GetPurchaseOrder(ctx context.Context, internalID string) (*model.PurchaseOrder, error)
	FindPurchaseOrderByNumber(ctx context.Context, orderNumber string) (string, error)
	FindLotNumber(ctx context.Context, itemID, number string) (*model.LotNumber, error) // nil when the lot is unknown
}

// document defines the write-side used by the order materializer.
type document interface {
	CreateItemFulfillment(ctx context.Context, doc *model.ItemFulfillment) error
	CreateItemReceipt(ctx context.Context, doc *model.ItemReceipt) error
}
