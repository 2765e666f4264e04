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
	"sync"
	"time"

	"github.com/ledgerline/wmsbridge/internal/transport"
	"github.com/ledgerline/wmsbridge/model"
)

// mockDataSource is an in-memory IDataSource for service tests. The
// repository itself is covered by sqlmock tests in database/.
type mockDataSource struct {
	mu sync.Mutex

	entries   []*model.QueueEntry
	inbound   []*model.InboundFile
	prepLines []*model.PrepLine

	items          map[string]*model.Item
	salesOrders    map[string]*model.SalesOrder
	purchaseOrders map[string]*model.PurchaseOrder
	lots           map[string]*model.LotNumber

	fulfillments []*model.ItemFulfillment
	receipts     []*model.ItemReceipt

	createQueueErrs []error
	createDocErr    error
}

func newMockDataSource() *mockDataSource {
	return &mockDataSource{
		items:          make(map[string]*model.Item),
		salesOrders:    make(map[string]*model.SalesOrder),
		purchaseOrders: make(map[string]*model.PurchaseOrder),
		lots:           make(map[string]*model.LotNumber),
	}
}

func (m *mockDataSource) CreateQueueEntry(_ context.Context, entry *model.QueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.createQueueErrs) > 0 {
		err := m.createQueueErrs[0]
		m.createQueueErrs = m.createQueueErrs[1:]
		if err != nil {
			return err
		}
	}
	copied := *entry
	if copied.StatusChangedAt.IsZero() {
		copied.StatusChangedAt = copied.CreatedAt
	}
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *mockDataSource) GetQueueEntry(_ context.Context, entryID string) (*model.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.EntryID == entryID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("queue entry %s not found", entryID)
}

func (m *mockDataSource) FindOpenQueueEntry(_ context.Context, topic model.Topic, recordType, recordID string) (*model.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Topic == topic && e.SourceRecordType == recordType && e.SourceRecordID == recordID && !model.IsTerminalStatus(e.Status) {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockDataSource) GetQueueEntriesByStatus(_ context.Context, topic model.Topic, status string) ([]*model.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.QueueEntry
	for _, e := range m.entries {
		if e.Topic == topic && e.Status == status {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockDataSource) UpdateQueueEntryStatus(_ context.Context, entryID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.EntryID == entryID {
			e.Status = status
			e.StatusChangedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("queue entry %s not found", entryID)
}

func (m *mockDataSource) MarkQueueEntriesSent(_ context.Context, entryIDs []string, outputFileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		for _, id := range entryIDs {
			if e.EntryID == id {
				e.Status = model.StatusSent
				e.OutputFileID = outputFileID
				e.StatusChangedAt = time.Now()
			}
		}
	}
	return nil
}

func (m *mockDataSource) MarkQueueEntriesError(_ context.Context, entryIDs []string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		for _, id := range entryIDs {
			if e.EntryID == id {
				e.Status = model.StatusError
				e.LastError = model.TruncateDiagnostic(message)
				e.StatusChangedAt = time.Now()
			}
		}
	}
	return nil
}

func (m *mockDataSource) RequeueQueueEntry(_ context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.EntryID == entryID && e.Status == model.StatusError {
			e.Status = model.StatusReady
			e.StatusChangedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("queue entry %s is not requeueable", entryID)
}

func (m *mockDataSource) RequeueStaleInProgress(_ context.Context, topic model.Topic, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var n int64
	for _, e := range m.entries {
		if e.Topic == topic && e.Status == model.StatusInProgress && e.StatusChangedAt.Before(cutoff) {
			e.Status = model.StatusReady
			e.StatusChangedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (m *mockDataSource) CreateInboundFile(_ context.Context, file *model.InboundFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *file
	m.inbound = append(m.inbound, &copied)
	return nil
}

func (m *mockDataSource) GetInboundFile(_ context.Context, fileID string) (*model.InboundFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.inbound {
		if f.FileID == fileID {
			copied := *f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("inbound file %s not found", fileID)
}

func (m *mockDataSource) GetInboundFilesByStatus(_ context.Context, status string) ([]*model.InboundFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.InboundFile
	for _, f := range m.inbound {
		if f.Status == status {
			copied := *f
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockDataSource) UpdateInboundFileStatus(_ context.Context, fileID, status, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.inbound {
		if f.FileID == fileID {
			f.Status = status
			f.ErrorMessage = errorMessage
			return nil
		}
	}
	return fmt.Errorf("inbound file %s not found", fileID)
}

func (m *mockDataSource) HasPrepLines(_ context.Context, inboundFileID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.prepLines {
		if l.InboundFileID == inboundFileID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDataSource) CreatePrepLine(_ context.Context, line *model.PrepLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *line
	m.prepLines = append(m.prepLines, &copied)
	return nil
}

func (m *mockDataSource) GetPrepLinesByFile(_ context.Context, inboundFileID, status string) ([]*model.PrepLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PrepLine
	for _, l := range m.prepLines {
		if l.InboundFileID == inboundFileID && (status == "" || l.LineStatus == status) {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockDataSource) MarkPrepLinesStatus(_ context.Context, prepLineIDs []string, status, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.prepLines {
		for _, id := range prepLineIDs {
			if l.PrepLineID == id {
				l.LineStatus = status
				l.ErrorMessage = errorMessage
			}
		}
	}
	return nil
}

func (m *mockDataSource) GetItem(_ context.Context, internalID string) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[internalID]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, fmt.Errorf("item %s not found", internalID)
}

func (m *mockDataSource) FindItemByCode(_ context.Context, code string) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.Code == code {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockDataSource) GetSalesOrder(_ context.Context, internalID string) (*model.SalesOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.salesOrders[internalID]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, fmt.Errorf("sales order %s not found", internalID)
}

func (m *mockDataSource) FindSalesOrderByNumber(_ context.Context, orderNumber string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, order := range m.salesOrders {
		if order.OrderNumber == orderNumber {
			return id, nil
		}
	}
	return "", nil
}

func (m *mockDataSource) GetPurchaseOrder(_ context.Context, internalID string) (*model.PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.purchaseOrders[internalID]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, fmt.Errorf("purchase order %s not found", internalID)
}

func (m *mockDataSource) FindPurchaseOrderByNumber(_ context.Context, orderNumber string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, order := range m.purchaseOrders {
		if order.OrderNumber == orderNumber {
			return id, nil
		}
	}
	return "", nil
}

func (m *mockDataSource) FindLotNumber(_ context.Context, itemID, number string) (*model.LotNumber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lot, ok := m.lots[itemID+"/"+number]; ok {
		copied := *lot
		return &copied, nil
	}
	return nil, nil
}

func (m *mockDataSource) CreateItemFulfillment(_ context.Context, doc *model.ItemFulfillment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createDocErr != nil {
		return m.createDocErr
	}
	copied := *doc
	m.fulfillments = append(m.fulfillments, &copied)
	return nil
}

func (m *mockDataSource) CreateItemReceipt(_ context.Context, doc *model.ItemReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createDocErr != nil {
		return m.createDocErr
	}
	copied := *doc
	m.receipts = append(m.receipts, &copied)
	return nil
}

type sentFile struct {
	content  string
	fileName string
	dir      string
}

// mockTransport records deliveries and serves a canned remote directory.
type mockTransport struct {
	mu sync.Mutex

	sends      []sentFile
	sendResult *transport.Result

	listInfos []transport.FileInfo
	listErr   error
	remote    map[string][]byte
}

func newMockTransport() *mockTransport {
	return &mockTransport{remote: make(map[string][]byte)}
}

func (m *mockTransport) Send(_ context.Context, content []byte, fileName, dir string) transport.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, sentFile{content: string(content), fileName: fileName, dir: dir})
	if m.sendResult != nil {
		return *m.sendResult
	}
	return transport.Result{Success: true, Message: "uploaded " + fileName}
}

func (m *mockTransport) List(_ context.Context, _ string) ([]transport.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listInfos, m.listErr
}

func (m *mockTransport) Fetch(_ context.Context, remotePath string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.remote[remotePath]
	if !ok {
		return nil, fmt.Errorf("remote file %s not found", remotePath)
	}
	return content, nil
}
