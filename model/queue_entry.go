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

package model

import (
	"fmt"
	"time"
)

// Topic identifies the category of business record being synchronized with
// the warehouse. Each topic has its own CSV column schema and output file
// naming prefix.
type Topic string

const (
	TopicItem          Topic = "ITEM"
	TopicSalesOrder    Topic = "SALES_ORDER"
	TopicPurchaseOrder Topic = "PURCHASE_ORDER"
)

// ParseTopic converts a raw string into a Topic.
func ParseTopic(s string) (Topic, error) {
	switch Topic(s) {
	case TopicItem, TopicSalesOrder, TopicPurchaseOrder:
		return Topic(s), nil
	}
	return "", fmt.Errorf("unknown topic: %q", s)
}

// Queue entry statuses. PENDING and READY toggle with the sync flag on the
// source record, IN_PROGRESS marks an entry claimed by an export run, SENT
// and ERROR are terminal.
const (
	StatusPending    = "PENDING"
	StatusReady      = "READY"
	StatusInProgress = "IN_PROGRESS"
	StatusSent       = "SENT"
	StatusError      = "ERROR"
)

// IsTerminalStatus reports whether a queue entry status admits no further
// transition. A record with only terminal entries re-enqueues on the next
// sync-flag toggle.
func IsTerminalStatus(status string) bool {
	return status == StatusSent || status == StatusError
}

// QueueEntry is one unit of pending, in-flight or completed synchronization
// work for a (topic, source record) pair. At most one non-terminal entry
// exists per key.
type QueueEntry struct {
	ID               int64     `json:"-"`
	EntryID          string    `json:"entry_id"`
	Topic            Topic     `json:"topic"`
	SourceRecordType string    `json:"source_record_type"`
	SourceRecordID   string    `json:"source_record_id"`
	Status           string    `json:"status"`
	RecordRef        string    `json:"record_ref,omitempty"`
	OutputFileID     string    `json:"output_file_id,omitempty"`
	LastError        string    `json:"last_error,omitempty"`
	StatusChangedAt  time.Time `json:"status_changed_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// RecordID resolves the business-record identifier for an entry, preferring
// the denormalized back-reference and falling back to the raw source id.
func (e *QueueEntry) RecordID() string {
	if e.RecordRef != "" {
		return e.RecordRef
	}
	return e.SourceRecordID
}
