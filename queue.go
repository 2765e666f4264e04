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

	"github.com/sirupsen/logrus"

	"github.com/ledgerline/wmsbridge/database"
	"github.com/ledgerline/wmsbridge/model"
)

// EnqueueRecord registers a business record for synchronization. The call is
// idempotent per (topic, recordType, recordID): while a non-terminal entry
// exists for the key, that entry is returned unchanged and no duplicate is
// created. A unique partial index backs the same guarantee against concurrent
// callers.
func (b *Bridge) EnqueueRecord(ctx context.Context, topic model.Topic, recordType, recordID, status string) (*model.QueueEntry, error) {
	if recordType == "" || recordID == "" {
		return nil, fmt.Errorf("record type and record id are required")
	}
	if status != model.StatusPending && status != model.StatusReady {
		return nil, fmt.Errorf("new queue entries must be PENDING or READY, got %q", status)
	}

	existing, err := b.datasource.FindOpenQueueEntry(ctx, topic, recordType, recordID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	entry := &model.QueueEntry{
		EntryID:          model.GenerateUUIDWithSuffix("queue"),
		Topic:            topic,
		SourceRecordType: recordType,
		SourceRecordID:   recordID,
		Status:           status,
		RecordRef:        recordID,
		StatusChangedAt:  now,
		CreatedAt:        now,
	}

	for attempt := 0; attempt < 2; attempt++ {
		err := b.datasource.CreateQueueEntry(ctx, entry)
		if err == nil {
			logrus.Infof("enqueued %s %s/%s as %s", topic, recordType, recordID, entry.EntryID)
			return entry, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, err
		}

		// A concurrent enqueue won the insert; the index turned the race
		// into a conflict we resolve by returning the winner. The winner can
		// already be terminal by the time we look, in which case the key is
		// free again and the insert is retried.
		winner, err := b.datasource.FindOpenQueueEntry(ctx, topic, recordType, recordID)
		if err != nil {
			return nil, err
		}
		if winner != nil {
			return winner, nil
		}
	}

	return nil, fmt.Errorf("enqueue %s %s/%s: lost the insert race twice", topic, recordType, recordID)
}

// SetRecordSyncFlag mirrors the sync checkbox on the source record onto its
// open queue entry. Flagging a record with no open entry enqueues it READY;
// unflagging with no open entry is a no-op. Entries already claimed by an
// export run are left alone.
func (b *Bridge) SetRecordSyncFlag(ctx context.Context, topic model.Topic, recordType, recordID string, ready bool) (*model.QueueEntry, error) {
	entry, err := b.datasource.FindOpenQueueEntry(ctx, topic, recordType, recordID)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		if !ready {
			return nil, nil
		}
		return b.EnqueueRecord(ctx, topic, recordType, recordID, model.StatusReady)
	}

	if entry.Status == model.StatusInProgress {
		return entry, fmt.Errorf("entry %s is claimed by an export run", entry.EntryID)
	}

	target := model.StatusPending
	if ready {
		target = model.StatusReady
	}
	if entry.Status == target {
		return entry, nil
	}

	if err := b.datasource.UpdateQueueEntryStatus(ctx, entry.EntryID, target); err != nil {
		return nil, err
	}
	entry.Status = target
	return entry, nil
}

// GetQueueEntry fetches one entry by id.
func (b *Bridge) GetQueueEntry(ctx context.Context, entryID string) (*model.QueueEntry, error) {
	return b.datasource.GetQueueEntry(ctx, entryID)
}

// ListQueueEntries returns the entries of a topic in a given status.
func (b *Bridge) ListQueueEntries(ctx context.Context, topic model.Topic, status string) ([]*model.QueueEntry, error) {
	return b.datasource.GetQueueEntriesByStatus(ctx, topic, status)
}

// RequeueEntry is the operator action that sends a failed entry back to
// READY for the next export run. Only ERROR entries qualify.
func (b *Bridge) RequeueEntry(ctx context.Context, entryID string) error {
	return b.datasource.RequeueQueueEntry(ctx, entryID)
}

// RequeueStale sends IN_PROGRESS entries older than the given age back to
// READY. Entries only stay IN_PROGRESS across runs when a process died
// mid-export, so this is an operator action, not a scheduled one.
func (b *Bridge) RequeueStale(ctx context.Context, topic model.Topic, olderThan time.Duration) (int64, error) {
	count, err := b.datasource.RequeueStaleInProgress(ctx, topic, olderThan)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logrus.Warnf("requeued %d stale IN_PROGRESS entries for %s", count, topic)
	}
	return count, nil
}
