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
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/ledgerline/wmsbridge/model"
)

// CreateQueueEntry inserts a new queue entry. A unique partial index on the
// (topic, source_record_type, source_record_id) key guards against a
// concurrent enqueue slipping past the find-before-insert check; callers can
// detect that with IsUniqueViolation.
func (d Datasource) CreateQueueEntry(ctx context.Context, entry *model.QueueEntry) error {
	ctx, span := otel.Tracer("Queue").Start(ctx, "Saving queue entry to db")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO queue_entries(
			entry_id, topic, source_record_type, source_record_id,
			status, record_ref, status_changed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.EntryID, entry.Topic, entry.SourceRecordType, entry.SourceRecordID,
		entry.Status, entry.RecordRef, entry.StatusChangedAt, entry.CreatedAt,
	)

	return err
}

// GetQueueEntry retrieves a queue entry by its id.
func (d Datasource) GetQueueEntry(ctx context.Context, entryID string) (*model.QueueEntry, error) {
	ctx, span := otel.Tracer("Queue").Start(ctx, "Fetching queue entry from db")
	defer span.End()

	entry := &model.QueueEntry{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, entry_id, topic, source_record_type, source_record_id,
			status, record_ref, output_file_id, last_error, status_changed_at, created_at
		FROM queue_entries
		WHERE entry_id = $1
	`, entryID).Scan(
		&entry.ID, &entry.EntryID, &entry.Topic, &entry.SourceRecordType,
		&entry.SourceRecordID, &entry.Status, &entry.RecordRef,
		&entry.OutputFileID, &entry.LastError, &entry.StatusChangedAt, &entry.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no queue entry found with id: %s", entryID)
		}
		return nil, err
	}

	return entry, nil
}

// FindOpenQueueEntry looks up the non-terminal entry for a
// (topic, record type, record id) key. Returns nil when none exists.
func (d Datasource) FindOpenQueueEntry(ctx context.Context, topic model.Topic, recordType, recordID string) (*model.QueueEntry, error) {
	ctx, span := otel.Tracer("Queue").Start(ctx, "Looking up open queue entry")
	defer span.End()

	entry := &model.QueueEntry{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, entry_id, topic, source_record_type, source_record_id,
			status, record_ref, output_file_id, last_error, status_changed_at, created_at
		FROM queue_entries
		WHERE topic = $1 AND source_record_type = $2 AND source_record_id = $3
			AND status NOT IN ($4, $5)
	`, topic, recordType, recordID, model.StatusSent, model.StatusError).Scan(
		&entry.ID, &entry.EntryID, &entry.Topic, &entry.SourceRecordType,
		&entry.SourceRecordID, &entry.Status, &entry.RecordRef,
		&entry.OutputFileID, &entry.LastError, &entry.StatusChangedAt, &entry.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// GetQueueEntriesByStatus retrieves every entry of a topic in the given
// status. Ordering across entries is not part of the contract.
func (d Datasource) GetQueueEntriesByStatus(ctx context.Context, topic model.Topic, status string) ([]*model.QueueEntry, error) {
	ctx, span := otel.Tracer("Queue").Start(ctx, "Fetching queue entries by status")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, entry_id, topic, source_record_type, source_record_id,
			status, record_ref, output_file_id, last_error, status_changed_at, created_at
		FROM queue_entries
		WHERE topic = $1 AND status = $2
	`, topic, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.QueueEntry

	for rows.Next() {
		entry := &model.QueueEntry{}
		err = rows.Scan(
			&entry.ID, &entry.EntryID, &entry.Topic, &entry.SourceRecordType,
			&entry.SourceRecordID, &entry.Status, &entry.RecordRef,
			&entry.OutputFileID, &entry.LastError, &entry.StatusChangedAt, &entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// UpdateQueueEntryStatus overwrites the status of an entry. No transition
// validation happens here; the service layer owns the state machine.
func (d Datasource) UpdateQueueEntryStatus(ctx context.Context, entryID string, status string) error {
	ctx, span := otel.Tracer("Queue").Start(ctx, "Updating queue entry status")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, `
		UPDATE queue_entries
		SET status = $2, status_changed_at = NOW()
		WHERE entry_id = $1
	`, entryID, status)

	return err
}

// MarkQueueEntriesSent marks a unit's entries SENT and links the output file
// for audit traceability.
func (d Datasource) MarkQueueEntriesSent(ctx context.Context, entryIDs []string, outputFileID string) error {
	ctx, span := otel.Tracer("Queue").Start(ctx, "Marking queue entries sent")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, `
		UPDATE queue_entries
		SET status = $2, output_file_id = $3, last_error = '', status_changed_at = NOW()
		WHERE entry_id = ANY($1)
	`, pq.Array(entryIDs), model.StatusSent, outputFileID)

	return err
}

// MarkQueueEntriesError marks a unit's entries ERROR with a bounded
// diagnostic message.
func (d Datasource) MarkQueueEntriesError(ctx context.Context, entryIDs []string, message string) error {
	ctx, span := otel.Tracer("Queue").Start(ctx, "Marking queue entries error")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, `
		UPDATE queue_entries
		SET status = $2, last_error = $3, status_changed_at = NOW()
		WHERE entry_id = ANY($1)
	`, pq.Array(entryIDs), model.StatusError, model.TruncateDiagnostic(message))

	return err
}

// RequeueQueueEntry moves an ERROR entry back to READY. Entries in any other
// status are left alone.
func (d Datasource) RequeueQueueEntry(ctx context.Context, entryID string) error {
	ctx, span := otel.Tracer("Queue").Start(ctx, "Requeueing queue entry")
	defer span.End()

	res, err := d.Conn.ExecContext(ctx, `
		UPDATE queue_entries
		SET status = $2, last_error = '', status_changed_at = NOW()
		WHERE entry_id = $1 AND status = $3
	`, entryID, model.StatusReady, model.StatusError)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("queue entry %s is not in ERROR", entryID)
	}
	return nil
}

// RequeueStaleInProgress returns IN_PROGRESS entries whose claim is older
// than the given age to READY. Staleness is judged by status_changed_at, the
// time of the claim itself, so an old entry claimed by a live run moments ago
// is never yanked back mid-export. Entries get stuck IN_PROGRESS when a run
// is killed mid-batch; this is the operator-triggered compensation.
func (d Datasource) RequeueStaleInProgress(ctx context.Context, topic model.Topic, olderThan time.Duration) (int64, error) {
	ctx, span := otel.Tracer("Queue").Start(ctx, "Requeueing stale in-progress entries")
	defer span.End()

	cutoff := time.Now().Add(-olderThan)
	res, err := d.Conn.ExecContext(ctx, `
		UPDATE queue_entries
		SET status = $3, status_changed_at = NOW()
		WHERE topic = $1 AND status = $2 AND status_changed_at < $4
	`, topic, model.StatusInProgress, model.StatusReady, cutoff)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
