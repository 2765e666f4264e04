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
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/wmsbridge/config"
	"github.com/ledgerline/wmsbridge/model"
)

func newTestBridge() (*Bridge, *mockDataSource, *mockTransport) {
	config.MockConfig(&config.Configuration{})
	ds := newMockDataSource()
	tr := newMockTransport()
	return NewBridge(ds, tr), ds, tr
}

func TestEnqueueRecordIsIdempotentPerOpenKey(t *testing.T) {
	bridge, _, _ := newTestBridge()
	ctx := context.Background()

	first, err := bridge.EnqueueRecord(ctx, model.TopicItem, "inventoryitem", "1001", model.StatusReady)
	require.NoError(t, err)

	second, err := bridge.EnqueueRecord(ctx, model.TopicItem, "inventoryitem", "1001", model.StatusReady)
	require.NoError(t, err)
	assert.Equal(t, first.EntryID, second.EntryID)

	entries, err := bridge.ListQueueEntries(ctx, model.TopicItem, model.StatusReady)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEnqueueRecordAfterTerminalCreatesNewEntry(t *testing.T) {
	bridge, ds, _ := newTestBridge()
	ctx := context.Background()

	first, err := bridge.EnqueueRecord(ctx, model.TopicItem, "inventoryitem", "1001", model.StatusReady)
	require.NoError(t, err)
	require.NoError(t, ds.MarkQueueEntriesSent(ctx, []string{first.EntryID}, "ART0011.csv"))

	second, err := bridge.EnqueueRecord(ctx, model.TopicItem, "inventoryitem", "1001", model.StatusReady)
	require.NoError(t, err)
	assert.NotEqual(t, first.EntryID, second.EntryID)
}

func TestEnqueueRecordRejectsBadInput(t *testing.T) {
	bridge, _, _ := newTestBridge()
	ctx := context.Background()

	_, err := bridge.EnqueueRecord(ctx, model.TopicItem, "", "1001", model.StatusReady)
	assert.Error(t, err)

	_, err = bridge.EnqueueRecord(ctx, model.TopicItem, "inventoryitem", "1001", model.StatusSent)
	assert.Error(t, err)
}

func TestSetRecordSyncFlagTogglesPendingAndReady(t *testing.T) {
	bridge, _, _ := newTestBridge()
	ctx := context.Background()

	entry, err := bridge.SetRecordSyncFlag(ctx, model.TopicSalesOrder, "salesorder", "so_1", true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, entry.Status)

	entry, err = bridge.SetRecordSyncFlag(ctx, model.TopicSalesOrder, "salesorder", "so_1", false)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, entry.Status)

	entry, err = bridge.SetRecordSyncFlag(ctx, model.TopicSalesOrder, "salesorder", "so_1", true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, entry.Status)
}

func TestSetRecordSyncFlagUnflagWithoutEntryIsNoop(t *testing.T) {
	bridge, _, _ := newTestBridge()

	entry, err := bridge.SetRecordSyncFlag(context.Background(), model.TopicItem, "inventoryitem", "1001", false)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestSetRecordSyncFlagLeavesClaimedEntriesAlone(t *testing.T) {
	bridge, ds, _ := newTestBridge()
	ctx := context.Background()

	entry, err := bridge.EnqueueRecord(ctx, model.TopicItem, "inventoryitem", "1001", model.StatusReady)
	require.NoError(t, err)
	require.NoError(t, ds.UpdateQueueEntryStatus(ctx, entry.EntryID, model.StatusInProgress))

	_, err = bridge.SetRecordSyncFlag(ctx, model.TopicItem, "inventoryitem", "1001", false)
	assert.Error(t, err)

	got, err := bridge.GetQueueEntry(ctx, entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
}

func TestRequeueEntryOnlyMovesErrorEntries(t *testing.T) {
	bridge, ds, _ := newTestBridge()
	ctx := context.Background()

	entry, err := bridge.EnqueueRecord(ctx, model.TopicItem, "inventoryitem", "1001", model.StatusReady)
	require.NoError(t, err)

	assert.Error(t, bridge.RequeueEntry(ctx, entry.EntryID))

	require.NoError(t, ds.MarkQueueEntriesError(ctx, []string{entry.EntryID}, "delivery refused"))
	require.NoError(t, bridge.RequeueEntry(ctx, entry.EntryID))

	got, err := bridge.GetQueueEntry(ctx, entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, got.Status)
}

func TestRequeueStaleJudgesClaimTimeNotAge(t *testing.T) {
	bridge, ds, _ := newTestBridge()
	ctx := context.Background()

	stale := &model.QueueEntry{
		EntryID: "queue_stale", Topic: model.TopicItem, SourceRecordType: "inventoryitem",
		SourceRecordID: "1", Status: model.StatusInProgress,
		StatusChangedAt: time.Now().Add(-2 * time.Hour), CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	// Enqueued two days ago but claimed by a live run just now; its age alone
	// must not get it yanked back to READY mid-export.
	justClaimed := &model.QueueEntry{
		EntryID: "queue_claimed", Topic: model.TopicItem, SourceRecordType: "inventoryitem",
		SourceRecordID: "2", Status: model.StatusInProgress,
		StatusChangedAt: time.Now(), CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, ds.CreateQueueEntry(ctx, stale))
	require.NoError(t, ds.CreateQueueEntry(ctx, justClaimed))

	n, err := bridge.RequeueStale(ctx, model.TopicItem, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := bridge.GetQueueEntry(ctx, "queue_claimed")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)

	got, err = bridge.GetQueueEntry(ctx, "queue_stale")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, got.Status)
}

func TestEnqueueRecordRetriesWhenRaceWinnerAlreadyTerminal(t *testing.T) {
	bridge, ds, _ := newTestBridge()
	ctx := context.Background()

	// The insert conflicts, but by the time the winner is looked up it has
	// already reached a terminal status and the key is free again.
	ds.createQueueErrs = []error{&pq.Error{Code: "23505"}}

	entry, err := bridge.EnqueueRecord(ctx, model.TopicItem, "inventoryitem", "1001", model.StatusReady)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, model.StatusReady, entry.Status)

	entries, err := bridge.ListQueueEntries(ctx, model.TopicItem, model.StatusReady)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEnqueueRecordGivesUpAfterRepeatedInsertConflicts(t *testing.T) {
	bridge, ds, _ := newTestBridge()
	ctx := context.Background()

	ds.createQueueErrs = []error{&pq.Error{Code: "23505"}, &pq.Error{Code: "23505"}}

	entry, err := bridge.EnqueueRecord(ctx, model.TopicItem, "inventoryitem", "1001", model.StatusReady)
	assert.Error(t, err)
	assert.Nil(t, entry)
}
