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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("queue")
	assert.True(t, strings.HasPrefix(id, "queue_"))
	assert.NotEqual(t, id, GenerateUUIDWithSuffix("queue"))
}

func TestTruncateDiagnostic(t *testing.T) {
	short := "connection refused"
	assert.Equal(t, short, TruncateDiagnostic(short))

	long := strings.Repeat("x", MaxDiagnosticLength+500)
	truncated := TruncateDiagnostic(long)
	assert.Len(t, truncated, MaxDiagnosticLength)
}

func TestParseTopic(t *testing.T) {
	topic, err := ParseTopic("SALES_ORDER")
	assert.NoError(t, err)
	assert.Equal(t, TopicSalesOrder, topic)

	_, err = ParseTopic("INVOICE")
	assert.Error(t, err)
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(StatusSent))
	assert.True(t, IsTerminalStatus(StatusError))
	assert.False(t, IsTerminalStatus(StatusPending))
	assert.False(t, IsTerminalStatus(StatusReady))
	assert.False(t, IsTerminalStatus(StatusInProgress))
}

func TestQueueEntryRecordID(t *testing.T) {
	e := QueueEntry{SourceRecordID: "42"}
	assert.Equal(t, "42", e.RecordID())

	e.RecordRef = "1042"
	assert.Equal(t, "1042", e.RecordID())
}
