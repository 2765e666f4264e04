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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnqueueRecordValidation(t *testing.T) {
	valid := EnqueueRecord{Topic: "ITEM", RecordType: "inventoryitem", RecordID: "1001"}
	assert.NoError(t, valid.Validate())

	withStatus := EnqueueRecord{Topic: "ITEM", RecordType: "inventoryitem", RecordID: "1001", Status: "READY"}
	assert.NoError(t, withStatus.Validate())

	badTopic := EnqueueRecord{Topic: "LEDGER", RecordType: "inventoryitem", RecordID: "1001"}
	assert.Error(t, badTopic.Validate())

	noRecord := EnqueueRecord{Topic: "ITEM", RecordType: "inventoryitem"}
	assert.Error(t, noRecord.Validate())

	terminalStatus := EnqueueRecord{Topic: "ITEM", RecordType: "inventoryitem", RecordID: "1001", Status: "SENT"}
	assert.Error(t, terminalStatus.Validate())
}

func TestSetSyncFlagValidation(t *testing.T) {
	valid := SetSyncFlag{Topic: "SALES_ORDER", RecordType: "salesorder", RecordID: "so_1", Ready: true}
	assert.NoError(t, valid.Validate())

	missingType := SetSyncFlag{Topic: "SALES_ORDER", RecordID: "so_1"}
	assert.Error(t, missingType.Validate())
}

func TestRequeueStaleValidation(t *testing.T) {
	valid := RequeueStale{Topic: "PURCHASE_ORDER", OlderThanMinutes: 60}
	assert.NoError(t, valid.Validate())

	zeroBound := RequeueStale{Topic: "PURCHASE_ORDER"}
	assert.Error(t, zeroBound.Validate())
}
