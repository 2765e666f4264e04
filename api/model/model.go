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
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ledgerline/wmsbridge/model"
)

// EnqueueRecord is the request body for registering a record on the sync
// queue.
type EnqueueRecord struct {
	Topic      string `json:"topic"`
	RecordType string `json:"record_type"`
	RecordID   string `json:"record_id"`
	Status     string `json:"status"`
}

func (r *EnqueueRecord) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Topic, validation.Required, validation.In(
			string(model.TopicItem), string(model.TopicSalesOrder), string(model.TopicPurchaseOrder))),
		validation.Field(&r.RecordType, validation.Required),
		validation.Field(&r.RecordID, validation.Required),
		validation.Field(&r.Status, validation.In(model.StatusPending, model.StatusReady)),
	)
}

// SetSyncFlag mirrors the sync checkbox of a source record.
type SetSyncFlag struct {
	Topic      string `json:"topic"`
	RecordType string `json:"record_type"`
	RecordID   string `json:"record_id"`
	Ready      bool   `json:"ready"`
}

func (r *SetSyncFlag) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Topic, validation.Required, validation.In(
			string(model.TopicItem), string(model.TopicSalesOrder), string(model.TopicPurchaseOrder))),
		validation.Field(&r.RecordType, validation.Required),
		validation.Field(&r.RecordID, validation.Required),
	)
}

// RequeueStale asks for IN_PROGRESS entries older than a bound to go back to
// READY.
type RequeueStale struct {
	Topic            string `json:"topic"`
	OlderThanMinutes int    `json:"older_than_minutes"`
}

func (r *RequeueStale) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Topic, validation.Required, validation.In(
			string(model.TopicItem), string(model.TopicSalesOrder), string(model.TopicPurchaseOrder))),
		validation.Field(&r.OlderThanMinutes, validation.Required, validation.Min(1)),
	)
}
