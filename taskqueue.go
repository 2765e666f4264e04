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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/ledgerline/wmsbridge/config"
	"github.com/ledgerline/wmsbridge/internal/redisdb"
	"github.com/ledgerline/wmsbridge/model"
)

// Task type names for the background pipeline. Export and inbound work run
// on separate asynq queues so a slow warehouse never starves the other
// direction.
const (
	TaskExportRun          = "export:run"
	TaskInboundFetch       = "inbound:fetch"
	TaskInboundParse       = "inbound:parse"
	TaskInboundMaterialize = "inbound:materialize"
)

// ExportRunPayload asks a worker to run one topic's export.
type ExportRunPayload struct {
	Topic model.Topic `json:"topic"`
}

// InboundFilePayload addresses one inbound file for parse or materialize.
type InboundFilePayload struct {
	FileID string `json:"file_id"`
}

// TaskQueue produces pipeline tasks for the asynq workers.
type TaskQueue struct {
	client *asynq.Client
	cnf    *config.Configuration
}

func NewTaskQueue(cnf *config.Configuration) (*TaskQueue, error) {
	opts, err := redisdb.ParseRedisURL(cnf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &TaskQueue{client: client, cnf: cnf}, nil
}

func (q *TaskQueue) Close() error {
	return q.client.Close()
}

// EnqueueExportRun schedules one export run for a topic. The task id keys on
// the topic so piled-up triggers collapse into one pending run.
func (q *TaskQueue) EnqueueExportRun(ctx context.Context, topic model.Topic) error {
	payload, err := json.Marshal(ExportRunPayload{Topic: topic})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskExportRun, payload)
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue(q.cnf.Queue.ExportQueue),
		asynq.TaskID(fmt.Sprintf("%s:%s", TaskExportRun, topic)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		logrus.Infof("export run for %s already queued", topic)
		return nil
	}
	return err
}

// EnqueueInboundFetch schedules one retrieval sweep of the warehouse return
// directory.
func (q *TaskQueue) EnqueueInboundFetch(ctx context.Context) error {
	task := asynq.NewTask(TaskInboundFetch, nil)
	_, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(q.cnf.Queue.InboundQueue),
		asynq.TaskID(TaskInboundFetch),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// EnqueueInboundParse schedules parsing of one fetched file. The task id
// keys on the file so a file is never parsed twice concurrently.
func (q *TaskQueue) EnqueueInboundParse(ctx context.Context, fileID string) error {
	payload, err := json.Marshal(InboundFilePayload{FileID: fileID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskInboundParse, payload)
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue(q.cnf.Queue.InboundQueue),
		asynq.TaskID(fmt.Sprintf("%s:%s", TaskInboundParse, fileID)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// EnqueueInboundMaterialize schedules materialization of one parsed file.
func (q *TaskQueue) EnqueueInboundMaterialize(ctx context.Context, fileID string) error {
	payload, err := json.Marshal(InboundFilePayload{FileID: fileID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskInboundMaterialize, payload)
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue(q.cnf.Queue.InboundQueue),
		asynq.TaskID(fmt.Sprintf("%s:%s", TaskInboundMaterialize, fileID)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}
