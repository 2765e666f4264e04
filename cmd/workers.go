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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/ledgerline/wmsbridge"
	"github.com/ledgerline/wmsbridge/config"
	"github.com/ledgerline/wmsbridge/internal/redisdb"
	"github.com/ledgerline/wmsbridge/model"
)

// processExportRun drains one topic's READY queue entries into delivered
// files.
func (b *bridgeInstance) processExportRun(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("wmsbridge.export.worker").Start(ctx, "Process Export Run From Queue")
	defer span.End()

	var payload wmsbridge.ExportRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	summary, err := b.bridge.RunExport(ctx, payload.Topic)
	if err != nil {
		return err
	}

	log.Printf(" [*] Export Run Processed %s: %d sent, %d failed", payload.Topic, summary.Sent, summary.Failed)
	return nil
}

// processInboundFetch downloads the warehouse return files and chains a parse
// task per fetched file.
func (b *bridgeInstance) processInboundFetch(ctx context.Context, _ *asynq.Task) error {
	ctx, span := otel.Tracer("wmsbridge.inbound.worker").Start(ctx, "Process Inbound Fetch From Queue")
	defer span.End()

	fetched, err := b.bridge.FetchRemoteFiles(ctx)
	if err != nil {
		return err
	}

	for _, file := range fetched {
		if file.Topic == "" {
			logrus.Warnf("fetched %s has no recognized topic, leaving unparsed", file.FileName)
			continue
		}
		if err := b.tasks.EnqueueInboundParse(ctx, file.FileID); err != nil {
			return err
		}
	}

	log.Printf(" [*] Inbound Fetch Processed: %d files", len(fetched))
	return nil
}

// processInboundParse parses one fetched file into prep lines and chains its
// materialization.
func (b *bridgeInstance) processInboundParse(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("wmsbridge.inbound.worker").Start(ctx, "Process Inbound Parse From Queue")
	defer span.End()

	var payload wmsbridge.InboundFilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	summary, err := b.bridge.ParseInboundFile(ctx, payload.FileID)
	if err != nil {
		return err
	}
	if summary.Skipped {
		log.Printf(" [*] Inbound Parse Skipped %s", payload.FileID)
	} else {
		log.Printf(" [*] Inbound Parse Processed %s: %d resolved, %d errored", payload.FileID, summary.Resolved, summary.Errored)
	}

	return b.tasks.EnqueueInboundMaterialize(ctx, payload.FileID)
}

// processInboundMaterialize turns a file's prep lines into ERP documents.
func (b *bridgeInstance) processInboundMaterialize(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("wmsbridge.inbound.worker").Start(ctx, "Process Inbound Materialize From Queue")
	defer span.End()

	var payload wmsbridge.InboundFilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	summary, err := b.bridge.MaterializeInboundFile(ctx, payload.FileID)
	if err != nil {
		return err
	}

	log.Printf(" [*] Inbound Materialize Processed %s: %d documents", payload.FileID, summary.Documents)
	return nil
}

func initializeQueues(conf *config.Configuration) map[string]int {
	queues := make(map[string]int)
	queues[conf.Queue.ExportQueue] = 3
	queues[conf.Queue.InboundQueue] = 1
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redisdb.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOption.Addr,
			Password: redisOption.Password,
			DB:       redisOption.DB,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(b *bridgeInstance, mux *asynq.ServeMux) {
	mux.HandleFunc(wmsbridge.TaskExportRun, b.processExportRun)
	mux.HandleFunc(wmsbridge.TaskInboundFetch, b.processInboundFetch)
	mux.HandleFunc(wmsbridge.TaskInboundParse, b.processInboundParse)
	mux.HandleFunc(wmsbridge.TaskInboundMaterialize, b.processInboundMaterialize)
}

// initializeScheduler registers the periodic export and inbound sweeps.
func initializeScheduler(conf *config.Configuration) (*asynq.Scheduler, error) {
	redisOption, err := redisdb.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisOption.Addr,
			Password: redisOption.Password,
			DB:       redisOption.DB,
		},
		nil,
	)

	topics := []model.Topic{model.TopicItem, model.TopicSalesOrder, model.TopicPurchaseOrder}
	for _, topic := range topics {
		payload, err := json.Marshal(wmsbridge.ExportRunPayload{Topic: topic})
		if err != nil {
			return nil, err
		}
		task := asynq.NewTask(wmsbridge.TaskExportRun, payload)
		if _, err := scheduler.Register(conf.Queue.ExportCron, task, asynq.Queue(conf.Queue.ExportQueue)); err != nil {
			return nil, err
		}
	}

	fetchTask := asynq.NewTask(wmsbridge.TaskInboundFetch, nil)
	if _, err := scheduler.Register(conf.Queue.InboundCron, fetchTask, asynq.Queue(conf.Queue.InboundQueue)); err != nil {
		return nil, err
	}

	return scheduler, nil
}

// workerCommands defines the "workers" command that runs the asynq server and
// the cron scheduler feeding it.
func workerCommands(b *bridgeInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start wmsbridge workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			tasks, err := wmsbridge.NewTaskQueue(conf)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := tasks.Close(); err != nil {
					log.Printf("Error closing task queue: %v", err)
				}
			}()
			b.tasks = tasks

			queues := initializeQueues(conf)
			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(b, mux)

			scheduler, err := initializeScheduler(conf)
			if err != nil {
				log.Fatal(err)
			}
			go func() {
				if err := scheduler.Run(); err != nil {
					log.Fatalf("could not run scheduler: %v", err)
				}
			}()

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run worker server: %v", err)
			}
		},
	}
	return cmd
}
