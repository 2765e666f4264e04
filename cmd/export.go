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
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline/wmsbridge/model"
)

// exportCommands runs one export pass from the command line, outside the
// worker schedule. Useful for cutovers and for replaying after an outage.
func exportCommands(b *bridgeInstance) *cobra.Command {
	var topicFlag string
	var requeueStaleMinutes int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "run one export pass for a topic",
		Run: func(cmd *cobra.Command, args []string) {
			topic, err := model.ParseTopic(topicFlag)
			if err != nil {
				log.Fatal(err)
			}
			ctx := context.Background()

			if requeueStaleMinutes > 0 {
				count, err := b.bridge.RequeueStale(ctx, topic, time.Duration(requeueStaleMinutes)*time.Minute)
				if err != nil {
					log.Fatal(err)
				}
				log.Printf("requeued %d stale entries", count)
			}

			summary, err := b.bridge.RunExport(ctx, topic)
			if err != nil {
				log.Fatal(err)
			}
			log.Printf("export %s: selected %d, sent %d, failed %d, files %v",
				summary.Topic, summary.Selected, summary.Sent, summary.Failed, summary.Files)
		},
	}

	cmd.Flags().StringVar(&topicFlag, "topic", string(model.TopicItem), "topic to export (ITEM, SALES_ORDER, PURCHASE_ORDER)")
	cmd.Flags().IntVar(&requeueStaleMinutes, "requeue-stale", 0, "first requeue IN_PROGRESS entries older than this many minutes")
	return cmd
}
