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

	"github.com/spf13/cobra"
)

// inboundCommands runs one full inbound sweep from the command line: fetch
// the return files, parse each into prep lines and materialize them.
func inboundCommands(b *bridgeInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbound",
		Short: "fetch, parse and materialize warehouse return files",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			fetched, err := b.bridge.FetchRemoteFiles(ctx)
			if err != nil {
				log.Fatal(err)
			}
			log.Printf("fetched %d files", len(fetched))

			for _, file := range fetched {
				if file.Topic == "" {
					log.Printf("skipping %s: no recognized topic", file.FileName)
					continue
				}

				parsed, err := b.bridge.ParseInboundFile(ctx, file.FileID)
				if err != nil {
					log.Printf("parse %s: %v", file.FileName, err)
					continue
				}
				log.Printf("parsed %s: %d resolved, %d errored", file.FileName, parsed.Resolved, parsed.Errored)

				materialized, err := b.bridge.MaterializeInboundFile(ctx, file.FileID)
				if err != nil {
					log.Printf("materialize %s: %v", file.FileName, err)
					continue
				}
				log.Printf("materialized %s: %d documents, %d lines done, %d lines errored",
					file.FileName, materialized.Documents, materialized.LinesDone, materialized.LinesError)
			}
		},
	}
	return cmd
}
