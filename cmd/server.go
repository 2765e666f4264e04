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
	"log"

	"github.com/spf13/cobra"

	"github.com/ledgerline/wmsbridge/api"
)

// serverCommands starts the operator HTTP API.
func serverCommands(b *bridgeInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start the wmsbridge operator api",
		Run: func(cmd *cobra.Command, args []string) {
			router := api.NewAPI(b.bridge).Router()

			log.Printf("Starting server on %s", b.cnf.Server.Port)
			if err := router.Run(":" + b.cnf.Server.Port); err != nil {
				log.Fatal(err)
			}
		},
	}
	return cmd
}
