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

	"github.com/ledgerline/wmsbridge/config"
	"github.com/ledgerline/wmsbridge/database"
)

// migrateCommands bootstraps the pipeline schema. The same DDL runs at every
// datasource startup; this command exists so operators can create the tables
// without starting a server or worker.
func migrateCommands(_ *bridgeInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "create the wmsbridge schema",
		Run: func(cmd *cobra.Command, args []string) {
			cnf, err := config.Fetch()
			if err != nil {
				log.Fatal(err)
			}

			db, err := database.GetDBConnection(cnf)
			if err != nil {
				log.Fatal(err)
			}

			if err := database.Migrate(db.Conn); err != nil {
				log.Fatal(err)
			}
			log.Println("schema is up to date")
		},
	}
	return cmd
}
