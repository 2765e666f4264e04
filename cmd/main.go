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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ledgerline/wmsbridge"
	"github.com/ledgerline/wmsbridge/config"
	"github.com/ledgerline/wmsbridge/database"
	"github.com/ledgerline/wmsbridge/internal/notification"
	"github.com/ledgerline/wmsbridge/internal/transport"
)

// Wmsbridge wraps the root cobra command of the CLI.
type Wmsbridge struct {
	cmd *cobra.Command
}

// bridgeInstance carries the initialized service and configuration into the
// subcommands.
type bridgeInstance struct {
	bridge *wmsbridge.Bridge
	tasks  *wmsbridge.TaskQueue
	cnf    *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

func preRun(app *bridgeInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(*configFile); err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		bridge, err := setupBridge(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.bridge = bridge
		app.cnf = cnf
		return nil
	}
}

func setupBridge(cnf *config.Configuration) (*wmsbridge.Bridge, error) {
	db, err := database.NewDataSource(cnf)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}
	return wmsbridge.NewBridge(db, transport.NewSFTP()), nil
}

// NewCLI assembles the wmsbridge command tree.
func NewCLI() *Wmsbridge {
	var configFile string
	b := &bridgeInstance{}

	var rootCmd = &cobra.Command{
		Use:   "wmsbridge",
		Short: "ERP to warehouse synchronization pipeline",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./wmsbridge.json", "Configuration file for wmsbridge")
	rootCmd.PersistentPreRunE = preRun(b, &configFile)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(exportCommands(b))
	rootCmd.AddCommand(inboundCommands(b))
	rootCmd.AddCommand(migrateCommands(b))

	return &Wmsbridge{cmd: rootCmd}
}

func (w Wmsbridge) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
