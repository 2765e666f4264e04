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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5002"

	// Partition policies for the outbound exporter. PER_RECORD isolates a
	// delivery failure to one document; PER_TOPIC packs every ready entry of
	// a topic into one file.
	PartitionPerRecord = "PER_RECORD"
	PartitionPerTopic  = "PER_TOPIC"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Port string `json:"port" envconfig:"WMSBRIDGE_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"WMSBRIDGE_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"WMSBRIDGE_REDIS_DNS"`
}

// SftpConfig carries the connection settings for the warehouse SFTP
// endpoint. Host, username and one of password/private key are required
// before any connection attempt is made.
type SftpConfig struct {
	Host           string `json:"host" envconfig:"WMSBRIDGE_SFTP_HOST"`
	Port           int    `json:"port" envconfig:"WMSBRIDGE_SFTP_PORT"`
	Username       string `json:"username" envconfig:"WMSBRIDGE_SFTP_USERNAME"`
	Password       string `json:"password" envconfig:"WMSBRIDGE_SFTP_PASSWORD"`
	PrivateKeyPath string `json:"private_key_path" envconfig:"WMSBRIDGE_SFTP_PRIVATE_KEY_PATH"`
	HostKey        string `json:"host_key" envconfig:"WMSBRIDGE_SFTP_HOST_KEY"`
	OutboundDir    string `json:"outbound_dir" envconfig:"WMSBRIDGE_SFTP_OUTBOUND_DIR"`
	InboundDir     string `json:"inbound_dir" envconfig:"WMSBRIDGE_SFTP_INBOUND_DIR"`
}

// TopicExportConfig is the per-topic slice of the export configuration.
type TopicExportConfig struct {
	Partition string `json:"partition"`
	Extension string `json:"extension"`
}

// ExportConfig drives the outbound file pipeline. Separator and owner code
// are part of the wire contract with the warehouse and must match the
// receiving side.
type ExportConfig struct {
	Separator     string            `json:"separator" envconfig:"WMSBRIDGE_EXPORT_SEPARATOR"`
	OwnerCode     string            `json:"owner_code" envconfig:"WMSBRIDGE_EXPORT_OWNER_CODE"`
	Item          TopicExportConfig `json:"item"`
	SalesOrder    TopicExportConfig `json:"sales_order"`
	PurchaseOrder TopicExportConfig `json:"purchase_order"`
}

// InboundConfig drives retrieval of warehouse return files.
type InboundConfig struct {
	StorageDir        string `json:"storage_dir" envconfig:"WMSBRIDGE_INBOUND_STORAGE_DIR"`
	PreparationPrefix string `json:"preparation_prefix" envconfig:"WMSBRIDGE_INBOUND_PREPARATION_PREFIX"`
	ReceptionPrefix   string `json:"reception_prefix" envconfig:"WMSBRIDGE_INBOUND_RECEPTION_PREFIX"`
}

type QueueConfig struct {
	ExportQueue    string `json:"export_queue" envconfig:"WMSBRIDGE_QUEUE_EXPORT"`
	InboundQueue   string `json:"inbound_queue" envconfig:"WMSBRIDGE_QUEUE_INBOUND"`
	ExportCron     string `json:"export_cron" envconfig:"WMSBRIDGE_QUEUE_EXPORT_CRON"`
	InboundCron    string `json:"inbound_cron" envconfig:"WMSBRIDGE_QUEUE_INBOUND_CRON"`
	MonitoringPort string `json:"monitoring_port" envconfig:"WMSBRIDGE_QUEUE_MONITORING_PORT"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"WMSBRIDGE_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Sftp         SftpConfig       `json:"sftp"`
	Export       ExportConfig     `json:"export"`
	Inbound      InboundConfig    `json:"inbound"`
	Queue        QueueConfig      `json:"queue"`
	Notification Notification     `json:"notification"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("wmsbridge", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called wmsbridge.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Wmsbridge"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Sftp.Host = strings.TrimSpace(cnf.Sftp.Host)
	cnf.Sftp.Username = strings.TrimSpace(cnf.Sftp.Username)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Sftp.Port == 0 {
		cnf.Sftp.Port = 22
	}

	if cnf.Export.Separator == "" {
		cnf.Export.Separator = ";"
	}
	if len(cnf.Export.Separator) != 1 {
		return errors.New("export separator must be a single character")
	}

	// PER_RECORD isolates failures to one document and is the safe default.
	for _, topic := range []*TopicExportConfig{&cnf.Export.Item, &cnf.Export.SalesOrder, &cnf.Export.PurchaseOrder} {
		if topic.Partition == "" {
			topic.Partition = PartitionPerRecord
		}
		if topic.Partition != PartitionPerRecord && topic.Partition != PartitionPerTopic {
			return errors.New("export partition must be PER_RECORD or PER_TOPIC")
		}
		if topic.Extension == "" {
			topic.Extension = ".csv"
		}
	}

	if cnf.Inbound.StorageDir == "" {
		cnf.Inbound.StorageDir = "./inbound"
	}
	if cnf.Inbound.PreparationPrefix == "" {
		cnf.Inbound.PreparationPrefix = "RETPRP"
	}
	if cnf.Inbound.ReceptionPrefix == "" {
		cnf.Inbound.ReceptionPrefix = "RETRCP"
	}

	if cnf.Queue.ExportQueue == "" {
		cnf.Queue.ExportQueue = "export"
	}
	if cnf.Queue.InboundQueue == "" {
		cnf.Queue.InboundQueue = "inbound"
	}
	if cnf.Queue.ExportCron == "" {
		cnf.Queue.ExportCron = "*/10 * * * *"
	}
	if cnf.Queue.InboundCron == "" {
		cnf.Queue.InboundCron = "*/15 * * * *"
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = "5003"
	}

	return nil
}

// TopicExport returns the export settings for one topic.
func (cnf *Configuration) TopicExport(topic string) TopicExportConfig {
	switch topic {
	case "SALES_ORDER":
		return cnf.Export.SalesOrder
	case "PURCHASE_ORDER":
		return cnf.Export.PurchaseOrder
	default:
		return cnf.Export.Item
	}
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	mockConfig.applyTestDefaults()
	ConfigStore.Store(mockConfig)
}

func (cnf *Configuration) applyTestDefaults() {
	if cnf.Export.Separator == "" {
		cnf.Export.Separator = ";"
	}
	for _, topic := range []*TopicExportConfig{&cnf.Export.Item, &cnf.Export.SalesOrder, &cnf.Export.PurchaseOrder} {
		if topic.Partition == "" {
			topic.Partition = PartitionPerRecord
		}
		if topic.Extension == "" {
			topic.Extension = ".csv"
		}
	}
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
