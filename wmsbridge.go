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

// Package wmsbridge synchronizes ERP business records with a warehouse
// management system over file exchange. The outbound side drains a durable
// sync queue into per-topic CSV files delivered by SFTP; the inbound side
// retrieves the warehouse return files, parses them into prep lines and
// materializes those into fulfillment and receipt documents.
package wmsbridge

import (
	"github.com/ledgerline/wmsbridge/database"
	"github.com/ledgerline/wmsbridge/internal/transport"
)

// Bridge is the service layer. All pipeline operations hang off it; the
// datasource owns persistence and the transport owns file exchange, so tests
// swap either independently.
type Bridge struct {
	datasource database.IDataSource
	transport  transport.Transport
}

func NewBridge(db database.IDataSource, tr transport.Transport) *Bridge {
	return &Bridge{datasource: db, transport: tr}
}
