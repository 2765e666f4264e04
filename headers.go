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
	"strings"
	"time"

	"github.com/ledgerline/wmsbridge/model"
)

// Output file name prefixes, one per topic. Together with the owner code and
// packed timestamp they form the name the warehouse routes on.
const (
	filePrefixItem        = "ART"
	filePrefixPreparation = "PRP"
	filePrefixReception   = "RCP"
	fileTimestampFormat   = "20060102150405"
)

// HeaderColumns returns the ordered column names of a topic schema.
func HeaderColumns(topic model.Topic) []string {
	schema := schemaFor(topic)
	names := make([]string, len(schema))
	for i, col := range schema {
		names[i] = col.name
	}
	return names
}

// BuildHeaderLine renders the header row of an export file.
func BuildHeaderLine(topic model.Topic, sep string) string {
	return strings.Join(HeaderColumns(topic), sep)
}

// OutputFileName builds the warehouse-facing file name:
// <topic prefix><owner code><packed timestamp><extension>.
func OutputFileName(topic model.Topic, ownerCode string, ts time.Time, ext string) string {
	prefix := filePrefixItem
	switch topic {
	case model.TopicSalesOrder:
		prefix = filePrefixPreparation
	case model.TopicPurchaseOrder:
		prefix = filePrefixReception
	}
	return prefix + ownerCode + ts.Format(fileTimestampFormat) + ext
}
