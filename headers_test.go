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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerline/wmsbridge/model"
)

func TestHeaderColumnCountsPerTopic(t *testing.T) {
	assert.Len(t, HeaderColumns(model.TopicItem), 122)
	assert.Len(t, HeaderColumns(model.TopicSalesOrder), 145)
	assert.Len(t, HeaderColumns(model.TopicPurchaseOrder), 45)
}

func TestHeaderColumnNamesAreUniquePerTopic(t *testing.T) {
	for _, topic := range []model.Topic{model.TopicItem, model.TopicSalesOrder, model.TopicPurchaseOrder} {
		seen := make(map[string]bool)
		for _, name := range HeaderColumns(topic) {
			assert.Falsef(t, seen[name], "topic %s repeats column %s", topic, name)
			seen[name] = true
		}
	}
}

func TestBuildHeaderLineUsesSeparator(t *testing.T) {
	line := BuildHeaderLine(model.TopicPurchaseOrder, ";")
	assert.Equal(t, len(HeaderColumns(model.TopicPurchaseOrder)), strings.Count(line, ";")+1)
	assert.True(t, strings.HasPrefix(line, "ORDER_NUMBER;"))
}

func TestOutputFileName(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	assert.Equal(t, "ART42120250314092653.csv", OutputFileName(model.TopicItem, "421", ts, ".csv"))
	assert.Equal(t, "PRP42120250314092653.csv", OutputFileName(model.TopicSalesOrder, "421", ts, ".csv"))
	assert.Equal(t, "RCP42120250314092653.txt", OutputFileName(model.TopicPurchaseOrder, "421", ts, ".txt"))
}
