/*
Copyright 2021 Arun Muralidharan

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

package model_test

import (
	"encoding/json"
	"testing"

	"nakadigo/pkg/model"
	"nakadigo/pkg/optional"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderCreated = `{
	"name": "order.ORDER_CREATED",
	"owning_application": "order-service",
	"category": "business",
	"enrichment_strategies": ["metadata_enrichment"],
	"partition_strategy": "hash",
	"partition_key_fields": ["order_number"],
	"schema": {
		"type": "json_schema",
		"schema": "{\"properties\": {\"order_number\": {\"type\": \"string\"}}}",
		"version": "1.0.0"
	},
	"default_statistic": {
		"messages_per_minute": 1000,
		"message_size": 256,
		"read_parallelism": 4,
		"write_parallelism": 2
	}
}`

func TestEventTypeDecode(t *testing.T) {
	var et model.EventType
	require.NoError(t, json.Unmarshal([]byte(orderCreated), &et))

	assert.Equal(t, "order.ORDER_CREATED", et.Name)
	assert.Equal(t, model.CategoryBusiness, et.Category)
	assert.Equal(t, []string{"order_number"}, et.PartitionKeyFields)
	assert.Equal(t, "json_schema", et.Schema.Type)

	stats, ok := et.DefaultStatistic.Take()
	require.True(t, ok)
	assert.Equal(t, optional.Some(1000), stats.MessagesPerMinute())
	assert.Equal(t, optional.Some(2), stats.WriteParallelism())
}

func TestEventTypeWithoutStatistics(t *testing.T) {
	var et model.EventType
	require.NoError(t, json.Unmarshal([]byte(`{"name": "a", "owning_application": "b", "category": "data", "schema": {"type": "json_schema", "schema": "{}"}}`), &et))
	assert.True(t, et.DefaultStatistic.IsNone())
	assert.Equal(t, "EventType{name=a, owningApplication=b, category=data}", et.String())
}

func TestEventTypeFingerprint(t *testing.T) {
	var first, second model.EventType
	require.NoError(t, json.Unmarshal([]byte(orderCreated), &first))
	require.NoError(t, json.Unmarshal([]byte(orderCreated), &second))

	fp1, err := first.Fingerprint()
	require.NoError(t, err)
	fp2, err := second.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	second.PartitionKeyFields = append(second.PartitionKeyFields, "customer")
	fp3, err := second.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}

func TestEventTypeString(t *testing.T) {
	var et model.EventType
	require.NoError(t, json.Unmarshal([]byte(orderCreated), &et))
	assert.Contains(t, et.String(), "name=order.ORDER_CREATED")
	assert.Contains(t, et.String(), "defaultStatistic=EventTypeStatistics{messagesPerMinute=1000")
}

func TestPartitionDecode(t *testing.T) {
	var partitions []model.Partition
	require.NoError(t, json.Unmarshal([]byte(`[
		{"partition": "0", "oldest_available_offset": "001", "newest_available_offset": "010", "unconsumed_events": 9},
		{"partition": "1", "oldest_available_offset": "BEGIN", "newest_available_offset": "BEGIN"}
	]`), &partitions))
	require.Len(t, partitions, 2)
	assert.Equal(t, optional.Some(int64(9)), partitions[0].UnconsumedEvents)
	assert.True(t, partitions[1].UnconsumedEvents.IsNone())
}

func TestProblemString(t *testing.T) {
	assert.Equal(t, "404 Not Found", model.Problem{Title: "Not Found", Status: 404}.String())
	assert.Equal(t, "422 Unprocessable Entity: bad schema",
		model.Problem{Title: "Unprocessable Entity", Status: 422, Detail: "bad schema"}.String())
}
