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

package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nakadigo/pkg/optional"

	"github.com/cespare/xxhash/v2"
)

// EventTypeCategory
type EventTypeCategory string

const (
	CategoryUndefined EventTypeCategory = "undefined"
	CategoryData      EventTypeCategory = "data"
	CategoryBusiness  EventTypeCategory = "business"
)

// EventTypeSchema
// The schema of an event type. Schema holds the schema document itself as a string.
type EventTypeSchema struct {
	Type      string     `json:"type"`
	Schema    string     `json:"schema"`
	Version   string     `json:"version,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// EventType
// Descriptor of a named category of events as registered in Nakadi.
type EventType struct {
	Name                 string                               `json:"name"`
	OwningApplication    string                               `json:"owning_application"`
	Category             EventTypeCategory                    `json:"category"`
	EnrichmentStrategies []string                             `json:"enrichment_strategies,omitempty"`
	PartitionStrategy    string                               `json:"partition_strategy,omitempty"`
	PartitionKeyFields   []string                             `json:"partition_key_fields,omitempty"`
	CompatibilityMode    string                               `json:"compatibility_mode,omitempty"`
	Schema               EventTypeSchema                      `json:"schema"`
	DefaultStatistic     optional.Option[EventTypeStatistics] `json:"default_statistic"`
	CreatedAt            *time.Time                           `json:"created_at,omitempty"`
	UpdatedAt            *time.Time                           `json:"updated_at,omitempty"`
}

// Fingerprint hashes the wire form of the event type. Two descriptors that
// serialize identically share a fingerprint.
func (et EventType) Fingerprint() (uint64, error) {
	data, err := json.Marshal(et)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

func (et EventType) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "EventType{name=%s, owningApplication=%s, category=%s", et.Name, et.OwningApplication, et.Category)
	if et.PartitionStrategy != "" {
		fmt.Fprintf(&sb, ", partitionStrategy=%s", et.PartitionStrategy)
	}
	if len(et.PartitionKeyFields) > 0 {
		fmt.Fprintf(&sb, ", partitionKeyFields=%v", et.PartitionKeyFields)
	}
	et.DefaultStatistic.IfSome(func(s EventTypeStatistics) {
		fmt.Fprintf(&sb, ", defaultStatistic=%s", s)
	})
	sb.WriteString("}")
	return sb.String()
}

// Partition
// A partition of an event type with its offset bounds.
type Partition struct {
	Partition             string                 `json:"partition"`
	OldestAvailableOffset string                 `json:"oldest_available_offset"`
	NewestAvailableOffset string                 `json:"newest_available_offset"`
	UnconsumedEvents      optional.Option[int64] `json:"unconsumed_events"`
}
