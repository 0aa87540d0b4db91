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
	"encoding/binary"
	"encoding/json"
	"fmt"

	"nakadigo/pkg/optional"

	"github.com/cespare/xxhash/v2"
)

// EventTypeStatistics
// Operational statistics for an event type. Nakadi reports them from the runtime
// and clients may use them to guide local tuning; nothing here enforces them.
// Every field may be absent, meaning "not reported", which is distinct from zero.
// Values are immutable once constructed and are not range checked.
type EventTypeStatistics struct {
	messagesPerMinute optional.Option[int]
	messageSize       optional.Option[int]
	readParallelism   optional.Option[int]
	writeParallelism  optional.Option[int]
}

// NewEventTypeStatistics stores the four values as given.
func NewEventTypeStatistics(messagesPerMinute, messageSize, readParallelism,
	writeParallelism optional.Option[int]) EventTypeStatistics {

	return EventTypeStatistics{
		messagesPerMinute: messagesPerMinute,
		messageSize:       messageSize,
		readParallelism:   readParallelism,
		writeParallelism:  writeParallelism,
	}
}

// MessagesPerMinute expected sustained publish rate.
func (s EventTypeStatistics) MessagesPerMinute() optional.Option[int] {
	return s.messagesPerMinute
}

// MessageSize expected average event size in bytes.
func (s EventTypeStatistics) MessageSize() optional.Option[int] {
	return s.messageSize
}

// ReadParallelism suggested number of concurrent consumers.
func (s EventTypeStatistics) ReadParallelism() optional.Option[int] {
	return s.readParallelism
}

// WriteParallelism suggested number of concurrent producers.
func (s EventTypeStatistics) WriteParallelism() optional.Option[int] {
	return s.writeParallelism
}

// Equal is field-by-field equality; absent equals absent.
func (s EventTypeStatistics) Equal(other EventTypeStatistics) bool {
	return s == other
}

// Hash is consistent with Equal.
func (s EventTypeStatistics) Hash() uint64 {
	buf := make([]byte, 0, 4*9)
	for _, field := range s.fields() {
		v, ok := field.Take()
		if !ok {
			buf = append(buf, 0)
			buf = binary.BigEndian.AppendUint64(buf, 0)
			continue
		}
		buf = append(buf, 1)
		buf = binary.BigEndian.AppendUint64(buf, uint64(int64(v)))
	}
	return xxhash.Sum64(buf)
}

func (s EventTypeStatistics) String() string {
	return fmt.Sprintf("EventTypeStatistics{messagesPerMinute=%s, messageSize=%s, readParallelism=%s, writeParallelism=%s}",
		s.messagesPerMinute, s.messageSize, s.readParallelism, s.writeParallelism)
}

func (s EventTypeStatistics) fields() [4]optional.Option[int] {
	return [4]optional.Option[int]{s.messagesPerMinute, s.messageSize, s.readParallelism, s.writeParallelism}
}

// statisticsJSON is the wire form. Pointers let absent fields drop out of the output.
type statisticsJSON struct {
	MessagesPerMinute *int `json:"messages_per_minute,omitempty"`
	MessageSize       *int `json:"message_size,omitempty"`
	ReadParallelism   *int `json:"read_parallelism,omitempty"`
	WriteParallelism  *int `json:"write_parallelism,omitempty"`
}

func toPointer(o optional.Option[int]) *int {
	v, ok := o.Take()
	if !ok {
		return nil
	}
	return &v
}

// MarshalJSON omits absent fields.
func (s EventTypeStatistics) MarshalJSON() ([]byte, error) {
	return json.Marshal(statisticsJSON{
		MessagesPerMinute: toPointer(s.messagesPerMinute),
		MessageSize:       toPointer(s.messageSize),
		ReadParallelism:   toPointer(s.readParallelism),
		WriteParallelism:  toPointer(s.writeParallelism),
	})
}

// UnmarshalJSON maps missing and null keys to absent values.
func (s *EventTypeStatistics) UnmarshalJSON(data []byte) error {
	var raw statisticsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewEventTypeStatistics(
		optional.FromPointer(raw.MessagesPerMinute),
		optional.FromPointer(raw.MessageSize),
		optional.FromPointer(raw.ReadParallelism),
		optional.FromPointer(raw.WriteParallelism),
	)
	return nil
}
