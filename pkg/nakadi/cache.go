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

package nakadi

import (
	"time"

	"nakadigo/pkg/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// eventTypeCache keeps recently fetched event types by name. Only present
// event types are stored, a 404 is always asked again.
type eventTypeCache struct {
	lru *expirable.LRU[string, model.EventType]
}

func newEventTypeCache(size int, ttl time.Duration) *eventTypeCache {
	return &eventTypeCache{
		lru: expirable.NewLRU[string, model.EventType](size, nil, ttl),
	}
}

func (c *eventTypeCache) get(name string) (model.EventType, bool) {
	return c.lru.Get(name)
}

func (c *eventTypeCache) add(et model.EventType) {
	c.lru.Add(et.Name, et)
}

func (c *eventTypeCache) invalidate(name string) {
	c.lru.Remove(name)
}

func (c *eventTypeCache) len() int {
	return c.lru.Len()
}
