/*
 * Copyright 2024 CMS-Fleet
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package util

import "sync"

// KeyMutex provides one mutex per key. Entries are reference counted and
// removed once the last holder unlocks.
type KeyMutex struct {
	mu      sync.Mutex
	entries map[string]*kmEntry
}

type kmEntry struct {
	mu  sync.Mutex
	ref int
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{
		entries: make(map[string]*kmEntry),
	}
}

func (m *KeyMutex) Lock(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &kmEntry{}
		m.entries[key] = e
	}
	e.ref++
	m.mu.Unlock()
	e.mu.Lock()
}

func (m *KeyMutex) Unlock(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok {
		e.ref--
		if e.ref < 1 {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	if ok {
		e.mu.Unlock()
	}
}
