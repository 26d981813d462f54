// MIT License
//
// Copyright (c) 2023 Lack
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/btree"
	"github.com/vine-io/flowview"
	"github.com/vine-io/flowview/view"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStoreFull       = errors.New("too many open sessions")
)

type session struct {
	id      string
	doc     *flowview.Document
	state   *view.State
	touched time.Time
}

// Snapshot is a copy of a session taken under the store lock.
type Snapshot struct {
	Id       string
	Document *flowview.Document
	State    view.State
}

// Store holds independent viewer sessions. Each session owns its own
// view.State; the store lock serializes every access to it.
type Store struct {
	mu       sync.RWMutex
	sessions *btree.Map[string, *session]
	max      int
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(max int, ttl time.Duration) *Store {
	return &Store{
		sessions: &btree.Map[string, *session]{},
		max:      max,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Store) Create(doc *flowview.Document, st *view.State) (*Snapshot, error) {
	if st == nil {
		st = view.NewState()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	if s.max > 0 && s.sessions.Len() >= s.max {
		return nil, ErrStoreFull
	}

	ss := &session{
		id:      uuid.New().String(),
		doc:     doc,
		state:   st,
		touched: s.now(),
	}
	s.sessions.Set(ss.id, ss)

	return ss.snapshot(), nil
}

func (s *Store) Get(id string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	ss.touched = s.now()
	return ss.snapshot(), nil
}

// Apply runs a view action (see view.State.Apply) on one session.
func (s *Store) Apply(id, action string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := ss.state.Apply(action); err != nil {
		return nil, err
	}
	ss.touched = s.now()
	return ss.snapshot(), nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions.Delete(id); !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions.Len()
}

// Expire drops sessions idle for longer than the ttl and returns how many
// were removed.
func (s *Store) Expire() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expireLocked()
}

func (s *Store) expireLocked() int {
	if s.ttl <= 0 {
		return 0
	}

	deadline := s.now().Add(-s.ttl)
	stale := make([]string, 0)
	s.sessions.Scan(func(id string, ss *session) bool {
		if ss.touched.Before(deadline) {
			stale = append(stale, id)
		}
		return true
	})
	for _, id := range stale {
		s.sessions.Delete(id)
	}
	return len(stale)
}

func (ss *session) snapshot() *Snapshot {
	return &Snapshot{
		Id:       ss.id,
		Document: ss.doc,
		State:    *ss.state,
	}
}
