// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shaj13/libcache"
	_ "github.com/shaj13/libcache/lru"
	log "github.com/sirupsen/logrus"
)

type SessionKey string

const (
	SessionKeyState        SessionKey = "state"
	SessionKeyAcknowledged SessionKey = "acknowledged"
	SessionKeyDraft        SessionKey = "draft"
	SessionKeyResultsUI    SessionKey = "results_ui"
)

// SessionStore keeps per-session values for the lifetime of a browsing session.
// Values are stored as JSON and expire ttl after their last write.
type SessionStore interface {
	Get(ctx context.Context, sessionId string, key SessionKey, dest interface{}) (bool, error)
	Put(ctx context.Context, sessionId string, key SessionKey, value interface{}) error
	Delete(ctx context.Context, sessionId string, key SessionKey) error
	// Lock serializes state transitions of one session. The returned func releases the lock.
	Lock(ctx context.Context, sessionId string) (func(), error)
}

func storeKey(sessionId string, key SessionKey) string {
	return sessionId + "|" + string(key)
}

func encodeValue(value interface{}) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session value: %w", err)
	}
	return data, nil
}

func decodeValue(data []byte, dest interface{}) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode session value: %w", err)
	}
	return nil
}

const localStoreCapacity = 10000

func NewLocalSessionStore(ttl time.Duration) SessionStore {
	cache := libcache.LRU.New(localStoreCapacity)
	cache.SetTTL(ttl)
	cache.RegisterOnExpired(func(key, _ interface{}) {
		cache.Delete(key)
	})
	return &localSessionStoreImpl{
		cache: cache,
		locks: make(map[string]*sessionLock),
	}
}

type localSessionStoreImpl struct {
	cache libcache.Cache

	mutex sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mutex sync.Mutex
	refs  int
}

func (l *localSessionStoreImpl) Get(ctx context.Context, sessionId string, key SessionKey, dest interface{}) (bool, error) {
	val, ok := l.cache.Load(storeKey(sessionId, key))
	if !ok {
		return false, nil
	}
	data, ok := val.([]byte)
	if !ok {
		return false, fmt.Errorf("unexpected session value type %T", val)
	}
	if err := decodeValue(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (l *localSessionStoreImpl) Put(ctx context.Context, sessionId string, key SessionKey, value interface{}) error {
	data, err := encodeValue(value)
	if err != nil {
		return err
	}
	l.cache.Store(storeKey(sessionId, key), data)
	return nil
}

func (l *localSessionStoreImpl) Delete(ctx context.Context, sessionId string, key SessionKey) error {
	l.cache.Delete(storeKey(sessionId, key))
	return nil
}

func (l *localSessionStoreImpl) Lock(ctx context.Context, sessionId string) (func(), error) {
	l.mutex.Lock()
	lock, ok := l.locks[sessionId]
	if !ok {
		lock = &sessionLock{}
		l.locks[sessionId] = lock
	}
	lock.refs++
	l.mutex.Unlock()

	lock.mutex.Lock()
	log.Tracef("session %s locked", sessionId)

	return func() {
		lock.mutex.Unlock()
		l.mutex.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, sessionId)
		}
		l.mutex.Unlock()
	}, nil
}
