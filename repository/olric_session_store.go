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
	"errors"
	"fmt"
	"time"

	"github.com/Netcracker/qubership-autonet-service/client"
	"github.com/buraksezer/olric"
	log "github.com/sirupsen/logrus"
)

const sessionDMapName = "autonet-sessions"
const sessionLockDMapName = "autonet-session-locks"

// a stuck analysis must not keep the session locked forever
const sessionLockTimeout = 30 * time.Second
const sessionLockDeadline = 10 * time.Second

func NewOlricSessionStore(op client.OlricProvider, ttl time.Duration) (SessionStore, error) {
	db := op.Get()
	dm, err := db.NewDMap(sessionDMapName)
	if err != nil {
		return nil, fmt.Errorf("failed to create session dmap: %w", err)
	}
	locks, err := db.NewDMap(sessionLockDMapName)
	if err != nil {
		return nil, fmt.Errorf("failed to create session lock dmap: %w", err)
	}
	return &olricSessionStoreImpl{dm: dm, locks: locks, ttl: ttl}, nil
}

type olricSessionStoreImpl struct {
	dm    *olric.DMap
	locks *olric.DMap
	ttl   time.Duration
}

func (o *olricSessionStoreImpl) Get(ctx context.Context, sessionId string, key SessionKey, dest interface{}) (bool, error) {
	val, err := o.dm.Get(storeKey(sessionId, key))
	if err != nil {
		if errors.Is(err, olric.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read session value %s: %w", key, err)
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

func (o *olricSessionStoreImpl) Put(ctx context.Context, sessionId string, key SessionKey, value interface{}) error {
	data, err := encodeValue(value)
	if err != nil {
		return err
	}
	if err := o.dm.PutEx(storeKey(sessionId, key), data, o.ttl); err != nil {
		return fmt.Errorf("failed to write session value %s: %w", key, err)
	}
	return nil
}

func (o *olricSessionStoreImpl) Delete(ctx context.Context, sessionId string, key SessionKey) error {
	err := o.dm.Delete(storeKey(sessionId, key))
	if err != nil && !errors.Is(err, olric.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete session value %s: %w", key, err)
	}
	return nil
}

func (o *olricSessionStoreImpl) Lock(ctx context.Context, sessionId string) (func(), error) {
	lockCtx, err := o.locks.LockWithTimeout(sessionId, sessionLockTimeout, sessionLockDeadline)
	if err != nil {
		return nil, fmt.Errorf("failed to lock session %s: %w", sessionId, err)
	}
	return func() {
		if err := lockCtx.Unlock(); err != nil {
			log.Warnf("Failed to unlock session %s: %s", sessionId, err.Error())
		}
	}, nil
}
