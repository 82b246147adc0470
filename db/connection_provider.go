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

package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pg/pg/v10"
	log "github.com/sirupsen/logrus"
)

type ConnectionProvider interface {
	GetConnection() *pg.DB
	Close() error
}

type DbCredentials struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

func NewConnectionProvider(creds DbCredentials) ConnectionProvider {
	return &connectionProviderImpl{creds: creds}
}

type connectionProviderImpl struct {
	creds DbCredentials
	db    *pg.DB
	mutex sync.Mutex
}

func (c *connectionProviderImpl) GetConnection() *pg.DB {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.db == nil {
		c.db = pg.Connect(&pg.Options{
			Addr:        fmt.Sprintf("%s:%d", c.creds.Host, c.creds.Port),
			User:        c.creds.Username,
			Password:    c.creds.Password,
			Database:    c.creds.Database,
			PoolSize:    10,
			MaxRetries:  5,
			DialTimeout: 10 * time.Second,
			ReadTimeout: 30 * time.Second,
		})
		if err := c.db.Ping(context.Background()); err != nil {
			log.Errorf("Failed to ping database %s: %s", c.creds.Database, err.Error())
		} else {
			log.Infof("Connected to database %s at %s:%d", c.creds.Database, c.creds.Host, c.creds.Port)
		}
	}
	return c.db
}

func (c *connectionProviderImpl) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
