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

package service

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Netcracker/qubership-autonet-service/client"
	"github.com/Netcracker/qubership-autonet-service/db"
	"github.com/Netcracker/qubership-autonet-service/utils"
	log "github.com/sirupsen/logrus"
)

const (
	LISTEN_ADDRESS        = "LISTEN_ADDRESS"
	ORIGIN_ALLOWED        = "ORIGIN_ALLOWED"
	LOG_LEVEL             = "LOG_LEVEL"
	ANALYZER_PROVIDER     = "ANALYZER_PROVIDER"
	OPENAI_API_KEY        = "OPENAI_API_KEY"
	OPENAI_MODEL          = "OPENAI_MODEL"
	OPENAI_PROXY          = "OPENAI_PROXY"
	ANTHROPIC_API_KEY     = "ANTHROPIC_API_KEY"
	ANTHROPIC_MODEL       = "ANTHROPIC_MODEL"
	REMOTE_ANALYZER_URL   = "REMOTE_ANALYZER_URL"
	REMOTE_ANALYZER_TOKEN = "REMOTE_ANALYZER_TOKEN"
	SESSION_SECRET        = "SESSION_SECRET"
	SESSION_TTL           = "SESSION_TTL"
	SESSION_STORE         = "SESSION_STORE"
	OLRIC_DISCOVERY_MODE  = "OLRIC_DISCOVERY_MODE"
	OLRIC_REPLICA_COUNT   = "OLRIC_REPLICA_COUNT"
	OLRIC_PEERS           = "OLRIC_PEERS"
	NAMESPACE             = "NAMESPACE"
	API_KEYS              = "API_KEYS"
	POSTGRES_HOST         = "POSTGRES_HOST"
	POSTGRES_PORT         = "POSTGRES_PORT"
	POSTGRES_DB           = "POSTGRES_DB"
	POSTGRES_USERNAME     = "POSTGRES_USERNAME"
	POSTGRES_PASSWORD     = "POSTGRES_PASSWORD"
	MAX_UPLOAD_SIZE       = "MAX_UPLOAD_SIZE"
	HISTORY_RETENTION     = "HISTORY_RETENTION"
)

const (
	SessionStoreLocal = "local"
	SessionStoreOlric = "olric"
)

const defaultSessionTTL = 12 * time.Hour
const defaultMaxUploadSize int64 = 32 << 20
const defaultHistoryRetention = 30 * 24 * time.Hour

type SystemInfoService interface {
	Init() error
	GetListenAddress() string
	GetOriginAllowed() string
	GetLogLevel() string
	GetAnalyzerConfig() client.AnalyzerConfig
	GetSessionSecret() []byte
	GetSessionTTL() time.Duration
	GetSessionStore() string
	GetOlricConfig() client.OlricConfig
	GetApiKeys() []string
	IsHistoryEnabled() bool
	GetDbCredentials() db.DbCredentials
	GetMaxUploadSize() int64
	GetHistoryRetention() time.Duration
}

func NewSystemInfoService() (SystemInfoService, error) {
	s := &systemInfoServiceImpl{
		systemInfoMap: make(map[string]interface{})}
	if err := s.Init(); err != nil {
		log.Error("Failed to read system info: " + err.Error())
		return nil, err
	}
	return s, nil
}

type systemInfoServiceImpl struct {
	systemInfoMap map[string]interface{}
}

func (g systemInfoServiceImpl) Init() error {
	g.setListenAddress()
	g.setOriginAllowed()
	g.setLogLevel()
	if err := g.setAnalyzerConfig(); err != nil {
		return err
	}
	if err := g.setSessionConfig(); err != nil {
		return err
	}
	if err := g.setOlricConfig(); err != nil {
		return err
	}
	g.systemInfoMap[API_KEYS] = utils.SplitList(os.Getenv(API_KEYS))
	if err := g.setDbCredentials(); err != nil {
		return err
	}
	if err := g.setMaxUploadSize(); err != nil {
		return err
	}
	if err := g.setHistoryRetention(); err != nil {
		return err
	}
	return nil
}

func (g systemInfoServiceImpl) setListenAddress() {
	listenAddr := os.Getenv(LISTEN_ADDRESS)
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	g.systemInfoMap[LISTEN_ADDRESS] = listenAddr
}

func (g systemInfoServiceImpl) GetListenAddress() string {
	return g.systemInfoMap[LISTEN_ADDRESS].(string)
}

func (g systemInfoServiceImpl) setOriginAllowed() {
	g.systemInfoMap[ORIGIN_ALLOWED] = os.Getenv(ORIGIN_ALLOWED)
}

func (g systemInfoServiceImpl) GetOriginAllowed() string {
	return g.systemInfoMap[ORIGIN_ALLOWED].(string)
}

func (g systemInfoServiceImpl) setLogLevel() {
	logLevel := os.Getenv(LOG_LEVEL)
	if logLevel == "" {
		logLevel = "info"
	}
	g.systemInfoMap[LOG_LEVEL] = logLevel
}

func (g systemInfoServiceImpl) GetLogLevel() string {
	return g.systemInfoMap[LOG_LEVEL].(string)
}

func (g systemInfoServiceImpl) setAnalyzerConfig() error {
	cfg := client.AnalyzerConfig{Provider: client.AnalyzerProvider(os.Getenv(ANALYZER_PROVIDER))}
	switch cfg.Provider {
	case client.ProviderOpenAI, "":
		cfg.Provider = client.ProviderOpenAI
		cfg.ApiKey = os.Getenv(OPENAI_API_KEY)
		cfg.Model = os.Getenv(OPENAI_MODEL)
		cfg.BaseUrl = os.Getenv(OPENAI_PROXY)
	case client.ProviderAnthropic:
		cfg.ApiKey = os.Getenv(ANTHROPIC_API_KEY)
		cfg.Model = os.Getenv(ANTHROPIC_MODEL)
	case client.ProviderRemote:
		cfg.BaseUrl = os.Getenv(REMOTE_ANALYZER_URL)
		cfg.ApiKey = os.Getenv(REMOTE_ANALYZER_TOKEN)
	default:
		return fmt.Errorf("%s has unsupported value '%s'", ANALYZER_PROVIDER, cfg.Provider)
	}
	g.systemInfoMap[ANALYZER_PROVIDER] = cfg
	return nil
}

func (g systemInfoServiceImpl) GetAnalyzerConfig() client.AnalyzerConfig {
	return g.systemInfoMap[ANALYZER_PROVIDER].(client.AnalyzerConfig)
}

func (g systemInfoServiceImpl) setSessionConfig() error {
	secret := []byte(os.Getenv(SESSION_SECRET))
	if len(secret) == 0 {
		log.Warnf("%s is not set, generating a random one. Sessions will not survive restart and will not be shared between replicas", SESSION_SECRET)
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
	} else if len(secret) < 32 {
		return fmt.Errorf("%s must be at least 32 bytes long", SESSION_SECRET)
	}
	g.systemInfoMap[SESSION_SECRET] = secret

	ttl := defaultSessionTTL
	if ttlStr := os.Getenv(SESSION_TTL); ttlStr != "" {
		var err error
		ttl, err = time.ParseDuration(ttlStr)
		if err != nil {
			return fmt.Errorf("%s has incorrect value '%s': %w", SESSION_TTL, ttlStr, err)
		}
	}
	g.systemInfoMap[SESSION_TTL] = ttl

	store := os.Getenv(SESSION_STORE)
	if store == "" {
		store = SessionStoreLocal
	}
	if store != SessionStoreLocal && store != SessionStoreOlric {
		return fmt.Errorf("%s has unsupported value '%s'", SESSION_STORE, store)
	}
	g.systemInfoMap[SESSION_STORE] = store
	return nil
}

func (g systemInfoServiceImpl) GetSessionSecret() []byte {
	return g.systemInfoMap[SESSION_SECRET].([]byte)
}

func (g systemInfoServiceImpl) GetSessionTTL() time.Duration {
	return g.systemInfoMap[SESSION_TTL].(time.Duration)
}

func (g systemInfoServiceImpl) GetSessionStore() string {
	return g.systemInfoMap[SESSION_STORE].(string)
}

func (g systemInfoServiceImpl) setOlricConfig() error {
	cfg := client.OlricConfig{
		DiscoveryMode: os.Getenv(OLRIC_DISCOVERY_MODE),
		Namespace:     os.Getenv(NAMESPACE),
		Peers:         utils.SplitList(os.Getenv(OLRIC_PEERS)),
	}
	if rc := os.Getenv(OLRIC_REPLICA_COUNT); rc != "" {
		var err error
		cfg.ReplicaCount, err = strconv.Atoi(rc)
		if err != nil {
			return fmt.Errorf("%s has incorrect value '%s': %w", OLRIC_REPLICA_COUNT, rc, err)
		}
	}
	g.systemInfoMap[OLRIC_DISCOVERY_MODE] = cfg
	return nil
}

func (g systemInfoServiceImpl) GetOlricConfig() client.OlricConfig {
	return g.systemInfoMap[OLRIC_DISCOVERY_MODE].(client.OlricConfig)
}

func (g systemInfoServiceImpl) GetApiKeys() []string {
	return g.systemInfoMap[API_KEYS].([]string)
}

func (g systemInfoServiceImpl) setDbCredentials() error {
	creds := db.DbCredentials{
		Host:     os.Getenv(POSTGRES_HOST),
		Port:     5432,
		Database: os.Getenv(POSTGRES_DB),
		Username: os.Getenv(POSTGRES_USERNAME),
		Password: os.Getenv(POSTGRES_PASSWORD),
	}
	if port := os.Getenv(POSTGRES_PORT); port != "" {
		var err error
		creds.Port, err = strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%s has incorrect value '%s': %w", POSTGRES_PORT, port, err)
		}
	}
	if creds.Database == "" {
		creds.Database = "autonet"
	}
	g.systemInfoMap[POSTGRES_HOST] = creds
	return nil
}

func (g systemInfoServiceImpl) IsHistoryEnabled() bool {
	return g.GetDbCredentials().Host != ""
}

func (g systemInfoServiceImpl) GetDbCredentials() db.DbCredentials {
	return g.systemInfoMap[POSTGRES_HOST].(db.DbCredentials)
}

func (g systemInfoServiceImpl) setMaxUploadSize() error {
	size := defaultMaxUploadSize
	if sizeStr := os.Getenv(MAX_UPLOAD_SIZE); sizeStr != "" {
		var err error
		size, err = strconv.ParseInt(sizeStr, 10, 64)
		if err != nil || size <= 0 {
			return fmt.Errorf("%s has incorrect value '%s'", MAX_UPLOAD_SIZE, sizeStr)
		}
	}
	g.systemInfoMap[MAX_UPLOAD_SIZE] = size
	return nil
}

func (g systemInfoServiceImpl) GetMaxUploadSize() int64 {
	return g.systemInfoMap[MAX_UPLOAD_SIZE].(int64)
}

func (g systemInfoServiceImpl) setHistoryRetention() error {
	retention := defaultHistoryRetention
	if retentionStr := os.Getenv(HISTORY_RETENTION); retentionStr != "" {
		var err error
		retention, err = time.ParseDuration(retentionStr)
		if err != nil || retention <= 0 {
			return fmt.Errorf("%s has incorrect value '%s'", HISTORY_RETENTION, retentionStr)
		}
	}
	g.systemInfoMap[HISTORY_RETENTION] = retention
	return nil
}

func (g systemInfoServiceImpl) GetHistoryRetention() time.Duration {
	return g.systemInfoMap[HISTORY_RETENTION].(time.Duration)
}
