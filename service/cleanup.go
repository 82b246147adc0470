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
	"context"
	"time"

	"github.com/Netcracker/qubership-autonet-service/repository"
	"github.com/Netcracker/qubership-autonet-service/utils"
	log "github.com/sirupsen/logrus"
)

const cleanupInterval = time.Hour

// CleanupService removes analysis history records older than the retention period.
type CleanupService interface {
	ClearOldRecords(ctx context.Context) (int, error)
	StartPeriodicCleanup(ctx context.Context)
}

type cleanupServiceImpl struct {
	repo      repository.AnalysisHistoryRepository
	retention time.Duration
	now       func() time.Time
}

func NewCleanupService(repo repository.AnalysisHistoryRepository, retention time.Duration) CleanupService {
	return &cleanupServiceImpl{
		repo:      repo,
		retention: retention,
		now:       time.Now,
	}
}

func (s *cleanupServiceImpl) ClearOldRecords(ctx context.Context) (int, error) {
	before := s.now().Add(-s.retention)
	log.Debugf("Starting analysis history cleanup, removing records finished before %s", before.Format(time.RFC3339))

	deleted, err := s.repo.DeleteRecordsBefore(ctx, before)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Infof("Analysis history cleanup removed %d record(s)", deleted)
	}
	return deleted, nil
}

// StartPeriodicCleanup runs the cleanup right away and then every hour until ctx is done.
func (s *cleanupServiceImpl) StartPeriodicCleanup(ctx context.Context) {
	utils.SafeAsync(func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			if _, err := s.ClearOldRecords(ctx); err != nil {
				log.Errorf("Analysis history cleanup failed: %s", err.Error())
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	})
}
