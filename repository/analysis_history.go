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
	"fmt"
	"time"

	"github.com/Netcracker/qubership-autonet-service/db"
	"github.com/Netcracker/qubership-autonet-service/entity"
	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

type AnalysisHistoryRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveRecord(ctx context.Context, ent entity.AnalysisRecord) error
	ListSessionRecords(ctx context.Context, sessionId string, limit int) ([]entity.AnalysisRecord, error)
	DeleteRecordsBefore(ctx context.Context, before time.Time) (int, error)
}

func NewAnalysisHistoryRepository(cp db.ConnectionProvider) AnalysisHistoryRepository {
	return &analysisHistoryRepositoryImpl{cp: cp}
}

type analysisHistoryRepositoryImpl struct {
	cp db.ConnectionProvider
}

func (a analysisHistoryRepositoryImpl) EnsureSchema(ctx context.Context) error {
	err := a.cp.GetConnection().ModelContext(ctx, (*entity.AnalysisRecord)(nil)).CreateTable(&orm.CreateTableOptions{
		IfNotExists: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create analysis_record table: %w", err)
	}
	return nil
}

func (a analysisHistoryRepositoryImpl) SaveRecord(ctx context.Context, ent entity.AnalysisRecord) error {
	_, err := a.cp.GetConnection().ModelContext(ctx, &ent).Insert()
	if err != nil {
		return fmt.Errorf("failed to insert analysis record %s: %w", ent.Id, err)
	}
	return nil
}

func (a analysisHistoryRepositoryImpl) ListSessionRecords(ctx context.Context, sessionId string, limit int) ([]entity.AnalysisRecord, error) {
	var ents []entity.AnalysisRecord
	err := a.cp.GetConnection().ModelContext(ctx, &ents).
		Where("session_id = ?", sessionId).
		Order("started_at DESC").
		Limit(limit).
		Select()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return ents, nil
}

func (a analysisHistoryRepositoryImpl) DeleteRecordsBefore(ctx context.Context, before time.Time) (int, error) {
	var deleted int
	err := a.cp.GetConnection().RunInTransaction(ctx, func(tx *pg.Tx) error {
		res, err := tx.ModelContext(ctx, (*entity.AnalysisRecord)(nil)).
			Where("finished_at < ?", before).
			Delete()
		if err != nil {
			return fmt.Errorf("failed to delete analysis records: %w", err)
		}
		deleted = res.RowsAffected()
		return nil
	})
	return deleted, err
}

/*
create table analysis_record
(
    id             varchar
        constraint analysis_record_pk primary key,
    session_id     varchar                     not null,
    input_kind     varchar                     not null,
    input_name     varchar,
    input_checksum varchar                     not null,
    status         varchar                     not null,
    details        varchar,
    device_count   integer,
    error_count    integer,
    started_at     timestamp without time zone not null,
    finished_at    timestamp without time zone not null,
    duration_ms    bigint
);
*/
