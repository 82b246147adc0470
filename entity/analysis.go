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

package entity

import (
	"time"

	"github.com/Netcracker/qubership-autonet-service/view"
)

type AnalysisRecord struct {
	tableName struct{} `pg:"analysis_record"`

	Id            string              `pg:"id,pk,type:varchar"`
	SessionId     string              `pg:"session_id,type:varchar,notnull"`
	InputKind     view.InputKind      `pg:"input_kind,type:varchar,notnull"`
	InputName     string              `pg:"input_name,type:varchar"`
	InputChecksum string              `pg:"input_checksum,type:varchar,notnull"`
	Status        view.AnalysisStatus `pg:"status,type:varchar,notnull"`
	Details       string              `pg:"details,type:varchar"`
	DeviceCount   int                 `pg:"device_count,type:integer,use_zero"`
	ErrorCount    int                 `pg:"error_count,type:integer,use_zero"`
	StartedAt     time.Time           `pg:"started_at,type:timestamp without time zone,notnull"`
	FinishedAt    time.Time           `pg:"finished_at,type:timestamp without time zone,notnull"`
	DurationMs    int64               `pg:"duration_ms,type:bigint,use_zero"`
}

func MakeAnalysisHistoryItem(ent AnalysisRecord) view.AnalysisHistoryItem {
	return view.AnalysisHistoryItem{
		Id:          ent.Id,
		InputKind:   ent.InputKind,
		InputName:   ent.InputName,
		Status:      ent.Status,
		Details:     ent.Details,
		DeviceCount: ent.DeviceCount,
		ErrorCount:  ent.ErrorCount,
		StartedAt:   ent.StartedAt,
		DurationMs:  ent.DurationMs,
	}
}
