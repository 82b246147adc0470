package service

import (
	"context"
	"time"

	"github.com/Netcracker/qubership-autonet-service/entity"
	"github.com/Netcracker/qubership-autonet-service/repository"
	"github.com/Netcracker/qubership-autonet-service/utils"
	"github.com/Netcracker/qubership-autonet-service/view"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const historyListLimit = 50

type AnalysisHistoryService interface {
	RecordCompletion(ctx context.Context, sessionId string, input view.TopologyInput, startedAt time.Time, result *view.AnalysisResult, errMsg string)
	GetSessionHistory(ctx context.Context, sessionId string) (*view.AnalysisHistory, error)
}

// NewAnalysisHistoryService returns a history that forgets everything when repo is nil.
func NewAnalysisHistoryService(repo repository.AnalysisHistoryRepository) AnalysisHistoryService {
	return &analysisHistoryServiceImpl{repo: repo}
}

type analysisHistoryServiceImpl struct {
	repo repository.AnalysisHistoryRepository
}

func (a analysisHistoryServiceImpl) RecordCompletion(ctx context.Context, sessionId string, input view.TopologyInput, startedAt time.Time, result *view.AnalysisResult, errMsg string) {
	if a.repo == nil {
		return
	}
	finishedAt := time.Now()
	ent := entity.AnalysisRecord{
		Id:            uuid.New().String(),
		SessionId:     sessionId,
		InputKind:     input.Kind(),
		InputName:     input.Name(),
		InputChecksum: utils.CreateSHA256Hash(input.Bytes()),
		Status:        view.AnalysisStatusSuccess,
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
		DurationMs:    finishedAt.Sub(startedAt).Milliseconds(),
	}
	if result != nil {
		ent.DeviceCount = len(result.DeviceConfigs)
		ent.ErrorCount = result.ErrorCount()
	} else {
		ent.Status = view.AnalysisStatusError
		ent.Details = errMsg
	}
	if err := a.repo.SaveRecord(ctx, ent); err != nil {
		log.Errorf("Failed to save analysis history record for session %s: %s", sessionId, err.Error())
	}
}

func (a analysisHistoryServiceImpl) GetSessionHistory(ctx context.Context, sessionId string) (*view.AnalysisHistory, error) {
	result := view.AnalysisHistory{Analyses: make([]view.AnalysisHistoryItem, 0)}
	if a.repo == nil {
		return &result, nil
	}
	ents, err := a.repo.ListSessionRecords(ctx, sessionId, historyListLimit)
	if err != nil {
		return nil, err
	}
	for _, ent := range ents {
		result.Analyses = append(result.Analyses, entity.MakeAnalysisHistoryItem(ent))
	}
	return &result, nil
}
