package service

import (
	"context"

	"github.com/Netcracker/qubership-autonet-service/repository"
	log "github.com/sirupsen/logrus"
)

// DisclaimerGate holds the session scoped acknowledgement of the configuration review disclaimer.
// The flag does not depend on the loaded result, so a new analysis in the same session stays acknowledged.
type DisclaimerGate interface {
	IsAcknowledged(ctx context.Context, sessionId string) (bool, error)
	SetAcknowledged(ctx context.Context, sessionId string, acknowledged bool) error
}

func NewDisclaimerGate(store repository.SessionStore) DisclaimerGate {
	return &disclaimerGateImpl{store: store}
}

type disclaimerGateImpl struct {
	store repository.SessionStore
}

func (d disclaimerGateImpl) IsAcknowledged(ctx context.Context, sessionId string) (bool, error) {
	var acknowledged bool
	found, err := d.store.Get(ctx, sessionId, repository.SessionKeyAcknowledged, &acknowledged)
	if err != nil {
		return false, err
	}
	return found && acknowledged, nil
}

func (d disclaimerGateImpl) SetAcknowledged(ctx context.Context, sessionId string, acknowledged bool) error {
	log.Debugf("session %s disclaimer acknowledged: %t", sessionId, acknowledged)
	if acknowledged {
		return d.store.Put(ctx, sessionId, repository.SessionKeyAcknowledged, true)
	}
	return d.store.Delete(ctx, sessionId, repository.SessionKeyAcknowledged)
}
