package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/odontox-io/odontox/domains/billing/be/repo"
)

// ErrInvalidEvent is returned when a subscription event lacks the fields
// required to apply it.
var ErrInvalidEvent = errors.New("invalid subscription event")

// SubscriptionEvent is the processor-agnostic shape of an external billing
// notification. OccurredAt orders events: older events never overwrite the
// effect of newer ones.
type SubscriptionEvent struct {
	SubscriptionID string
	CustomerID     string
	Status         string
	OccurredAt     time.Time
}

// Service applies external billing events to the local subscription mirror.
type Service interface {
	ApplySubscriptionEvent(ctx context.Context, event SubscriptionEvent) (applied bool, err error)
}

type service struct {
	repo repo.Repository
}

// New constructs a billing Service backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("billing repository is required")
	}
	return &service{repo: r}
}

// ApplySubscriptionEvent records the event's status on the referenced
// subscription. Replays and stale deliveries return applied=false without
// touching the row, so processing is idempotent per event.
func (s *service) ApplySubscriptionEvent(ctx context.Context, event SubscriptionEvent) (bool, error) {
	subscriptionID := strings.TrimSpace(event.SubscriptionID)
	status := strings.TrimSpace(event.Status)
	if subscriptionID == "" || status == "" || event.OccurredAt.IsZero() {
		return false, ErrInvalidEvent
	}

	return s.repo.ApplyExternalStatus(ctx, subscriptionID, status, strings.TrimSpace(event.CustomerID), event.OccurredAt)
}
