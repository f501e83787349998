package repo

import (
	"context"
	"time"

	"github.com/odontox-io/odontox/platform/go/persistence"
)

// Repository defines the persistence operations required by the billing service.
type Repository interface {
	ApplyExternalStatus(ctx context.Context, subscriptionID, status, customerID string, eventAt time.Time) (bool, error)
}

type postgresRepository struct {
	subscriptions *persistence.SubscriptionStore
}

// NewPostgresRepository constructs a repository backed by the subscription store.
func NewPostgresRepository(subscriptions *persistence.SubscriptionStore) Repository {
	if subscriptions == nil {
		panic("subscription store is required")
	}
	return &postgresRepository{subscriptions: subscriptions}
}

func (r *postgresRepository) ApplyExternalStatus(ctx context.Context, subscriptionID, status, customerID string, eventAt time.Time) (bool, error) {
	return r.subscriptions.ApplyExternalStatus(ctx, subscriptionID, status, customerID, eventAt)
}
