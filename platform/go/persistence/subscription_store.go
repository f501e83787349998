package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Subscription mirrors the locally persisted view of a processor-managed
// subscription. Status and customer reference are mutated only by applying
// external billing events after creation.
type Subscription struct {
	ID                   uuid.UUID  `db:"id"`
	TenantID             uuid.UUID  `db:"tenant_id"`
	PlanID               uuid.UUID  `db:"plan_id"`
	Status               string     `db:"status"`
	StripeCustomerID     *string    `db:"stripe_customer_id"`
	StripeSubscriptionID *string    `db:"stripe_subscription_id"`
	ExternalEventAt      *time.Time `db:"external_event_at"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

// SubscriptionStore provides access to the subscriptions table.
type SubscriptionStore struct {
	pool *pgxpool.Pool
}

func NewSubscriptionStore(pool *pgxpool.Pool) (*SubscriptionStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &SubscriptionStore{pool: pool}, nil
}

// ApplyExternalStatus updates the row matching the external subscription
// reference in one atomic conditional statement. The external_event_at guard
// makes the write monotonic: an event older than the one already applied is a
// no-op, so duplicated and out-of-order deliveries cannot regress status.
// An event carrying no customer reference keeps the stored one.
// Returns false when no row matched (unknown reference or stale event).
func (s *SubscriptionStore) ApplyExternalStatus(ctx context.Context, stripeSubscriptionID, status, stripeCustomerID string, eventAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
        UPDATE subscriptions
        SET status = $2,
            stripe_customer_id = COALESCE(NULLIF($3, ''), stripe_customer_id),
            external_event_at = $4,
            updated_at = NOW()
        WHERE stripe_subscription_id = $1
          AND (external_event_at IS NULL OR external_event_at <= $4)
    `, stripeSubscriptionID, status, stripeCustomerID, eventAt)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// GetByStripeSubscriptionID fetches the local row for an external reference.
func (s *SubscriptionStore) GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (Subscription, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT id, tenant_id, plan_id, status, stripe_customer_id, stripe_subscription_id,
               external_event_at, created_at, updated_at
        FROM subscriptions
        WHERE stripe_subscription_id = $1
    `, stripeSubscriptionID)

	var sub Subscription
	err := row.Scan(&sub.ID, &sub.TenantID, &sub.PlanID, &sub.Status, &sub.StripeCustomerID,
		&sub.StripeSubscriptionID, &sub.ExternalEventAt, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscription{}, ErrNotFound
		}
		return Subscription{}, err
	}

	return sub, nil
}
