package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	applyFn func(ctx context.Context, subscriptionID, status, customerID string, eventAt time.Time) (bool, error)
}

func (m *mockRepository) ApplyExternalStatus(ctx context.Context, subscriptionID, status, customerID string, eventAt time.Time) (bool, error) {
	if m.applyFn == nil {
		panic("applyFn not configured")
	}
	return m.applyFn(ctx, subscriptionID, status, customerID, eventAt)
}

func TestApplySubscriptionEvent(t *testing.T) {
	t.Parallel()

	eventAt := time.Now().UTC().Truncate(time.Second)
	var gotSubscription, gotStatus, gotCustomer string

	repository := &mockRepository{
		applyFn: func(_ context.Context, subscriptionID, status, customerID string, at time.Time) (bool, error) {
			gotSubscription = subscriptionID
			gotStatus = status
			gotCustomer = customerID
			require.Equal(t, eventAt, at)
			return true, nil
		},
	}
	svc := New(repository)

	applied, err := svc.ApplySubscriptionEvent(context.Background(), SubscriptionEvent{
		SubscriptionID: " sub_123 ",
		CustomerID:     "cus_456",
		Status:         "active",
		OccurredAt:     eventAt,
	})
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, "sub_123", gotSubscription)
	require.Equal(t, "active", gotStatus)
	require.Equal(t, "cus_456", gotCustomer)
}

func TestApplySubscriptionEventStale(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		applyFn: func(_ context.Context, _, _, _ string, _ time.Time) (bool, error) {
			// The store reports no row matched: either an unknown
			// reference or an event older than the one already applied.
			return false, nil
		},
	}
	svc := New(repository)

	applied, err := svc.ApplySubscriptionEvent(context.Background(), SubscriptionEvent{
		SubscriptionID: "sub_123",
		Status:         "canceled",
		OccurredAt:     time.Now(),
	})
	require.NoError(t, err)
	require.False(t, applied)
}

func TestApplySubscriptionEventRejectsIncompleteEvents(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{
		applyFn: func(_ context.Context, _, _, _ string, _ time.Time) (bool, error) {
			t.Fatal("incomplete events must not reach the repository")
			return false, nil
		},
	})

	cases := []SubscriptionEvent{
		{Status: "active", OccurredAt: time.Now()},
		{SubscriptionID: "sub_123", OccurredAt: time.Now()},
		{SubscriptionID: "sub_123", Status: "active"},
	}
	for _, event := range cases {
		_, err := svc.ApplySubscriptionEvent(context.Background(), event)
		require.ErrorIs(t, err, ErrInvalidEvent)
	}
}
