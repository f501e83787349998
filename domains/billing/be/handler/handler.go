package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/odontox-io/odontox/domains/billing/be/service"
	"github.com/odontox-io/odontox/platform/go/httpjson"
)

// Stripe subscription events with expanded line items can run well past 64 KiB.
const maxWebhookBody = 1 << 20

// Handler receives billing processor webhooks.
type Handler struct {
	svc           service.Service
	webhookSecret string
	logger        *zap.Logger
}

// New constructs the billing webhook handler. An empty webhookSecret disables
// processing: deliveries are acknowledged but never applied, since their
// origin cannot be verified.
func New(svc service.Service, webhookSecret string, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("billing service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, webhookSecret: webhookSecret, logger: logger}
}

// Routes mounts the webhook endpoint on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/stripe", h.stripeWebhook)
	return r
}

func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpjson.WriteError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		httpjson.WriteError(w, http.StatusBadRequest, "unreadable payload")
		return
	}

	if h.webhookSecret == "" {
		h.logger.Warn("stripe webhook received but no signing secret is configured, ignoring")
		httpjson.Write(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	switch string(event.Type) {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
		h.applySubscriptionEvent(w, r, event)
	default:
		// Unhandled event types are acknowledged so Stripe stops retrying.
		httpjson.Write(w, http.StatusOK, map[string]bool{"received": true})
	}
}

func (h *Handler) applySubscriptionEvent(w http.ResponseWriter, r *http.Request, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "malformed subscription payload")
		return
	}

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	applied, err := h.svc.ApplySubscriptionEvent(r.Context(), service.SubscriptionEvent{
		SubscriptionID: sub.ID,
		CustomerID:     customerID,
		Status:         string(sub.Status),
		OccurredAt:     time.Unix(event.Created, 0).UTC(),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			httpjson.WriteError(w, http.StatusBadRequest, "malformed subscription payload")
			return
		}
		h.logger.Error("subscription event apply failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !applied {
		h.logger.Info("subscription event skipped",
			zap.String("event_id", event.ID),
			zap.String("subscription_id", sub.ID))
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"received": true, "applied": applied})
}
