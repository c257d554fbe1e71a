package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/realtime"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

// ============================================================
// Notifications
// ============================================================

func listNotificationsHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/notifications")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		list, err := market.ListNotifications(ctx, p.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func markNotificationReadHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/notifications/{id}/read")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		n, err := market.MarkNotificationRead(ctx, p, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

func markAllNotificationsReadHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/notifications/read-all")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		n, err := market.MarkAllNotificationsRead(ctx, p.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"updated": n})
	}
}

// sendNotificationHandler lets an admin push a notification to any user.
// Delivery happens through the realtime layer, so the response is 202.
func sendNotificationHandler(sim *realtime.Simulator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/notifications")
		defer span.End()

		var in domain.NotificationInput
		if !decodeBody(w, r, &in) {
			return
		}

		if err := sim.SendNotification(ctx, in); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusAccepted, domain.SuccessResponse{Message: "notification queued"})
	}
}
