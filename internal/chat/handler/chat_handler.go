// Package handler: chat_handler.go serves the job conversation:
//
//	GET  /v1/jobs/{id}/messages       → conversation + unread count
//	POST /v1/jobs/{id}/messages       → {"message": "..."}
//	POST /v1/jobs/{id}/messages/read  → marks the caller's lines read
//
// The routes are mounted behind the main auth middleware, which puts the
// caller's domain.Principal into the request context.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/chat/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/chat/service"
	maindomain "github.com/boddenberg/sparkhub-bfa/internal/domain"
)

var tracer = otel.Tracer("chat/handler")

// Routes mounts the conversation endpoints under /jobs/{id}/messages.
func Routes(r chi.Router, chatSvc *service.ChatService, logger *zap.Logger) {
	r.Get("/jobs/{id}/messages", ListHandler(chatSvc, logger))
	r.Post("/jobs/{id}/messages", SendHandler(chatSvc, logger))
	r.Post("/jobs/{id}/messages/read", ReadHandler(chatSvc, logger))
}

// ============================================================
// Handlers
// ============================================================

func ListHandler(chatSvc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/jobs/{id}/messages")
		defer span.End()

		actor, ok := maindomain.PrincipalFromContext(ctx)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		jobID := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("job.id", jobID))

		conv, err := chatSvc.ListMessages(ctx, actor, jobID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

func SendHandler(chatSvc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/jobs/{id}/messages")
		defer span.End()

		actor, ok := maindomain.PrincipalFromContext(ctx)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		jobID := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("job.id", jobID))

		var req domain.SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: expected {\"message\": \"...\"}")
			return
		}

		msg, err := chatSvc.SendMessage(ctx, actor, jobID, req.Message)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

func ReadHandler(chatSvc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/jobs/{id}/messages/read")
		defer span.End()

		actor, ok := maindomain.PrincipalFromContext(ctx)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		res, err := chatSvc.MarkRead(ctx, actor, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleServiceError maps domain errors to HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var (
		notFound   *maindomain.ErrNotFound
		validation *maindomain.ErrValidation
		forbidden  *maindomain.ErrForbidden
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &forbidden):
		writeError(w, http.StatusForbidden, forbidden.Error())
	default:
		logger.Error("unexpected error in chat handler", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
