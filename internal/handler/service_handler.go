package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

// ============================================================
// Service catalog
// ============================================================

// listServicesHandler accepts ?status=active|pending|all and ?ownerId=.
func listServicesHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/services")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		status := domain.ServiceStatus(r.URL.Query().Get("status"))
		ownerID := r.URL.Query().Get("ownerId")

		list, err := market.ListServices(ctx, p, status, ownerID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.Service]{Data: list, Total: len(list)})
	}
}

func addServiceHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/services")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		var in domain.ServiceInput
		if !decodeBody(w, r, &in) {
			return
		}

		svc, err := market.AddService(ctx, p, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, svc)
	}
}

func approveServiceHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/services/{id}/approve")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("service.id", id))

		svc, err := market.ApproveService(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, svc)
	}
}

func rejectServiceHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/services/{id}/reject")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("service.id", id))

		svc, err := market.RejectService(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, svc)
	}
}
