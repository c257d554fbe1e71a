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
// Electricians
// ============================================================

// listElectriciansHandler lists approved profiles. ?pending=true lists the
// application queue and is reserved for admins.
func listElectriciansHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/electricians")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		var (
			list []domain.ElectricianProfile
			err  error
		)
		if r.URL.Query().Get("pending") == "true" {
			if p.Role != domain.RoleAdmin {
				handleServiceError(w, &domain.ErrForbidden{Action: "list pending applications"}, logger)
				return
			}
			list, err = market.ListApplications(ctx)
		} else {
			list, err = market.ListElectricians(ctx)
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.ElectricianProfile]{Data: list, Total: len(list)})
	}
}

func nearbyElectriciansHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/electricians/nearby")
		defer span.End()

		q := domain.NearbyQuery{
			ServiceID: r.URL.Query().Get("serviceId"),
			Category:  r.URL.Query().Get("category"),
		}
		lat, okLat := queryFloat(r, "lat")
		lng, okLng := queryFloat(r, "lng")
		if !okLat || !okLng {
			writeError(w, http.StatusBadRequest, "lat and lng are required numbers")
			return
		}
		q.Lat, q.Lng = lat, lng

		list, err := market.FindNearby(ctx, q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.NearbyElectrician]{Data: list, Total: len(list)})
	}
}

func getElectricianHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/electricians/{id}")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("electrician.id", id))

		e, err := market.GetElectrician(ctx, p, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func approveElectricianHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/electricians/{id}/approve")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("electrician.id", id))

		e, err := market.ApproveElectrician(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func rejectElectricianHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/electricians/{id}/reject")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("electrician.id", id))

		e, err := market.RejectElectrician(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func updateElectricianHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/electricians/{id}")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")

		var patch domain.ElectricianPatch
		if !decodeBody(w, r, &patch) {
			return
		}

		e, err := market.UpdateElectrician(ctx, p, id, patch)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func availabilityHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/electricians/{id}/availability")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")

		var req domain.AvailabilityRequest
		if !decodeBody(w, r, &req) {
			return
		}

		e, err := market.SetAvailability(ctx, p, id, req.Availability)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}
