package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

// ============================================================
// Admin
// ============================================================

func adminStatsHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/stats")
		defer span.End()

		st, err := market.AdminStats(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// ============================================================
// Dev Tools Handlers
// ============================================================

func devAddBalanceHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dev/add-balance")
		defer span.End()

		var req domain.DevAddBalanceRequest
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := market.DevAddBalance(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func devGenerateJobsHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dev/generate-jobs")
		defer span.End()

		var req domain.DevGenerateJobsRequest
		if !decodeBody(w, r, &req) {
			return
		}

		resp, err := market.DevGenerateJobs(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
