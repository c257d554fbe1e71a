package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/realtime"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

// IdempotencyHeader carries the client key that makes job creation safe to
// retry.
const IdempotencyHeader = "Idempotency-Key"

// ============================================================
// Jobs
// ============================================================

func createJobHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/jobs")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		var in domain.JobInput
		if !decodeBody(w, r, &in) {
			return
		}

		key := r.Header.Get(IdempotencyHeader)
		j, replayed, err := market.CreateJob(ctx, p, in, key)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("job.id", j.ID), attribute.Bool("job.replayed", replayed))

		if replayed {
			w.Header().Set("Idempotent-Replayed", "true")
			writeJSON(w, http.StatusOK, j)
			return
		}
		writeJSON(w, http.StatusCreated, j)
	}
}

func quoteJobHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/jobs/quote")
		defer span.End()

		var in domain.JobInput
		if !decodeBody(w, r, &in) {
			return
		}

		q, err := market.QuoteJob(ctx, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// listJobsHandler returns the caller's jobs, optionally ?status=.
func listJobsHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/jobs")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		status := domain.JobStatus(r.URL.Query().Get("status"))
		if status != "" && !status.Valid() {
			writeError(w, http.StatusBadRequest, "unknown job status: "+string(status))
			return
		}

		list, err := market.ListJobs(ctx, p, status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.Job]{Data: list, Total: len(list)})
	}
}

func getJobHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/jobs/{id}")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("job.id", id))

		j, err := market.GetJob(ctx, p, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, j)
	}
}

// jobTransitionHandler serves the fixed-target shortcuts accept, start and
// cancel.
func jobTransitionHandler(sim *realtime.Simulator, to domain.JobStatus, logger *zap.Logger) http.HandlerFunc {
	spanName := "POST /v1/jobs/{id}/" + transitionVerb(to)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), spanName)
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("job.id", id))

		j, err := sim.UpdateJobStatus(ctx, p, id, to)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, j)
	}
}

func transitionVerb(to domain.JobStatus) string {
	switch to {
	case domain.JobAccepted:
		return "accept"
	case domain.JobInProgress:
		return "start"
	case domain.JobCancelled:
		return "cancel"
	}
	return string(to)
}

func jobStatusHandler(sim *realtime.Simulator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/jobs/{id}/status")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("job.id", id))

		var req domain.JobStatusRequest
		if !decodeBody(w, r, &req) {
			return
		}

		j, err := sim.UpdateJobStatus(ctx, p, id, req.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, j)
	}
}

// completeJobHandler accepts an optional body with images, rating and
// review.
func completeJobHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/jobs/{id}/complete")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("job.id", id))

		var in domain.CompletionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		j, err := market.CompleteJob(ctx, p, id, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, j)
	}
}

func payJobHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/jobs/{id}/pay")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("job.id", id))

		var req domain.PayRequest
		if !decodeBody(w, r, &req) {
			return
		}

		receipt, err := market.PayForJob(ctx, p, id, req.Method)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, receipt)
	}
}
