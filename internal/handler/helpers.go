package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// ============================================================
// Shared helper functions
// ============================================================

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeBody reads a JSON body into dst and answers 400 when it cannot.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// principal returns the authenticated caller or answers 401.
func principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
	}
	return p, ok
}

func queryFloat(r *http.Request, key string) (float64, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// ============================================================
// Error mapping
// ============================================================

// handleServiceError answers with the status that matches the typed error.
// Dependency failures hide their cause from the client.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	status, msg, level, fields := classify(err)
	if ce := logger.Check(level, http.StatusText(status)); ce != nil {
		ce.Write(append(fields, zap.Int("status", status), zap.Error(err))...)
	}
	writeError(w, status, msg)
}

func classify(err error) (int, string, zapcore.Level, []zap.Field) {
	var (
		notFound     *domain.ErrNotFound
		validation   *domain.ErrValidation
		unauthorized *domain.ErrUnauthorized
		forbidden    *domain.ErrForbidden
		transition   *domain.ErrInvalidTransition
		conflict     *domain.ErrConflict
		duplicate    *domain.ErrDuplicate
		funds        *domain.ErrInsufficientFunds
		circuitOpen  *domain.ErrCircuitOpen
		timeout      *domain.ErrTimeout
		external     *domain.ErrExternalService
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, err.Error(), zapcore.DebugLevel, nil
	case errors.As(err, &validation):
		return http.StatusBadRequest, err.Error(), zapcore.DebugLevel, []zap.Field{zap.String("field", validation.Field)}
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, err.Error(), zapcore.WarnLevel, nil
	case errors.As(err, &forbidden):
		return http.StatusForbidden, err.Error(), zapcore.WarnLevel, nil
	case errors.As(err, &transition):
		return http.StatusConflict, err.Error(), zapcore.DebugLevel, []zap.Field{
			zap.String("job_id", transition.JobID),
			zap.String("from", string(transition.From)),
			zap.String("to", string(transition.To)),
		}
	case errors.As(err, &conflict), errors.As(err, &duplicate):
		return http.StatusConflict, err.Error(), zapcore.DebugLevel, nil
	case errors.As(err, &funds):
		return http.StatusUnprocessableEntity, err.Error(), zapcore.WarnLevel, []zap.Field{
			zap.Float64("available", funds.Available),
			zap.Float64("required", funds.Required),
		}
	case errors.As(err, &circuitOpen):
		return http.StatusServiceUnavailable, err.Error(), zapcore.ErrorLevel, nil
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout, err.Error(), zapcore.ErrorLevel, nil
	case errors.As(err, &external):
		return http.StatusBadGateway, "upstream service unavailable", zapcore.ErrorLevel, []zap.Field{zap.String("service", external.Service)}
	}
	return http.StatusInternalServerError, "internal server error", zapcore.ErrorLevel, nil
}
