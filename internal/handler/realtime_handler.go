package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/eventbus"
	"github.com/boddenberg/sparkhub-bfa/internal/realtime"
)

// DefaultKeepAlive is how often an idle event stream gets a comment line.
const DefaultKeepAlive = 15 * time.Second

// ============================================================
// Realtime connection
// ============================================================

func realtimeStatusHandler(sim *realtime.Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/realtime/status")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, sim.Status(p.UserID))
	}
}

func realtimeConnectHandler(sim *realtime.Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/realtime/connect")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusAccepted, sim.Connect(p))
	}
}

func realtimeDisconnectHandler(sim *realtime.Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/realtime/disconnect")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, sim.Disconnect(p.UserID))
	}
}

func realtimeMessageHandler(sim *realtime.Simulator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/realtime/messages")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req domain.RealtimeMessageRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := sim.DirectMessage(ctx, p, req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusAccepted, domain.SuccessResponse{Message: "message queued"})
	}
}

// ============================================================
// Event stream & sync bridge
// ============================================================

// eventStreamHandler exposes a bus subscription as server-sent events.
// Opening the stream connects the caller's live channel; closing their
// last open stream disconnects.
func eventStreamHandler(bus *eventbus.Bus, sim *realtime.Simulator, keepAlive time.Duration, logger *zap.Logger) http.HandlerFunc {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		sub := bus.Subscribe(p.UserID, p.Role)
		defer bus.Unsubscribe(sub)
		sim.AttachStream(p)
		defer sim.DetachStream(p.UserID)

		logger.Info("event stream opened", zap.String("user_id", p.UserID), zap.String("role", string(p.Role)))
		defer logger.Info("event stream closed", zap.String("user_id", p.UserID))

		if err := writeEvent(w, "connection.established", map[string]any{
			"userId":    p.UserID,
			"role":      p.Role,
			"timestamp": time.Now().UTC(),
		}); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, open := <-sub.C:
				if !open {
					return
				}
				if err := writeEvent(w, string(ev.Type), ev); err != nil {
					logger.Debug("event stream write failed", zap.String("user_id", p.UserID), zap.Error(err))
					return
				}
				flusher.Flush()
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
	return err
}

func syncStatusHandler(bus *eventbus.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, bus.Status())
	}
}

// syncForceHandler broadcasts FORCE_UPDATE so every dashboard reloads.
func syncForceHandler(bus *eventbus.Bus, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/sync/force")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		bus.Publish(domain.Event{
			Type:      domain.EventForceUpdate,
			Data:      map[string]string{"requestedBy": p.UserID},
			Broadcast: true,
		})
		logger.Info("force update broadcast", zap.String("by", p.UserID))
		writeJSON(w, http.StatusAccepted, bus.Status())
	}
}

// tokenFromQuery lets EventSource clients, which cannot set headers, pass
// the access token as ?access_token=.
func tokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if tok := r.URL.Query().Get("access_token"); tok != "" {
				r.Header.Set("Authorization", "Bearer "+tok)
			}
		}
		next.ServeHTTP(w, r)
	})
}
