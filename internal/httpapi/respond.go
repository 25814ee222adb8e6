package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/logging"
	"github.com/Spok95/college-portal/internal/metrics"
	"github.com/Spok95/college-portal/internal/observability"
	"github.com/Spok95/college-portal/internal/resolve"
)

type errorBody struct {
	Error  string              `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr: класс ошибки в HTTP-статус. Сбои хранилища логируются и уходят в Sentry.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	body := errorBody{Error: err.Error()}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body.Fields = ae.Fields
	}
	if status >= http.StatusInternalServerError {
		metrics.HandlerErrors.Inc()
		observability.CaptureRemote(err)
		logging.FromContext(r.Context(), s.log).Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, body)
}

// setPartial помечает частичный результат списком несработавших связей.
func setPartial(w http.ResponseWriter, warn resolve.Warnings) {
	if len(warn) == 0 {
		return
	}
	rels := make([]string, 0, len(warn))
	for k := range warn {
		rels = append(rels, string(k))
	}
	w.Header().Set("X-Partial-Relations", joinSorted(rels))
}

func withWarnings(w http.ResponseWriter, v any, warn resolve.Warnings) {
	setPartial(w, warn)
	writeJSON(w, http.StatusOK, v)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("httpapi.decode", "malformed body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chiParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation("httpapi.pathID", "bad %s", name)
	}
	return id, nil
}
