package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/ctxutil"
	"github.com/Spok95/college-portal/internal/metrics"
	"github.com/Spok95/college-portal/internal/models"
)

type sessionKey struct{}

func sessionFrom(ctx context.Context) models.Session {
	s, _ := ctx.Value(sessionKey{}).(models.Session)
	return s
}

// sessionMiddleware: профиль по X-Profile-ID; роль берётся из профиля, а не из запроса.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(ProfileHeader)
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing " + ProfileHeader})
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid " + ProfileHeader})
			return
		}
		p, err := s.profiles.GetProfile(r.Context(), id)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		if p == nil || !p.Role.Valid() {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unknown profile"})
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, models.Session{ProfileID: p.ID, Role: p.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := ctxutil.WithOp(r.Context(), r.Method+" "+r.URL.Path)
		next.ServeHTTP(ww, r.WithContext(ctx))

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

func statusOf(err error) int {
	k, ok := apperr.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}
