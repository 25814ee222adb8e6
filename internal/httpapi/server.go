// Package httpapi отдаёт HTTP-интерфейс портала. Идентичность пользователя приходит
// от прокси в заголовке X-Profile-ID.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/college-portal/internal/metrics"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/portal"
)

const ProfileHeader = "X-Profile-ID"

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Profiles interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type Server struct {
	svc      *portal.Service
	db       Pinger
	profiles Profiles
	log      *zap.Logger
}

func New(svc *portal.Service, db Pinger, profiles Profiles, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, db: db, profiles: profiles, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, s.countRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/reports/{name}", s.handleReport)

		r.Get("/me", s.handleMe)
		r.Get("/me/attendance", s.handleMyAttendance)
		r.Get("/me/results", s.handleMyResults)
		r.Get("/me/fees", s.handleMyFees)
		r.Get("/me/teaching", list(s, s.svc.Teaching))

		r.Post("/students", create(s, s.svc.CreateStudent))
		r.Get("/students/{id}", s.handleStudent)
		r.Patch("/students/{id}", update(s, studentPatch.toDB, s.svc.UpdateStudent))
		r.Delete("/students/{id}", remove(s, s.svc.DeleteStudent))
		r.Put("/profiles/{id}/telegram", s.handleLinkTelegram)

		r.Get("/faculty", list(s, s.svc.FacultyDirectory))
		r.Post("/faculty", create(s, s.svc.CreateFaculty))
		r.Patch("/faculty/{id}", update(s, facultyPatch.toDB, s.svc.UpdateFaculty))
		r.Delete("/faculty/{id}", remove(s, s.svc.DeleteFaculty))

		r.Get("/batches", list(s, s.svc.Batches))
		r.Post("/batches", create(s, s.svc.CreateBatch))
		r.Delete("/batches/{id}", remove(s, s.svc.DeleteBatch))
		r.Get("/courses", list(s, s.svc.Courses))
		r.Post("/courses", create(s, s.svc.CreateCourse))
		r.Delete("/courses/{id}", remove(s, s.svc.DeleteCourse))

		r.Get("/classes", s.handleClasses)
		r.Post("/classes", create(s, s.svc.CreateClass))
		r.Get("/classes/{id}", s.handleClass)
		r.Delete("/classes/{id}", remove(s, s.svc.DeleteClass))
		r.Post("/classes/{id}/subjects", s.handleCreateSubject)
		r.Post("/assignments", create(s, s.svc.AssignFaculty))
		r.Delete("/assignments/{id}", remove(s, s.svc.UnassignFaculty))

		r.Post("/attendance", s.handleMarkAttendance)
		r.Post("/results", create(s, s.svc.UploadResults))
		r.Patch("/results/{id}", update(s, same[marksPatch], s.updateMarks))
		r.Delete("/results/{id}", remove(s, s.svc.DeleteResult))

		r.Post("/invoices", s.handleCreateInvoice)
		r.Patch("/invoices/{id}", update(s, invoicePatch.toDB, s.svc.UpdateInvoice))
		r.Post("/invoices/{id}/paid", s.handleInvoicePaid)
		r.Delete("/invoices/{id}", remove(s, s.svc.DeleteInvoice))

		r.Get("/circulars", s.handleCirculars)
		r.Post("/circulars", create(s, s.svc.PublishCircular))
		r.Patch("/circulars/{id}", update(s, same[portal.CircularUpdate], s.svc.UpdateCircular))
	})
	return r
}

type HTTPServer struct {
	srv  *http.Server
	done chan struct{}
}

// Start поднимает сервер и гасит его при отмене ctx.
func Start(ctx context.Context, addr string, h http.Handler, log *zap.Logger) *HTTPServer {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	hs := &HTTPServer{srv: srv, done: make(chan struct{})}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
		}
	}()

	go func() {
		defer close(hs.done)
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			log.Warn("http shutdown", zap.Error(err))
		}
	}()

	return hs
}

// Wait блокирует до завершения Shutdown после отмены контекста Start.
func (s *HTTPServer) Wait() {
	<-s.done
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	metrics.ObserveDBPing(time.Since(t0))
	_, _ = w.Write([]byte("ok"))
}
