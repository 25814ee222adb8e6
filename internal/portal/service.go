// Package portal реализует сценарии портала поверх хранилища. Каждая операция получает сессию явно.
package portal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/db"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/report"
	"github.com/Spok95/college-portal/internal/resolve"
	"github.com/Spok95/college-portal/internal/stats"
)

type Options struct {
	RowLimit int
	Report   report.Options
}

type Service struct {
	store *db.Store
	res   *resolve.Resolver
	log   *zap.Logger
	opts  Options
	now   func() time.Time
}

func New(store *db.Store, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RowLimit <= 0 {
		opts.RowLimit = 100
	}
	if opts.Report.Location == nil {
		opts.Report.Location = time.UTC
	}
	return &Service{
		store: store,
		res:   resolve.New(store, log.Named("resolve")),
		log:   log,
		opts:  opts,
		now:   time.Now,
	}
}

func (s *Service) today() time.Time {
	t := s.now().In(s.opts.Report.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// warn пишет частичные сбои разрешения связей в лог; вызывающий получает их в ответе.
func (s *Service) warn(op string, w resolve.Warnings) {
	if len(w) > 0 {
		s.log.Warn("partial result", zap.String("op", op), zap.Error(w.Err()))
	}
}

func (s *Service) Dashboard(ctx context.Context, sess models.Session) (*stats.Dashboard, error) {
	if err := access.Require(sess, access.ViewDashboard); err != nil {
		return nil, err
	}
	return stats.BuildDashboard(ctx, s.store)
}

// studentFor: запись студента текущей сессии.
func (s *Service) studentFor(ctx context.Context, sess models.Session) (*models.Student, error) {
	const op = "portal.studentFor"
	if sess.Role != models.RoleStudent {
		return nil, apperr.Forbidden(op, "not a student session")
	}
	st, err := s.store.GetStudentByProfile(ctx, sess.ProfileID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apperr.NotFound(op, "no student linked to profile %s", sess.ProfileID)
	}
	return st, nil
}

// facultyFor: запись преподавателя текущей сессии.
func (s *Service) facultyFor(ctx context.Context, sess models.Session) (*models.FacultyMember, error) {
	const op = "portal.facultyFor"
	f, err := s.store.GetFacultyByProfile(ctx, sess.ProfileID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperr.NotFound(op, "no faculty linked to profile %s", sess.ProfileID)
	}
	return f, nil
}
