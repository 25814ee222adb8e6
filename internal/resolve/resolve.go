// Package resolve присоединяет к корневым записям связанные сущности.
//
// Связи собираются пакетно: сначала все внешние ключи выборки, затем по одному
// запросу на тип связанной сущности, затем склейка в памяти. Сбой одной связи
// не прерывает остальные и возвращается как предупреждение.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/metrics"
	"github.com/Spok95/college-portal/internal/models"
)

// Source: пакетные выборки хранилища. Реализуется *db.Store.
type Source interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	ProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error)
	StudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Student, error)
	ClassesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Class, error)
	BatchesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Batch, error)
	SubjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Subject, error)
	FacultyByIDs(ctx context.Context, ids []uuid.UUID) ([]models.FacultyMember, error)
	AssignmentsByClassIDs(ctx context.Context, classIDs []uuid.UUID) ([]models.FacultyAssignment, error)
	InvoicesByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.FeeInvoice, error)
	AttendanceByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.Attendance, error)
	ResultsByStudentIDs(ctx context.Context, ids []uuid.UUID) ([]models.Result, error)
}

type Relation string

const (
	RelProfile    Relation = "profile"
	RelClass      Relation = "class"
	RelBatch      Relation = "batch"
	RelClassBatch Relation = "class.batch"
	RelFees       Relation = "fees"
	RelAttendance Relation = "attendance"
	RelResults    Relation = "results"
	RelStudent    Relation = "student"
	RelSubject    Relation = "subject"
	RelFaculty    Relation = "faculty"
)

// AllStudentRelations: полный вид студента.
var AllStudentRelations = []Relation{
	RelProfile, RelClass, RelBatch, RelClassBatch, RelFees, RelAttendance, RelResults,
}

// Warnings: сбои отдельных связей. Пустая карта значит, что всё разрешилось.
type Warnings map[Relation]error

func (w Warnings) Err() error {
	if len(w) == 0 {
		return nil
	}
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	errs := make([]error, 0, len(keys))
	for _, k := range keys {
		errs = append(errs, fmt.Errorf("%s: %w", k, w[Relation(k)]))
	}
	return errors.Join(errs...)
}

func (w Warnings) merge(other Warnings) {
	for k, v := range other {
		w[k] = v
	}
}

type Resolver struct {
	src   Source
	log   *zap.Logger
	limit int
}

func New(src Source, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{src: src, log: log, limit: 4}
}

// stage: одна волна независимых выборок.
type stage struct {
	r    *Resolver
	g    errgroup.Group
	mu   sync.Mutex
	warn Warnings
}

func (r *Resolver) stage(warn Warnings) *stage {
	s := &stage{r: r, warn: warn}
	s.g.SetLimit(r.limit)
	return s
}

func (s *stage) run(ctx context.Context, rel Relation, fn func(context.Context) error) {
	s.g.Go(func() error {
		if err := fn(ctx); err != nil {
			s.fail(rel, err)
		}
		return nil
	})
}

func (s *stage) fail(rel Relation, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.warn[rel]; dup {
		return
	}
	s.warn[rel] = err
	metrics.RelationFailures.WithLabelValues(string(rel)).Inc()
	s.r.log.Warn("relation lookup failed", zap.String("relation", string(rel)), zap.Error(err))
}

func (s *stage) wait() { _ = s.g.Wait() }

func (s *stage) failed(rel Relation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.warn[rel]
	return ok
}

// collect: уникальные заданные ключи в порядке появления.
func collect[T any](rows []T, fk func(T) uuid.NullUUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	out := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		k := fk(row)
		if !k.Valid {
			continue
		}
		if _, ok := seen[k.UUID]; ok {
			continue
		}
		seen[k.UUID] = struct{}{}
		out = append(out, k.UUID)
	}
	return out
}

func index[T any](rows []T, key func(T) uuid.UUID) map[uuid.UUID]*T {
	out := make(map[uuid.UUID]*T, len(rows))
	for i := range rows {
		out[key(rows[i])] = &rows[i]
	}
	return out
}

func group[T any](rows []T, key func(T) uuid.NullUUID) map[uuid.UUID][]T {
	out := make(map[uuid.UUID][]T)
	for _, row := range rows {
		k := key(row)
		if !k.Valid {
			continue
		}
		out[k.UUID] = append(out[k.UUID], row)
	}
	return out
}

// lookup: nil для незаданного ключа или отсутствующей строки.
func lookup[T any](m map[uuid.UUID]*T, k uuid.NullUUID) *T {
	if !k.Valid || m == nil {
		return nil
	}
	return m[k.UUID]
}

func has(rels []Relation, want ...Relation) bool {
	for _, r := range rels {
		for _, w := range want {
			if r == w {
				return true
			}
		}
	}
	return false
}

var (
	profileKey = func(p models.Profile) uuid.UUID { return p.ID }
	studentKey = func(s models.Student) uuid.UUID { return s.ID }
	classKey   = func(c models.Class) uuid.UUID { return c.ID }
	batchKey   = func(b models.Batch) uuid.UUID { return b.ID }
	subjectKey = func(s models.Subject) uuid.UUID { return s.ID }
	facultyKey = func(f models.FacultyMember) uuid.UUID { return f.ID }
)

// Student: корневая выборка обязательна, её сбой или отсутствие строки возвращаются ошибкой.
func (r *Resolver) Student(ctx context.Context, id uuid.UUID, rels ...Relation) (*StudentView, Warnings, error) {
	st, err := r.src.GetStudent(ctx, id)
	if err != nil {
		return nil, nil, apperr.Remote("resolve.Student", err)
	}
	if st == nil {
		return nil, nil, apperr.NotFound("resolve.Student", "student %s not found", id)
	}
	views, warn := r.Students(ctx, []models.Student{*st}, rels...)
	return &views[0], warn, nil
}
