package resolve_test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/models"
)

var errBackend = errors.New("backend unavailable")

// fakeSource: хранилище в памяти; fail заставляет выбранный метод вернуть ошибку.
type fakeSource struct {
	mu          sync.Mutex
	calls       map[string]int
	fail        map[string]bool
	profiles    []models.Profile
	students    []models.Student
	classes     []models.Class
	batches     []models.Batch
	subjects    []models.Subject
	faculty     []models.FacultyMember
	assignments []models.FacultyAssignment
	invoices    []models.FeeInvoice
	attendance  []models.Attendance
	results     []models.Result
}

func newFake() *fakeSource {
	return &fakeSource{calls: map[string]int{}, fail: map[string]bool{}}
}

func (f *fakeSource) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if f.fail[name] {
		return errBackend
	}
	return nil
}

func (f *fakeSource) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func pick[T any](rows []T, ids []uuid.UUID, key func(T) uuid.UUID) []T {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []T{}
	for _, r := range rows {
		if want[key(r)] {
			out = append(out, r)
		}
	}
	return out
}

func byRef[T any](rows []T, ids []uuid.UUID, ref func(T) uuid.NullUUID) []T {
	return pick(rows, ids, func(r T) uuid.UUID {
		k := ref(r)
		if !k.Valid {
			return uuid.Nil
		}
		return k.UUID
	})
}

func (f *fakeSource) GetStudent(_ context.Context, id uuid.UUID) (*models.Student, error) {
	if err := f.hit("GetStudent"); err != nil {
		return nil, err
	}
	for i := range f.students {
		if f.students[i].ID == id {
			s := f.students[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) ProfilesByIDs(_ context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	if err := f.hit("ProfilesByIDs"); err != nil {
		return nil, err
	}
	return pick(f.profiles, ids, func(p models.Profile) uuid.UUID { return p.ID }), nil
}

func (f *fakeSource) StudentsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Student, error) {
	if err := f.hit("StudentsByIDs"); err != nil {
		return nil, err
	}
	return pick(f.students, ids, func(s models.Student) uuid.UUID { return s.ID }), nil
}

func (f *fakeSource) ClassesByIDs(_ context.Context, ids []uuid.UUID) ([]models.Class, error) {
	if err := f.hit("ClassesByIDs"); err != nil {
		return nil, err
	}
	return pick(f.classes, ids, func(c models.Class) uuid.UUID { return c.ID }), nil
}

func (f *fakeSource) BatchesByIDs(_ context.Context, ids []uuid.UUID) ([]models.Batch, error) {
	if err := f.hit("BatchesByIDs"); err != nil {
		return nil, err
	}
	return pick(f.batches, ids, func(b models.Batch) uuid.UUID { return b.ID }), nil
}

func (f *fakeSource) SubjectsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Subject, error) {
	if err := f.hit("SubjectsByIDs"); err != nil {
		return nil, err
	}
	return pick(f.subjects, ids, func(s models.Subject) uuid.UUID { return s.ID }), nil
}

func (f *fakeSource) FacultyByIDs(_ context.Context, ids []uuid.UUID) ([]models.FacultyMember, error) {
	if err := f.hit("FacultyByIDs"); err != nil {
		return nil, err
	}
	return pick(f.faculty, ids, func(m models.FacultyMember) uuid.UUID { return m.ID }), nil
}

func (f *fakeSource) AssignmentsByClassIDs(_ context.Context, ids []uuid.UUID) ([]models.FacultyAssignment, error) {
	if err := f.hit("AssignmentsByClassIDs"); err != nil {
		return nil, err
	}
	return byRef(f.assignments, ids, func(a models.FacultyAssignment) uuid.NullUUID { return a.ClassID }), nil
}

func (f *fakeSource) InvoicesByStudentIDs(_ context.Context, ids []uuid.UUID) ([]models.FeeInvoice, error) {
	if err := f.hit("InvoicesByStudentIDs"); err != nil {
		return nil, err
	}
	return byRef(f.invoices, ids, func(i models.FeeInvoice) uuid.NullUUID { return i.StudentID }), nil
}

func (f *fakeSource) AttendanceByStudentIDs(_ context.Context, ids []uuid.UUID) ([]models.Attendance, error) {
	if err := f.hit("AttendanceByStudentIDs"); err != nil {
		return nil, err
	}
	return byRef(f.attendance, ids, func(a models.Attendance) uuid.NullUUID { return a.StudentID }), nil
}

func (f *fakeSource) ResultsByStudentIDs(_ context.Context, ids []uuid.UUID) ([]models.Result, error) {
	if err := f.hit("ResultsByStudentIDs"); err != nil {
		return nil, err
	}
	return byRef(f.results, ids, func(r models.Result) uuid.NullUUID { return r.StudentID }), nil
}

func ref(id uuid.UUID) uuid.NullUUID { return uuid.NullUUID{UUID: id, Valid: true} }
