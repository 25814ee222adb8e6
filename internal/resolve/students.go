package resolve

import (
	"context"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/models"
)

// StudentView: студент с присоединёнными связями. Незапрошенные списки остаются nil,
// запрошенные: не nil даже если пусты.
type StudentView struct {
	models.Student
	Profile    *models.Profile     `json:"profile"`
	Class      *models.Class       `json:"class"`
	Batch      *models.Batch       `json:"batch"`
	ClassBatch *models.Batch       `json:"class_batch"`
	Fees       []models.FeeInvoice `json:"fees,omitempty"`
	Attendance []models.Attendance `json:"attendance,omitempty"`
	Results    []models.Result     `json:"results,omitempty"`
}

// Name: ФИО профиля или "" для неслинкованного студента.
func (v StudentView) Name() string {
	if v.Profile == nil {
		return ""
	}
	return v.Profile.FullName
}

func (r *Resolver) Students(ctx context.Context, roots []models.Student, rels ...Relation) ([]StudentView, Warnings) {
	warn := Warnings{}
	out := make([]StudentView, len(roots))
	for i := range roots {
		out[i].Student = roots[i]
	}
	if len(roots) == 0 || len(rels) == 0 {
		return out, warn
	}

	studentIDs := make([]uuid.UUID, 0, len(roots))
	for _, s := range roots {
		studentIDs = append(studentIDs, s.ID)
	}

	var (
		profiles map[uuid.UUID]*models.Profile
		classes  map[uuid.UUID]*models.Class
		batches  map[uuid.UUID]*models.Batch
		fees     map[uuid.UUID][]models.FeeInvoice
		att      map[uuid.UUID][]models.Attendance
		results  map[uuid.UUID][]models.Result
	)

	st := r.stage(warn)
	if has(rels, RelProfile) {
		st.run(ctx, RelProfile, func(ctx context.Context) error {
			rows, err := r.src.ProfilesByIDs(ctx, collect(roots, func(s models.Student) uuid.NullUUID { return s.ProfileID }))
			profiles = index(rows, profileKey)
			return err
		})
	}
	if has(rels, RelClass, RelClassBatch) {
		st.run(ctx, RelClass, func(ctx context.Context) error {
			rows, err := r.src.ClassesByIDs(ctx, collect(roots, func(s models.Student) uuid.NullUUID { return s.ClassID }))
			classes = index(rows, classKey)
			return err
		})
	}
	if has(rels, RelFees) {
		st.run(ctx, RelFees, func(ctx context.Context) error {
			rows, err := r.src.InvoicesByStudentIDs(ctx, studentIDs)
			fees = group(rows, func(f models.FeeInvoice) uuid.NullUUID { return f.StudentID })
			return err
		})
	}
	if has(rels, RelAttendance) {
		st.run(ctx, RelAttendance, func(ctx context.Context) error {
			rows, err := r.src.AttendanceByStudentIDs(ctx, studentIDs)
			att = group(rows, func(a models.Attendance) uuid.NullUUID { return a.StudentID })
			return err
		})
	}
	if has(rels, RelResults) {
		st.run(ctx, RelResults, func(ctx context.Context) error {
			rows, err := r.src.ResultsByStudentIDs(ctx, studentIDs)
			results = group(rows, func(res models.Result) uuid.NullUUID { return res.StudentID })
			return err
		})
	}
	st.wait()

	// Батчи студентов и батчи классов: одним запросом.
	wantBatch := has(rels, RelBatch)
	wantClassBatch := has(rels, RelClassBatch)
	if wantClassBatch && st.failed(RelClass) {
		st.fail(RelClassBatch, warn[RelClass])
		wantClassBatch = false
	}
	if wantBatch || wantClassBatch {
		var ids []uuid.UUID
		if wantBatch {
			ids = collect(roots, func(s models.Student) uuid.NullUUID { return s.BatchID })
		}
		if wantClassBatch {
			for _, c := range classes {
				if c.BatchID.Valid {
					ids = append(ids, c.BatchID.UUID)
				}
			}
		}
		rel := RelBatch
		if !wantBatch {
			rel = RelClassBatch
		}
		bs := r.stage(warn)
		bs.run(ctx, rel, func(ctx context.Context) error {
			rows, err := r.src.BatchesByIDs(ctx, dedup(ids))
			batches = index(rows, batchKey)
			return err
		})
		bs.wait()
		if err, ok := warn[RelBatch]; ok && wantClassBatch {
			bs.fail(RelClassBatch, err)
		}
	}

	for i := range out {
		v := &out[i]
		if has(rels, RelProfile) {
			v.Profile = lookup(profiles, v.ProfileID)
		}
		if has(rels, RelClass) {
			v.Class = lookup(classes, v.ClassID)
		}
		if wantBatch {
			v.Batch = lookup(batches, v.BatchID)
		}
		if wantClassBatch {
			if c := lookup(classes, v.ClassID); c != nil {
				v.ClassBatch = lookup(batches, c.BatchID)
			}
		}
		if has(rels, RelFees) {
			v.Fees = nonNil(fees[v.ID])
		}
		if has(rels, RelAttendance) {
			v.Attendance = nonNil(att[v.ID])
		}
		if has(rels, RelResults) {
			v.Results = nonNil(results[v.ID])
		}
	}
	return out, warn
}

func dedup(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
