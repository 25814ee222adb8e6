package resolve

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/models"
)

// Person: студент записи и его профиль; любой из них может отсутствовать.
type Person struct {
	Student *models.Student `json:"student"`
	Profile *models.Profile `json:"profile"`
}

func (p Person) Code() string {
	if p.Student == nil {
		return ""
	}
	return p.Student.StudentCode
}

func (p Person) Name() string {
	if p.Profile == nil {
		return ""
	}
	return p.Profile.FullName
}

type AttendanceView struct {
	models.Attendance
	Person
	Class *models.Class `json:"class"`
}

type ResultView struct {
	models.Result
	Person
	Subject *models.Subject `json:"subject"`
	Class   *models.Class   `json:"class"`
}

type FeeView struct {
	models.FeeInvoice
	Person
}

// people: студенты по ключам и затем их профили (две последовательные волны).
func (r *Resolver) people(ctx context.Context, warn Warnings, ids []uuid.UUID, extra func(*stage)) (map[uuid.UUID]*models.Student, map[uuid.UUID]*models.Profile) {
	var (
		students map[uuid.UUID]*models.Student
		profiles map[uuid.UUID]*models.Profile
	)
	st := r.stage(warn)
	st.run(ctx, RelStudent, func(ctx context.Context) error {
		rows, err := r.src.StudentsByIDs(ctx, ids)
		students = index(rows, studentKey)
		return err
	})
	if extra != nil {
		extra(st)
	}
	st.wait()
	if st.failed(RelStudent) {
		return students, nil
	}

	var pids []uuid.UUID
	for _, s := range students {
		if s.ProfileID.Valid {
			pids = append(pids, s.ProfileID.UUID)
		}
	}
	ps := r.stage(warn)
	ps.run(ctx, RelProfile, func(ctx context.Context) error {
		rows, err := r.src.ProfilesByIDs(ctx, dedup(pids))
		profiles = index(rows, profileKey)
		return err
	})
	ps.wait()
	return students, profiles
}

func person(students map[uuid.UUID]*models.Student, profiles map[uuid.UUID]*models.Profile, id uuid.NullUUID) Person {
	s := lookup(students, id)
	if s == nil {
		return Person{}
	}
	return Person{Student: s, Profile: lookup(profiles, s.ProfileID)}
}

func (r *Resolver) Attendance(ctx context.Context, rows []models.Attendance) ([]AttendanceView, Warnings) {
	warn := Warnings{}
	out := make([]AttendanceView, len(rows))
	if len(rows) == 0 {
		return out, warn
	}
	var classes map[uuid.UUID]*models.Class
	students, profiles := r.people(ctx, warn,
		collect(rows, func(a models.Attendance) uuid.NullUUID { return a.StudentID }),
		func(st *stage) {
			st.run(ctx, RelClass, func(ctx context.Context) error {
				cs, err := r.src.ClassesByIDs(ctx, collect(rows, func(a models.Attendance) uuid.NullUUID { return a.ClassID }))
				classes = index(cs, classKey)
				return err
			})
		})
	for i, a := range rows {
		out[i] = AttendanceView{
			Attendance: a,
			Person:     person(students, profiles, a.StudentID),
			Class:      lookup(classes, a.ClassID),
		}
	}
	return out, warn
}

func (r *Resolver) Results(ctx context.Context, rows []models.Result) ([]ResultView, Warnings) {
	warn := Warnings{}
	out := make([]ResultView, len(rows))
	if len(rows) == 0 {
		return out, warn
	}
	var (
		subjects map[uuid.UUID]*models.Subject
		classes  map[uuid.UUID]*models.Class
	)
	students, profiles := r.people(ctx, warn,
		collect(rows, func(res models.Result) uuid.NullUUID { return res.StudentID }),
		func(st *stage) {
			st.run(ctx, RelSubject, func(ctx context.Context) error {
				ss, err := r.src.SubjectsByIDs(ctx, collect(rows, func(res models.Result) uuid.NullUUID { return res.SubjectID }))
				subjects = index(ss, subjectKey)
				return err
			})
			st.run(ctx, RelClass, func(ctx context.Context) error {
				cs, err := r.src.ClassesByIDs(ctx, collect(rows, func(res models.Result) uuid.NullUUID { return res.ClassID }))
				classes = index(cs, classKey)
				return err
			})
		})
	for i, res := range rows {
		out[i] = ResultView{
			Result:  res,
			Person:  person(students, profiles, res.StudentID),
			Subject: lookup(subjects, res.SubjectID),
			Class:   lookup(classes, res.ClassID),
		}
	}
	return out, warn
}

func (r *Resolver) Invoices(ctx context.Context, rows []models.FeeInvoice) ([]FeeView, Warnings) {
	warn := Warnings{}
	out := make([]FeeView, len(rows))
	if len(rows) == 0 {
		return out, warn
	}
	students, profiles := r.people(ctx, warn,
		collect(rows, func(f models.FeeInvoice) uuid.NullUUID { return f.StudentID }), nil)
	for i, f := range rows {
		out[i] = FeeView{FeeInvoice: f, Person: person(students, profiles, f.StudentID)}
	}
	return out, warn
}

// NoFacultyAssigned: подпись для пустого состава преподавателей.
const NoFacultyAssigned = "No faculty assigned"

type RosterEntry struct {
	AssignmentID uuid.UUID             `json:"assignment_id"`
	Faculty      *models.FacultyMember `json:"faculty"`
	Name         string                `json:"name"`
	Subject      string                `json:"subject"`
}

// ClassView: класс с батчем и составом преподавателей. Roster никогда не nil.
type ClassView struct {
	models.Class
	Batch  *models.Batch `json:"batch"`
	Roster []RosterEntry `json:"roster"`
}

// FacultySummary: "Имя (Предмет), ..." или NoFacultyAssigned.
func (v ClassView) FacultySummary() string {
	if len(v.Roster) == 0 {
		return NoFacultyAssigned
	}
	parts := make([]string, 0, len(v.Roster))
	for _, e := range v.Roster {
		name := e.Name
		if name == "" {
			name = "-"
		}
		parts = append(parts, name+" ("+e.Subject+")")
	}
	return strings.Join(parts, ", ")
}

func (r *Resolver) Classes(ctx context.Context, rows []models.Class) ([]ClassView, Warnings) {
	warn := Warnings{}
	out := make([]ClassView, len(rows))
	for i := range rows {
		out[i] = ClassView{Class: rows[i], Roster: []RosterEntry{}}
	}
	if len(rows) == 0 {
		return out, warn
	}

	var (
		batches     map[uuid.UUID]*models.Batch
		assignments map[uuid.UUID][]models.FacultyAssignment
		faculty     map[uuid.UUID]*models.FacultyMember
		profiles    map[uuid.UUID]*models.Profile
	)
	classIDs := make([]uuid.UUID, 0, len(rows))
	for _, c := range rows {
		classIDs = append(classIDs, c.ID)
	}

	st := r.stage(warn)
	st.run(ctx, RelBatch, func(ctx context.Context) error {
		bs, err := r.src.BatchesByIDs(ctx, collect(rows, func(c models.Class) uuid.NullUUID { return c.BatchID }))
		batches = index(bs, batchKey)
		return err
	})
	st.run(ctx, RelFaculty, func(ctx context.Context) error {
		as, err := r.src.AssignmentsByClassIDs(ctx, classIDs)
		assignments = group(as, func(a models.FacultyAssignment) uuid.NullUUID { return a.ClassID })
		return err
	})
	st.wait()

	if !st.failed(RelFaculty) {
		var all []models.FacultyAssignment
		for _, as := range assignments {
			all = append(all, as...)
		}
		fs := r.stage(warn)
		fs.run(ctx, RelFaculty, func(ctx context.Context) error {
			rows, err := r.src.FacultyByIDs(ctx, collect(all, func(a models.FacultyAssignment) uuid.NullUUID { return a.FacultyID }))
			faculty = index(rows, facultyKey)
			return err
		})
		fs.wait()

		if !fs.failed(RelFaculty) {
			ps := r.stage(warn)
			ps.run(ctx, RelProfile, func(ctx context.Context) error {
				var pids []uuid.UUID
				for _, f := range faculty {
					if f.ProfileID.Valid {
						pids = append(pids, f.ProfileID.UUID)
					}
				}
				rows, err := r.src.ProfilesByIDs(ctx, dedup(pids))
				profiles = index(rows, profileKey)
				return err
			})
			ps.wait()
		}
	}

	for i := range out {
		v := &out[i]
		v.Batch = lookup(batches, v.BatchID)
		for _, a := range assignments[v.ID] {
			e := RosterEntry{AssignmentID: a.ID, Subject: a.Subject, Faculty: lookup(faculty, a.FacultyID)}
			if e.Faculty != nil {
				if p := lookup(profiles, e.Faculty.ProfileID); p != nil {
					e.Name = p.FullName
				}
			}
			v.Roster = append(v.Roster, e)
		}
	}
	return out, warn
}
