package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
)

func att(statuses ...models.AttendanceStatus) []models.Attendance {
	out := make([]models.Attendance, len(statuses))
	for i, s := range statuses {
		out[i].Status = s
	}
	return out
}

func TestAttendanceRate(t *testing.T) {
	assert.Equal(t, 0, AttendanceRate(nil))
	assert.Equal(t, 67, AttendanceRate(att(models.Present, models.Present, models.Absent)))
	assert.Equal(t, 33, AttendanceRate(att(models.Present, models.Absent, models.Absent)))
	assert.Equal(t, 100, AttendanceRate(att(models.Present)))
	assert.Equal(t, 0, AttendanceRate(att(models.Absent, models.Absent)))
	// 1/8 = 12.5 → 13
	assert.Equal(t, 13, Rate(1, 8))
	// 5/8 = 62.5 → 63
	assert.Equal(t, 63, Rate(5, 8))
}

func TestRate_MatchesRoundedRatio(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for present := 0; present <= total; present++ {
			want := decimal.NewFromInt(int64(100 * present)).Div(decimal.NewFromInt(int64(total))).Round(0).IntPart()
			require.Equal(t, int(want), Rate(present, total), "%d/%d", present, total)
		}
	}
}

func TestSummarizeAttendance(t *testing.T) {
	s := SummarizeAttendance(att(models.Present, models.Present, models.Absent))
	assert.Equal(t, AttendanceSummary{Present: 2, Absent: 1, Total: 3, Percentage: 67}, s)
}

func inv(amount string, status models.PaymentStatus) models.FeeInvoice {
	return models.FeeInvoice{Amount: decimal.RequireFromString(amount), PaymentStatus: status}
}

func TestFees(t *testing.T) {
	got := Fees([]models.FeeInvoice{inv("500", models.PaymentPaid), inv("300", models.PaymentPending)})
	assert.True(t, got.Paid.Equal(decimal.NewFromInt(500)), got.Paid.String())
	assert.True(t, got.Pending.Equal(decimal.NewFromInt(300)), got.Pending.String())

	empty := Fees(nil)
	assert.True(t, empty.Paid.IsZero())
	assert.True(t, empty.Pending.IsZero())
}

func TestFees_EveryInvoiceCountedOnce(t *testing.T) {
	invoices := []models.FeeInvoice{
		inv("0.10", models.PaymentPaid),
		inv("0.20", models.PaymentPending),
		inv("0.30", models.PaymentOverdue),
		inv("12500.55", models.PaymentPaid),
		inv("999.99", models.PaymentOverdue),
	}
	sum := decimal.Zero
	for _, i := range invoices {
		sum = sum.Add(i.Amount)
	}
	got := Fees(invoices)
	assert.True(t, got.Total().Equal(sum), "%s != %s", got.Total(), sum)
	assert.Equal(t, "1000.49", got.Pending.String())
}

func TestGradeFromPercentage_Boundaries(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	cases := map[string]models.Grade{
		"100":    models.GradeAPlus,
		"90":     models.GradeAPlus,
		"89.999": models.GradeA,
		"80":     models.GradeA,
		"70":     models.GradeBPlus,
		"60":     models.GradeB,
		"50":     models.GradeC,
		"45":     models.GradeD,
		"40":     models.GradeD,
		"39.99":  models.GradeF,
		"0":      models.GradeF,
	}
	for marks, want := range cases {
		got, err := GradeFromPercentage(decimal.RequireFromString(marks), hundred)
		require.NoError(t, err, marks)
		assert.Equal(t, want, got, marks)
	}

	// 27/30 = 90% ровно
	got, err := GradeFromPercentage(decimal.NewFromInt(27), decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.Equal(t, models.GradeAPlus, got)
}

func TestGradeFromPercentage_Monotonic(t *testing.T) {
	rank := map[models.Grade]int{}
	for i, g := range models.Grades {
		rank[g] = i
	}
	max := decimal.NewFromInt(200)
	prev := 0
	for m := int64(200); m >= 0; m-- {
		g, err := GradeFromPercentage(decimal.NewFromInt(m), max)
		require.NoError(t, err)
		require.GreaterOrEqual(t, rank[g], prev, "marks %d", m)
		prev = rank[g]
	}
}

func TestGradeFromPercentage_ZeroMax(t *testing.T) {
	for _, m := range []string{"0", "45", "100"} {
		_, err := GradeFromPercentage(decimal.RequireFromString(m), decimal.Zero)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrValidation), m)
	}
}

func TestGradeFromPercentage_OutOfRange(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	for _, m := range []string{"150", "100.01", "-1"} {
		g, err := GradeFromPercentage(decimal.RequireFromString(m), hundred)
		require.Error(t, err, m)
		assert.True(t, errors.Is(err, apperr.ErrValidation), m)
		assert.Empty(t, g, m)
	}
}

func TestGradeDistribution(t *testing.T) {
	got := GradeDistribution([]models.Grade{models.GradeA, models.GradeA, models.GradeF})
	require.Len(t, got, len(models.Grades))
	assert.Equal(t, GradeCount{Grade: models.GradeAPlus, Count: 0}, got[0])
	assert.Equal(t, GradeCount{Grade: models.GradeA, Count: 2}, got[1])
	assert.Equal(t, GradeCount{Grade: models.GradeF, Count: 1}, got[6])
}

type fakeCounter struct {
	students, active int
	failFees         bool
}

func (f fakeCounter) CountStudents(_ context.Context, status *models.StudentStatus) (int, error) {
	if status != nil && *status == models.StudentActive {
		return f.active, nil
	}
	return f.students, nil
}
func (f fakeCounter) CountFaculty(context.Context) (int, error) { return 4, nil }
func (f fakeCounter) CountCourses(context.Context) (int, error) { return 3, nil }
func (f fakeCounter) CountClasses(context.Context) (int, error) { return 2, nil }
func (f fakeCounter) CountBatches(context.Context) (int, error) { return 1, nil }
func (f fakeCounter) AllAttendanceStatuses(context.Context) ([]models.AttendanceStatus, error) {
	return []models.AttendanceStatus{models.Present, models.Present, models.Absent}, nil
}
func (f fakeCounter) ListInvoices(context.Context) ([]models.FeeInvoice, error) {
	if f.failFees {
		return nil, apperr.Remote("fake", errors.New("boom"))
	}
	return []models.FeeInvoice{inv("500", models.PaymentPaid), inv("300", models.PaymentPending)}, nil
}
func (f fakeCounter) AllGrades(context.Context) ([]models.Grade, error) {
	return []models.Grade{models.GradeB}, nil
}

func TestBuildDashboard(t *testing.T) {
	d, err := BuildDashboard(context.Background(), fakeCounter{students: 10, active: 7})
	require.NoError(t, err)
	assert.Equal(t, Counts{Students: 10, ActiveStudents: 7, Faculty: 4, Courses: 3, Classes: 2, Batches: 1}, d.Counts)
	assert.Equal(t, 67, d.Attendance.Percentage)
	assert.Equal(t, "500", d.Fees.Paid.String())
	assert.Equal(t, 1, d.Grades[3].Count)

	_, err = BuildDashboard(context.Background(), fakeCounter{failFees: true})
	assert.True(t, errors.Is(err, apperr.ErrRemote))
}
