package access

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/report"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		role models.Role
		cap  Capability
		want bool
	}{
		{models.RoleAdmin, ExportReports, true},
		{models.RoleAdmin, ManageFees, true},
		{models.RoleFaculty, MarkAttendance, true},
		{models.RoleFaculty, ManageFees, false},
		{models.RoleFaculty, ViewReports, false},
		{models.RoleFaculty, ViewDashboard, false},
		{models.RoleFaculty, ViewOwnClasses, true},
		{models.RoleAdmin, ViewOwnClasses, false},
		{models.RoleStudent, ViewOwnFees, true},
		{models.RoleStudent, MarkAttendance, false},
		{models.RoleStudent, ViewDashboard, false},
		{models.Role("parent"), ViewDashboard, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Allowed(c.role, c.cap), "%s/%s", c.role, c.cap)
	}
}

func TestRequire(t *testing.T) {
	s := models.Session{ProfileID: uuid.New(), Role: models.RoleStudent}
	require.NoError(t, Require(s, ViewCirculars))

	err := Require(s, ExportReports)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestCanSee(t *testing.T) {
	all := models.Circular{TargetAudience: pq.StringArray{"all"}}
	staff := models.Circular{TargetAudience: pq.StringArray{"faculty"}}

	assert.True(t, CanSee(models.RoleStudent, all))
	assert.False(t, CanSee(models.RoleStudent, staff))
	assert.True(t, CanSee(models.RoleFaculty, staff))
	assert.True(t, CanSee(models.RoleAdmin, staff))
	assert.Equal(t, "", Audience(models.RoleAdmin))
	assert.Equal(t, "student", Audience(models.RoleStudent))
}

func TestReportsFor(t *testing.T) {
	assert.Equal(t, report.Types, ReportsFor(models.RoleAdmin))
	assert.Empty(t, ReportsFor(models.RoleFaculty))
	assert.Empty(t, ReportsFor(models.RoleStudent))

	got := ReportsFor(models.RoleAdmin)
	got[0] = "mutated"
	assert.Equal(t, report.Students, report.Types[0])
}
