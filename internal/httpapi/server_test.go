package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/portal"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeProfiles map[uuid.UUID]models.Profile

func (f fakeProfiles) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := f[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

var (
	adminID   = uuid.New()
	facultyID = uuid.New()
	studentID = uuid.New()
)

func newTestServer(ping error) http.Handler {
	profiles := fakeProfiles{
		adminID:   {ID: adminID, FullName: "Admin", Role: models.RoleAdmin},
		facultyID: {ID: facultyID, FullName: "Dr. Rao", Role: models.RoleFaculty},
		studentID: {ID: studentID, FullName: "Doe, John", Role: models.RoleStudent},
	}
	return New(portal.New(nil, nil, portal.Options{}), fakePinger{err: ping}, profiles, nil).Router()
}

func do(t *testing.T, h http.Handler, method, path string, profile uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if profile != uuid.Nil {
		req.Header.Set(ProfileHeader, profile.String())
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/healthz", uuid.Nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(t, newTestServer(errors.New("down")), http.MethodGet, "/healthz", uuid.Nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStart_WaitReturnsAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := Start(ctx, "127.0.0.1:0", http.NotFoundHandler(), zap.NewNop())

	done := make(chan struct{})
	go func() {
		srv.Wait()
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("Wait returned before the context was cancelled")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after shutdown")
	}
}

func TestSession(t *testing.T) {
	h := newTestServer(nil)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/dashboard", uuid.Nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/dashboard", uuid.New(), "").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set(ProfileHeader, "not-a-uuid")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReports_ErrorMapping(t *testing.T) {
	h := newTestServer(nil)

	rec := do(t, h, http.MethodGet, "/api/reports/fees", studentID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/reports/salaries", adminID, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/reports/fees.pdf", adminID, "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/reports/fees.csv", studentID, "").Code)
}

func TestDashboard_AdminOnly(t *testing.T) {
	h := newTestServer(nil)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/dashboard", facultyID, "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/dashboard", studentID, "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/me/teaching", adminID, "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/me/teaching", studentID, "").Code)
}

func TestMarkAttendance_BadInput(t *testing.T) {
	h := newTestServer(nil)
	classID := uuid.New().String()

	rec := do(t, h, http.MethodPost, "/api/attendance", adminID, `{"class_id":"`+classID+`","date":"15/03/2024"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/attendance", adminID, `{"class_id":"`+classID+`","date":"2024-03-15","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/attendance", studentID, `{"class_id":"`+classID+`","date":"2024-03-15"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateStudent_ValidationFields(t *testing.T) {
	h := newTestServer(nil)
	rec := do(t, h, http.MethodPost, "/api/students", adminID, `{"full_name":"","email":"x","password":"p","student_id":"S-1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Fields)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("op", "bad"), http.StatusBadRequest},
		{apperr.NotFound("op", "gone"), http.StatusNotFound},
		{apperr.Conflict("op", "dup"), http.StatusConflict},
		{apperr.Forbidden("op", "no"), http.StatusForbidden},
		{apperr.Remote("op", errors.New("conn reset")), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusOf(c.err), c.err.Error())
	}
}

func TestAdminRoutes_ErrorsBeforeStore(t *testing.T) {
	h := newTestServer(nil)
	id := uuid.New().String()

	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodDelete, "/api/batches/"+id, studentID, "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/faculty", studentID, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodDelete, "/api/batches/not-a-uuid", adminID, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/api/invoices/"+id, adminID, `{"due_date":"tomorrow"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/api/results/"+id, adminID, `{"marks_obtained":"10","max_marks":"0"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/api/profiles/"+id+"/telegram", adminID, `{"telegram_id":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/api/circulars/"+id, adminID, `{"priority":"low"}`).Code)
}

func TestInvoicePatch_ClearsDueDate(t *testing.T) {
	empty := ""
	p, err := invoicePatch{DueDate: &empty}.toDB()
	require.NoError(t, err)
	require.NotNil(t, p.DueDate)
	assert.Nil(t, *p.DueDate)

	p, err = invoicePatch{}.toDB()
	require.NoError(t, err)
	assert.Nil(t, p.DueDate)
}

func TestStudentPatch_ZeroIDDetaches(t *testing.T) {
	zero := uuid.Nil
	p, err := studentPatch{ClassID: &zero}.toDB()
	require.NoError(t, err)
	require.NotNil(t, p.ClassID)
	assert.False(t, p.ClassID.Valid)
	assert.Nil(t, p.BatchID)
}
