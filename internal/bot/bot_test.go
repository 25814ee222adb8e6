package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/portal"
	"github.com/Spok95/college-portal/internal/report"
	"github.com/Spok95/college-portal/internal/resolve"
	"github.com/Spok95/college-portal/internal/stats"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) documents() []tgbotapi.DocumentConfig {
	var out []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

type fakePortal struct {
	exports []portal.Format
	remote  error
}

func (p *fakePortal) Dashboard(_ context.Context, sess models.Session) (*stats.Dashboard, error) {
	if err := access.Require(sess, access.ViewDashboard); err != nil {
		return nil, err
	}
	if p.remote != nil {
		return nil, apperr.Remote("fake.Dashboard", p.remote)
	}
	return &stats.Dashboard{
		Counts:     stats.Counts{Students: 3, ActiveStudents: 2},
		Attendance: stats.SummarizeStatuses([]models.AttendanceStatus{models.Present, models.Present, models.Absent}),
		Fees:       stats.FeeTotals{Paid: decimal.NewFromInt(500), Pending: decimal.NewFromInt(300)},
	}, nil
}

func (p *fakePortal) Teaching(_ context.Context, sess models.Session) (*stats.TeachingLoad, error) {
	if err := access.Require(sess, access.ViewOwnClasses); err != nil {
		return nil, err
	}
	return &stats.TeachingLoad{Classes: 2, Students: 41}, nil
}

func (p *fakePortal) Export(_ context.Context, sess models.Session, typ report.Type, f portal.Format) (*portal.Export, error) {
	if err := access.Require(sess, access.ExportReports); err != nil {
		return nil, err
	}
	p.exports = append(p.exports, f)
	return &portal.Export{
		Filename: report.Filename(typ, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), time.UTC, string(f)),
		Data:     []byte("x"),
		Warnings: resolve.Warnings{resolve.RelProfile: errors.New("down")},
	}, nil
}

func (p *fakePortal) Circulars(context.Context, models.Session, int) ([]models.Circular, error) {
	return nil, nil
}

func (p *fakePortal) MyAttendance(_ context.Context, sess models.Session) (*portal.MyAttendance, error) {
	if err := access.Require(sess, access.ViewOwnAttendance); err != nil {
		return nil, err
	}
	return &portal.MyAttendance{Summary: stats.AttendanceSummary{Present: 2, Absent: 1, Total: 3, Percentage: 67}}, nil
}

func (p *fakePortal) MyResults(_ context.Context, sess models.Session) (*portal.MyResults, error) {
	if err := access.Require(sess, access.ViewOwnResults); err != nil {
		return nil, err
	}
	grade := models.GradeA
	return &portal.MyResults{
		Records: []resolve.ResultView{{Result: models.Result{
			ExamType:      "mid_term",
			MarksObtained: decimal.NewFromInt(85),
			MaxMarks:      decimal.NewFromInt(100),
			Grade:         &grade,
		}}},
		Warnings: resolve.Warnings{resolve.RelSubject: errors.New("timeout")},
	}, nil
}

func (p *fakePortal) MyFees(_ context.Context, sess models.Session) (*portal.MyFees, error) {
	if err := access.Require(sess, access.ViewOwnFees); err != nil {
		return nil, err
	}
	return &portal.MyFees{Totals: stats.FeeTotals{Paid: decimal.NewFromInt(500), Pending: decimal.NewFromInt(300)}}, nil
}

type fakeProfiles map[int64]models.Profile

func (f fakeProfiles) GetProfileByTelegramID(_ context.Context, id int64) (*models.Profile, error) {
	p, ok := f[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

const (
	adminChat    int64 = 1
	studentChat  int64 = 2
	strangerChat int64 = 3
	facultyChat  int64 = 4
)

func newTestBot(p *fakePortal) (*Bot, *fakeSender) {
	api := &fakeSender{}
	profiles := fakeProfiles{
		studentChat: {ID: uuid.New(), FullName: "Asha", Role: models.RoleStudent},
		facultyChat: {ID: uuid.New(), FullName: "Dr. Rao", Role: models.RoleFaculty},
	}
	b := New(api, p, profiles, Options{IsAdminChat: func(id int64) bool { return id == adminChat }}, nil)
	return b, api
}

func message(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}}
}

func TestParseCommand(t *testing.T) {
	cmd, args := parseCommand("/report@portal_bot fees")
	assert.Equal(t, "report", cmd)
	assert.Equal(t, []string{"fees"}, args)

	cmd, args = parseCommand(btnFees)
	assert.Equal(t, "fees", cmd)
	assert.Empty(t, args)

	cmd, _ = parseCommand("hello")
	assert.Empty(t, cmd)
}

func TestUnlinkedChat(t *testing.T) {
	b, api := newTestBot(&fakePortal{})
	b.Handle(context.Background(), message(strangerChat, "/stats"))
	require.Len(t, api.texts(), 1)
	assert.Contains(t, api.texts()[0], "not linked")
}

func TestReport_AdminGetsBothFiles(t *testing.T) {
	p := &fakePortal{}
	b, api := newTestBot(p)
	b.Handle(context.Background(), message(adminChat, "/report fees"))

	assert.Equal(t, []portal.Format{portal.FormatCSV, portal.FormatXLSX}, p.exports)
	docs := api.documents()
	require.Len(t, docs, 2)
	f, ok := docs[0].File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "fees_report_2024-03-15.csv", f.Name)
	assert.Contains(t, docs[0].Caption, "Fees")
	assert.Contains(t, docs[0].Caption, "profile")
}

func TestReport_StudentForbidden(t *testing.T) {
	p := &fakePortal{}
	b, api := newTestBot(p)
	b.Handle(context.Background(), message(studentChat, "/report fees"))
	assert.Empty(t, p.exports)
	assert.Empty(t, api.documents())
	assert.Equal(t, []string{"🚫 Access denied."}, api.texts())
}

func TestReport_UnknownType(t *testing.T) {
	b, api := newTestBot(&fakePortal{})
	b.Handle(context.Background(), message(adminChat, "/report salaries"))
	require.Len(t, api.texts(), 1)
	assert.Contains(t, api.texts()[0], "salaries")
}

func TestReport_Callback(t *testing.T) {
	p := &fakePortal{}
	b, api := newTestBot(p)
	b.Handle(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    reportCallbackPrefix + "results",
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: adminChat}},
	}})
	assert.Len(t, api.requests, 1)
	assert.Len(t, api.documents(), 2)
}

func TestStats(t *testing.T) {
	b, api := newTestBot(&fakePortal{})
	b.Handle(context.Background(), message(adminChat, btnStats))
	require.Len(t, api.texts(), 1)
	assert.Contains(t, api.texts()[0], "Attendance: 67% (2 of 3)")
	assert.Contains(t, api.texts()[0], "Fees paid: ₹500")

	b, api = newTestBot(&fakePortal{remote: errors.New("conn refused")})
	b.Handle(context.Background(), message(adminChat, "/stats"))
	assert.Equal(t, []string{"❌ Something went wrong, try again later."}, api.texts())
}

func TestStats_FacultySeesOwnClasses(t *testing.T) {
	b, api := newTestBot(&fakePortal{})
	b.Handle(context.Background(), message(facultyChat, btnStats))
	require.Len(t, api.texts(), 1)
	assert.Equal(t, "📊 My classes\n\nClasses: 2\nStudents: 41", api.texts()[0])
	assert.NotContains(t, api.texts()[0], "Fees")
}

func TestStudentCommands(t *testing.T) {
	b, api := newTestBot(&fakePortal{})
	b.Handle(context.Background(), message(studentChat, "/fees"))
	b.Handle(context.Background(), message(studentChat, "/attendance"))
	b.Handle(context.Background(), message(studentChat, "/stats"))

	texts := api.texts()
	require.Len(t, texts, 3)
	assert.Equal(t, "💳 Fees\nPaid: ₹500\nPending: ₹300\nTotal: ₹800", texts[0])
	assert.Equal(t, "🗓 Attendance: 67% (present 2 of 3)", texts[1])
	assert.Equal(t, "🚫 Access denied.", texts[2])
}

func TestResults_MarksPartialData(t *testing.T) {
	b, api := newTestBot(&fakePortal{})
	b.Handle(context.Background(), message(studentChat, "/results"))
	require.Len(t, api.texts(), 1)
	assert.Equal(t, "🎓 Results\n- (mid_term): 85/100, A\n⚠️ Partial data, unavailable: subject", api.texts()[0])
}

func TestStart_MenuByRole(t *testing.T) {
	b, api := newTestBot(&fakePortal{})
	b.Handle(context.Background(), message(studentChat, "/start"))
	require.Len(t, api.sent, 1)
	msg := api.sent[0].(tgbotapi.MessageConfig)
	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, btnAttendance, kb.Keyboard[0][0].Text)
}

func TestRun_StopsOnClose(t *testing.T) {
	b, _ := newTestBot(&fakePortal{})
	updates := make(chan tgbotapi.Update)
	done := make(chan struct{})
	go func() {
		b.Run(context.Background(), updates)
		close(done)
	}()
	close(updates)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the channel closed")
	}
}

func TestRun_WaitsForHandlers(t *testing.T) {
	b, api := newTestBot(&fakePortal{})
	updates := make(chan tgbotapi.Update)
	done := make(chan struct{})
	go func() {
		b.Run(context.Background(), updates)
		close(done)
	}()
	updates <- message(strangerChat, "/stats")
	close(updates)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Len(t, api.sent, 1)
}

func TestReport_Keyboard(t *testing.T) {
	b, api := newTestBot(&fakePortal{})
	b.Handle(context.Background(), message(adminChat, btnReports))
	require.Len(t, api.sent, 1)
	kb, ok := api.sent[0].(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, len(report.Types))
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, reportCallbackPrefix+"students", *kb.InlineKeyboard[0][0].CallbackData)

	b, api = newTestBot(&fakePortal{})
	b.Handle(context.Background(), message(studentChat, "/report"))
	assert.Equal(t, []string{"🚫 Access denied."}, api.texts())
}
