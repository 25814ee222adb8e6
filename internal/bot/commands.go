package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/portal"
	"github.com/Spok95/college-portal/internal/report"
	"github.com/Spok95/college-portal/internal/resolve"
	"github.com/Spok95/college-portal/internal/stats"
	"github.com/Spok95/college-portal/internal/tg"
)

const recentLimit = 5

func (b *Bot) handleStart(chatID int64, sess models.Session) {
	msg := tgbotapi.NewMessage(chatID, "Welcome! Choose an action:")
	msg.ReplyMarkup = RoleMenu(sess.Role)
	if _, err := tg.Send(b.api, msg); err != nil {
		b.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// handleStats: админ получает общий дашборд, преподаватель сводку по своим классам.
func (b *Bot) handleStats(ctx context.Context, chatID int64, sess models.Session) {
	if access.Allowed(sess.Role, access.ViewOwnClasses) {
		t, err := b.svc.Teaching(ctx, sess)
		if err != nil {
			b.fail(ctx, chatID, err)
			return
		}
		b.reply(chatID, fmt.Sprintf("📊 My classes\n\nClasses: %d\nStudents: %d", t.Classes, t.Students))
		return
	}
	d, err := b.svc.Dashboard(ctx, sess)
	if err != nil {
		b.fail(ctx, chatID, err)
		return
	}
	b.reply(chatID, formatDashboard(d, b.opts.Currency))
}

func formatDashboard(d *stats.Dashboard, currency string) string {
	var sb strings.Builder
	c := d.Counts
	sb.WriteString("📊 Dashboard\n\n")
	fmt.Fprintf(&sb, "Students: %d (active %d)\n", c.Students, c.ActiveStudents)
	fmt.Fprintf(&sb, "Faculty: %d\nCourses: %d\nClasses: %d\nBatches: %d\n\n", c.Faculty, c.Courses, c.Classes, c.Batches)
	fmt.Fprintf(&sb, "Attendance: %d%% (%d of %d)\n", d.Attendance.Percentage, d.Attendance.Present, d.Attendance.Total)
	fmt.Fprintf(&sb, "Fees paid: %s%s\nFees pending: %s%s\n", currency, d.Fees.Paid.String(), currency, d.Fees.Pending.String())
	grades := make([]string, 0, len(d.Grades))
	for _, g := range d.Grades {
		grades = append(grades, fmt.Sprintf("%s: %d", g.Grade, g.Count))
	}
	if len(grades) > 0 {
		fmt.Fprintf(&sb, "\nGrades: %s", strings.Join(grades, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// handleReport без аргумента показывает выбор отчёта; с аргументом шлёт CSV и XLSX.
func (b *Bot) handleReport(ctx context.Context, chatID int64, sess models.Session, args []string) {
	if len(args) == 0 {
		types := access.ReportsFor(sess.Role)
		if len(types) == 0 {
			b.reply(chatID, "🚫 Access denied.")
			return
		}
		msg := tgbotapi.NewMessage(chatID, "Choose a report:")
		msg.ReplyMarkup = reportKeyboard(types)
		if _, err := tg.Send(b.api, msg); err != nil {
			b.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		return
	}
	typ, err := report.ParseType(strings.ToLower(args[0]))
	if err != nil {
		b.fail(ctx, chatID, err)
		return
	}
	for _, f := range []portal.Format{portal.FormatCSV, portal.FormatXLSX} {
		exp, err := b.svc.Export(ctx, sess, typ, f)
		if err != nil {
			b.fail(ctx, chatID, err)
			return
		}
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: exp.Filename, Bytes: exp.Data})
		doc.Caption = caption(typ, exp.Warnings)
		if _, err := tg.Send(b.api, doc); err != nil {
			b.log.Warn("send document failed", zap.String("file", exp.Filename), zap.Error(err))
			b.reply(chatID, "❌ Could not send the file, try again later.")
			return
		}
	}
}

func caption(typ report.Type, warn resolve.Warnings) string {
	return typ.Title() + partialNote(warn)
}

// partialNote: пометка о связях, которые не удалось подтянуть.
func partialNote(warn resolve.Warnings) string {
	if len(warn) == 0 {
		return ""
	}
	rels := make([]string, 0, len(warn))
	for k := range warn {
		rels = append(rels, string(k))
	}
	sort.Strings(rels)
	return "\n⚠️ Partial data, unavailable: " + strings.Join(rels, ", ")
}

func (b *Bot) handleCirculars(ctx context.Context, chatID int64, sess models.Session) {
	list, err := b.svc.Circulars(ctx, sess, b.opts.CircularLimit)
	if err != nil {
		b.fail(ctx, chatID, err)
		return
	}
	if len(list) == 0 {
		b.reply(chatID, "No active circulars.")
		return
	}
	var sb strings.Builder
	for i, c := range list {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		mark := "📢"
		if c.Priority == models.PriorityUrgent || c.Priority == models.PriorityHigh {
			mark = "❗"
		}
		fmt.Fprintf(&sb, "%s %s (%s)\n%s", mark, c.Title, c.PublishedAt.Format(time.DateOnly), c.Content)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleAttendance(ctx context.Context, chatID int64, sess models.Session) {
	res, err := b.svc.MyAttendance(ctx, sess)
	if err != nil {
		b.fail(ctx, chatID, err)
		return
	}
	sum := res.Summary
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 Attendance: %d%% (present %d of %d)", sum.Percentage, sum.Present, sum.Total)
	for i, r := range res.Records {
		if i == recentLimit {
			break
		}
		fmt.Fprintf(&sb, "\n%s: %s", r.Date.Format(time.DateOnly), r.Status)
	}
	sb.WriteString(partialNote(res.Warnings))
	b.reply(chatID, sb.String())
}

func (b *Bot) handleResults(ctx context.Context, chatID int64, sess models.Session) {
	res, err := b.svc.MyResults(ctx, sess)
	if err != nil {
		b.fail(ctx, chatID, err)
		return
	}
	rows := res.Records
	if len(rows) == 0 {
		b.reply(chatID, "No results yet.")
		return
	}
	var sb strings.Builder
	sb.WriteString("🎓 Results")
	for _, r := range rows {
		subject := report.Placeholder
		if r.Subject != nil {
			subject = r.Subject.Name
		}
		grade := report.Placeholder
		if r.Grade != nil {
			grade = string(*r.Grade)
		}
		fmt.Fprintf(&sb, "\n%s (%s): %s/%s, %s", subject, r.ExamType, r.MarksObtained.String(), r.MaxMarks.String(), grade)
	}
	sb.WriteString(partialNote(res.Warnings))
	b.reply(chatID, sb.String())
}

func (b *Bot) handleFees(ctx context.Context, chatID int64, sess models.Session) {
	res, err := b.svc.MyFees(ctx, sess)
	if err != nil {
		b.fail(ctx, chatID, err)
		return
	}
	cur := b.opts.Currency
	b.reply(chatID, fmt.Sprintf("💳 Fees\nPaid: %s%s\nPending: %s%s\nTotal: %s%s",
		cur, res.Totals.Paid.String(), cur, res.Totals.Pending.String(), cur, res.Totals.Total().String()))
}
