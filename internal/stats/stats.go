// Package stats считает сводные показатели по выборкам записей.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
)

type AttendanceSummary struct {
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Rate: процент присутствия, округление половины вверх; 0 при total == 0.
func Rate(present, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*present + total) / (2 * total)
}

func AttendanceRate(records []models.Attendance) int {
	return SummarizeAttendance(records).Percentage
}

func SummarizeAttendance(records []models.Attendance) AttendanceSummary {
	statuses := make([]models.AttendanceStatus, len(records))
	for i, r := range records {
		statuses[i] = r.Status
	}
	return SummarizeStatuses(statuses)
}

func SummarizeStatuses(statuses []models.AttendanceStatus) AttendanceSummary {
	var s AttendanceSummary
	for _, st := range statuses {
		if st == models.Present {
			s.Present++
		} else {
			s.Absent++
		}
	}
	s.Total = len(statuses)
	s.Percentage = Rate(s.Present, s.Total)
	return s
}

// FeeTotals: paid против всего остального; каждый счёт ровно в одной корзине.
type FeeTotals struct {
	Paid    decimal.Decimal `json:"paid_total"`
	Pending decimal.Decimal `json:"pending_total"`
}

func (t FeeTotals) Total() decimal.Decimal { return t.Paid.Add(t.Pending) }

func Fees(invoices []models.FeeInvoice) FeeTotals {
	t := FeeTotals{Paid: decimal.Zero, Pending: decimal.Zero}
	for _, inv := range invoices {
		if inv.PaymentStatus == models.PaymentPaid {
			t.Paid = t.Paid.Add(inv.Amount)
		} else {
			t.Pending = t.Pending.Add(inv.Amount)
		}
	}
	return t
}

var bands = []struct {
	min   int64
	grade models.Grade
}{
	{90, models.GradeAPlus},
	{80, models.GradeA},
	{70, models.GradeBPlus},
	{60, models.GradeB},
	{50, models.GradeC},
	{40, models.GradeD},
}

var hundred = decimal.NewFromInt(100)

// GradeFromPercentage: баллы в пределах [0, max]. Нижняя граница полосы включительна: ровно 90% это A+.
// Сравнение marks*100 >= band*max точное, без деления.
func GradeFromPercentage(obtained, max decimal.Decimal) (models.Grade, error) {
	if !max.IsPositive() {
		return "", apperr.Validation("stats.GradeFromPercentage", "max marks must be positive, got %s", max)
	}
	if obtained.IsNegative() {
		return "", apperr.Validation("stats.GradeFromPercentage", "marks obtained must not be negative, got %s", obtained)
	}
	if obtained.GreaterThan(max) {
		return "", apperr.Validation("stats.GradeFromPercentage", "marks obtained %s exceed max marks %s", obtained, max)
	}
	scaled := obtained.Mul(hundred)
	for _, b := range bands {
		if scaled.GreaterThanOrEqual(max.Mul(decimal.NewFromInt(b.min))) {
			return b.grade, nil
		}
	}
	return models.GradeF, nil
}

// Percentage: для отображения, два знака.
func Percentage(obtained, max decimal.Decimal) (decimal.Decimal, error) {
	if !max.IsPositive() {
		return decimal.Zero, apperr.Validation("stats.Percentage", "max marks must be positive, got %s", max)
	}
	return obtained.Mul(hundred).DivRound(max, 2), nil
}

type GradeCount struct {
	Grade models.Grade `json:"grade"`
	Count int          `json:"count"`
}

// GradeDistribution: все оценки от A+ до F, включая нулевые.
func GradeDistribution(grades []models.Grade) []GradeCount {
	counts := make(map[models.Grade]int, len(models.Grades))
	for _, g := range grades {
		counts[g]++
	}
	out := make([]GradeCount, 0, len(models.Grades))
	for _, g := range models.Grades {
		out = append(out, GradeCount{Grade: g, Count: counts[g]})
	}
	return out
}
