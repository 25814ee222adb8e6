// Package access хранит таблицу возможностей по ролям. Проверки ролей строками по месту вызова не делаются.
package access

import (
	"slices"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
	"github.com/Spok95/college-portal/internal/report"
)

type Capability int

const (
	ViewDashboard Capability = iota
	ViewReports
	ExportReports
	ManageStudents
	ManageFaculty
	ManageClasses
	ManageBatches
	ManageCourses
	ManageFees
	ManageCirculars
	MarkAttendance
	UploadResults
	ViewOwnAttendance
	ViewOwnResults
	ViewOwnFees
	ViewCirculars
	ViewStudents
	ViewOwnClasses
)

var capNames = map[Capability]string{
	ViewDashboard:     "view_dashboard",
	ViewReports:       "view_reports",
	ExportReports:     "export_reports",
	ManageStudents:    "manage_students",
	ManageFaculty:     "manage_faculty",
	ManageClasses:     "manage_classes",
	ManageBatches:     "manage_batches",
	ManageCourses:     "manage_courses",
	ManageFees:        "manage_fees",
	ManageCirculars:   "manage_circulars",
	MarkAttendance:    "mark_attendance",
	UploadResults:     "upload_results",
	ViewOwnAttendance: "view_own_attendance",
	ViewOwnResults:    "view_own_results",
	ViewOwnFees:       "view_own_fees",
	ViewCirculars:     "view_circulars",
	ViewStudents:      "view_students",
	ViewOwnClasses:    "view_own_classes",
}

func (c Capability) String() string {
	if n, ok := capNames[c]; ok {
		return n
	}
	return "unknown"
}

var table = map[models.Role][]Capability{
	models.RoleAdmin: {
		ViewDashboard, ViewReports, ExportReports,
		ManageStudents, ManageFaculty, ManageClasses, ManageBatches, ManageCourses,
		ManageFees, ManageCirculars, MarkAttendance, UploadResults,
		ViewCirculars, ViewStudents,
	},
	models.RoleFaculty: {
		ViewOwnClasses, MarkAttendance, UploadResults, ViewCirculars, ViewStudents,
	},
	models.RoleStudent: {
		ViewOwnAttendance, ViewOwnResults, ViewOwnFees, ViewCirculars,
	},
}

// Allowed: неизвестная роль не может ничего.
func Allowed(role models.Role, c Capability) bool {
	return slices.Contains(table[role], c)
}

// Require возвращает apperr.ErrForbidden-класс ошибки, если у сессии нет возможности.
func Require(s models.Session, c Capability) error {
	if Allowed(s.Role, c) {
		return nil
	}
	return apperr.Forbidden("access.Require", "role %q cannot %s", s.Role, c)
}

// CanSee: попадает ли циркуляр в аудиторию роли. Админ видит всё.
func CanSee(role models.Role, c models.Circular) bool {
	if role == models.RoleAdmin {
		return true
	}
	for _, a := range c.TargetAudience {
		if a == models.AudienceAll || a == string(role) {
			return true
		}
	}
	return false
}

// Audience: фильтр аудитории для выборки циркуляров; пустая строка означает выборку без фильтра.
func Audience(role models.Role) string {
	if role == models.RoleAdmin {
		return ""
	}
	return string(role)
}

// ReportsFor: типы отчётов, которые роль может смотреть. Пусто, если отчёты недоступны.
func ReportsFor(role models.Role) []report.Type {
	if !Allowed(role, ViewReports) {
		return nil
	}
	return slices.Clone(report.Types)
}
