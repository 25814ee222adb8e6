package report

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/Spok95/college-portal/internal/apperr"
)

// quote: каждое поле в кавычках, внутренние кавычки удваиваются.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeRow(w *bufio.Writer, row []string) {
	for i, c := range row {
		if i > 0 {
			_ = w.WriteByte(',')
		}
		_, _ = w.WriteString(quote(c))
	}
}

// WriteCSV: заголовок и строки через "\n", без завершающего перевода строки.
func WriteCSV(out io.Writer, t Table) error {
	w := bufio.NewWriter(out)
	writeRow(w, t.Header)
	for _, row := range t.Rows {
		_ = w.WriteByte('\n')
		writeRow(w, row)
	}
	return w.Flush()
}

func CSV(t Table) string {
	var b strings.Builder
	_ = WriteCSV(&b, t)
	return b.String()
}

// ParseCSV: обратная операция, первая строка заголовок, остальные данные.
// encoding/csv превращает "\r\n" внутри ячейки в "\n"; проекции пишут ячейки уже в этом виде.
func ParseCSV(s string) (header []string, rows [][]string, err error) {
	r := csv.NewReader(strings.NewReader(s))
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, apperr.Validation("report.ParseCSV", "malformed csv: %v", err)
	}
	if len(records) == 0 {
		return nil, nil, apperr.Validation("report.ParseCSV", "empty csv")
	}
	return records[0], records[1:], nil
}

// Filename: {type}_report_{YYYY-MM-DD}.{ext}; дата в зоне loc.
func Filename(t Type, now time.Time, loc *time.Location, ext string) string {
	if loc != nil {
		now = now.In(loc)
	}
	return string(t) + "_report_" + now.Format(time.DateOnly) + "." + ext
}
