package portfolio

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const displayDateLayout = "02.01.2006"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	sizeUnits     = []string{"байт", "КБ", "МБ", "ГБ"}
)

// FormatISODate converts DD.MM.YYYY to YYYY-MM-DD. Anything that does not split
// into exactly three dot-separated parts yields "".
func FormatISODate(date string) string {
	parts := strings.Split(date, ".")
	if len(parts) != 3 {
		return ""
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

func FormatDate(t time.Time) string {
	return t.Format(displayDateLayout)
}

// FormatFileSize renders a byte count with 1024-based units.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 " + sizeUnits[0]
	}
	exp := 0
	for exp < len(sizeUnits)-1 && bytes >= int64(1)<<(10*(exp+1)) {
		exp++
	}
	if exp == 0 {
		return strconv.FormatInt(bytes, 10) + " " + sizeUnits[0]
	}
	value := float64(bytes) / float64(int64(1)<<(10*exp))
	return strconv.FormatFloat(value, 'f', 1, 64) + " " + sizeUnits[exp]
}

// TruncateFileName shortens long names while keeping the extension visible.
func TruncateFileName(name string, maxRunes int) string {
	runes := []rune(name)
	if len(runes) <= maxRunes {
		return name
	}

	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return string(runes[:maxRunes]) + "..."
	}
	stem := []rune(name[:dot])
	ext := name[dot:]

	keep := maxRunes - len([]rune(ext)) - 3
	if keep < 0 {
		keep = 0
	}
	if keep > len(stem) {
		keep = len(stem)
	}
	return string(stem[:keep]) + "..." + ext
}

// ExportFileName builds "<prefix>_<student>_<YYYY-MM-DD>.<ext>" with whitespace
// runs in the student name replaced by underscores.
func ExportFileName(prefix, student string, date time.Time, ext string) string {
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(student), "_")
	return fmt.Sprintf("%s_%s_%s.%s", prefix, name, date.Format(time.DateOnly), ext)
}
