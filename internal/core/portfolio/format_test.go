package portfolio

import (
	"testing"
	"time"
	"unicode/utf8"
)

func TestFormatFileSize(t *testing.T) {
	cases := map[int64]string{
		-1:              "0 байт",
		0:               "0 байт",
		512:             "512 байт",
		1023:            "1023 байт",
		1024:            "1.0 КБ",
		1536:            "1.5 КБ",
		5 * 1024 * 1024: "5.0 МБ",
		3 << 30:         "3.0 ГБ",
		5 << 40:         "5120.0 ГБ",
	}
	for in, want := range cases {
		if got := FormatFileSize(in); got != want {
			t.Fatalf("FormatFileSize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatISODate(t *testing.T) {
	cases := map[string]string{
		"05.03.2024": "2024-03-05",
		"31.12.1999": "1999-12-31",
		"2024-03-05": "",
		"bad":        "",
		"":           "",
		"1.2.3.4":    "",
	}
	for in, want := range cases {
		if got := FormatISODate(in); got != want {
			t.Fatalf("FormatISODate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	got := FormatDate(time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC))
	if got != "05.03.2024" {
		t.Fatalf("unexpected date %q", got)
	}
}

func TestTruncateFileName(t *testing.T) {
	if got := TruncateFileName("короткое.pdf", 30); got != "короткое.pdf" {
		t.Fatalf("short names must be kept, got %q", got)
	}

	got := TruncateFileName("очень_длинное_имя_файла_для_проверки.pdf", 20)
	if got != "очень_длинное....pdf" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 20 {
		t.Fatalf("expected 20 runes, got %d", n)
	}

	if got := TruncateFileName("abcdefghij", 5); got != "abcde..." {
		t.Fatalf("unexpected truncation without extension %q", got)
	}
}

func TestExportFileName(t *testing.T) {
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	got := ExportFileName("портфолио", "  Иван \t Петров ", date, "pdf")
	if got != "портфолио_Иван_Петров_2024-03-05.pdf" {
		t.Fatalf("unexpected export file name %q", got)
	}
}
