package domain

import (
	"fmt"
	"strings"
	"time"
)

type SectionID string

const (
	SectionEducation    SectionID = "education"
	SectionAchievements SectionID = "achievements"
	SectionProjects     SectionID = "projects"
	SectionOther        SectionID = "other"
)

type Card struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	ISODate      string   `json:"iso_date"`
	Category     Category `json:"category"`
	CategoryName string   `json:"category_name"`
	Description  string   `json:"description"`
	Size         string   `json:"size"`
	MimeType     string   `json:"mime_type"`
}

type Section struct {
	ID           SectionID `json:"id"`
	Title        string    `json:"title"`
	Cards        []Card    `json:"cards"`
	EmptyMessage string    `json:"empty_message,omitempty"`
}

func (s Section) Empty() bool {
	return len(s.Cards) == 0
}

type PortfolioView struct {
	StudentName string    `json:"student_name"`
	About       string    `json:"about"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []Section `json:"sections"`
	Cards       []Card    `json:"cards"`
}

type ExportFormat string

const (
	ExportPDF  ExportFormat = "pdf"
	ExportXLSX ExportFormat = "xlsx"
)

// ParseExportFormat accepts the format name case-insensitively.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case ExportPDF, ExportXLSX:
		return f, nil
	case "":
		return ExportPDF, nil
	default:
		return "", WrapError(ErrUnsupportedFormat, "parse export format", fmt.Errorf("format %q", raw))
	}
}
