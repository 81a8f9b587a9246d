package portfolio

import (
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
)

func TestEngineProcessSetsStatusAndDescription(t *testing.T) {
	e := NewEngine(nil, NewSeededRandom(1))

	doc := e.Process(domain.Document{ID: "1", Name: "диплом_математика.pdf"})
	if doc.Category != domain.CategoryEducation {
		t.Fatalf("expected education, got %s", doc.Category)
	}
	if doc.Status != domain.StatusProcessed {
		t.Fatalf("expected processed status, got %q", doc.Status)
	}
	if !strings.HasPrefix(doc.Description, "Диплом об окончании ") {
		t.Fatalf("unexpected description %q", doc.Description)
	}
}

func TestEngineClassifyNames(t *testing.T) {
	docs := NewEngine(nil, nil).ClassifyNames([]string{"медаль.png", "x", "медаль.png"})
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if docs[0].Name != "медаль.png" || docs[0].Category != domain.CategorySports {
		t.Fatalf("unexpected first document %+v", docs[0])
	}
	if docs[1].Category != domain.CategoryOther {
		t.Fatalf("unexpected second document %+v", docs[1])
	}
	seen := map[string]bool{}
	for _, doc := range docs {
		if doc.ID == "" || seen[doc.ID] {
			t.Fatalf("repeated names must get distinct ids, got %+v", docs)
		}
		seen[doc.ID] = true
	}
}

func TestEngineBuildViewSections(t *testing.T) {
	e := NewEngine(nil, NewSeededRandom(4))
	modified := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC).UnixMilli()
	now := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	data := domain.PortfolioData{Documents: []domain.Document{
		{ID: "d1", Name: "диплом.pdf", Size: 1024, MimeType: "application/pdf", LastModified: modified},
		{ID: "d2", Name: "медаль_баскетбол.png", Size: 10, LastModified: modified},
		{ID: "d3", Name: "годовой_отчёт.pdf", Size: 2048, LastModified: modified},
		{ID: "d4", Name: "кубок.jpg", Category: domain.CategorySports, Description: "своё описание", LastModified: modified},
	}}

	view := e.BuildView(data, "Анонимный пользователь", now)

	if view.StudentName != "Анонимный пользователь" {
		t.Fatalf("expected default student name, got %q", view.StudentName)
	}
	if !strings.HasPrefix(view.About, "Анонимный пользователь. ") {
		t.Fatalf("unexpected about %q", view.About)
	}
	if !view.GeneratedAt.Equal(now) {
		t.Fatalf("unexpected generation time %v", view.GeneratedAt)
	}
	if len(view.Cards) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(view.Cards))
	}

	want := map[domain.SectionID][]string{
		domain.SectionEducation:    {"d1"},
		domain.SectionAchievements: {"d2", "d4"},
		domain.SectionProjects:     {"d3"},
		domain.SectionOther:        nil,
	}
	if len(view.Sections) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(view.Sections))
	}
	for _, section := range view.Sections {
		ids := want[section.ID]
		if len(section.Cards) != len(ids) {
			t.Fatalf("section %s: expected %d cards, got %d", section.ID, len(ids), len(section.Cards))
		}
		for i, id := range ids {
			if section.Cards[i].ID != id {
				t.Fatalf("section %s card #%d: expected %s, got %s", section.ID, i, id, section.Cards[i].ID)
			}
		}
		if section.Empty() && section.EmptyMessage != "Нет документов в этом разделе" {
			t.Fatalf("section %s: unexpected empty message %q", section.ID, section.EmptyMessage)
		}
		if !section.Empty() && section.EmptyMessage != "" {
			t.Fatalf("section %s: non-empty section has empty message", section.ID)
		}
	}

	card := view.Cards[0]
	if card.Date != "05.03.2024" || card.ISODate != "2024-03-05" {
		t.Fatalf("unexpected card dates %q %q", card.Date, card.ISODate)
	}
	if card.Size != "1.0 КБ" || card.CategoryName != "Образование" || card.MimeType != "application/pdf" {
		t.Fatalf("unexpected card %+v", card)
	}
	if view.Cards[3].Description != "своё описание" {
		t.Fatalf("stored description must be kept, got %q", view.Cards[3].Description)
	}

	if data.Documents[0].Category != "" || data.Documents[0].Description != "" {
		t.Fatalf("stored data must not be mutated: %+v", data.Documents[0])
	}
}

func TestEngineBuildViewPrefersStoredName(t *testing.T) {
	view := NewEngine(nil, nil).BuildView(domain.PortfolioData{StudentName: " Мария "}, "Аноним", time.Now())
	if view.StudentName != "Мария" {
		t.Fatalf("expected stored student name, got %q", view.StudentName)
	}
	for _, section := range view.Sections {
		if !section.Empty() || section.EmptyMessage == "" {
			t.Fatalf("expected every section empty with a message: %+v", section)
		}
	}
}
