// Package portfolio is the classification and description engine: keyword
// classification of file names, template-based descriptions, the "about me"
// summary and the portfolio view built from them. Every operation is total
// over its inputs and safe for concurrent use when the RandomSource is.
package portfolio

import (
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/knowledge"
)

type Engine struct {
	kb          *knowledge.KnowledgeBase
	classifier  *Classifier
	synthesizer *Synthesizer
	summarizer  *Summarizer
}

func NewEngine(kb *knowledge.KnowledgeBase, rnd RandomSource) *Engine {
	if kb == nil {
		kb = knowledge.Default()
	}
	if rnd == nil {
		rnd = DefaultRandom()
	}
	return &Engine{
		kb:          kb,
		classifier:  NewClassifier(kb),
		synthesizer: NewSynthesizer(kb, rnd),
		summarizer:  NewSummarizer(kb, rnd),
	}
}

func (e *Engine) KnowledgeBase() *knowledge.KnowledgeBase {
	return e.kb
}

func (e *Engine) Classify(docs []domain.Document) []domain.Document {
	return e.classifier.Classify(docs)
}

func (e *Engine) ClassifyDocument(doc domain.Document) domain.ClassificationResult {
	return e.classifier.ClassifyDocument(doc)
}

func (e *Engine) Describe(name string) string {
	return e.synthesizer.Describe(name)
}

func (e *Engine) Summarize(docs []domain.Document, studentName string) string {
	return e.summarizer.Summarize(docs, studentName)
}

// Process classifies one record and attaches a fresh description.
func (e *Engine) Process(doc domain.Document) domain.Document {
	out := e.classifier.ClassifyDocument(doc).Document
	out.Description = e.synthesizer.Describe(doc.Name)
	out.Status = domain.StatusProcessed
	return out
}

// ClassifyNames wraps bare file names into records and classifies them. Ids
// are the 1-based positions, so repeated names stay distinct records.
func (e *Engine) ClassifyNames(names []string) []domain.Document {
	docs := make([]domain.Document, len(names))
	for i, name := range names {
		docs[i] = domain.Document{ID: strconv.Itoa(i + 1), Name: name}
	}
	return e.Classify(docs)
}

// BuildView lays the stored records out in display sections. Records that were
// never processed are classified and described on the fly; the stored data is
// left untouched.
func (e *Engine) BuildView(data domain.PortfolioData, defaultName string, now time.Time) domain.PortfolioView {
	docs := make([]domain.Document, len(data.Documents))
	for i, doc := range data.Documents {
		switch {
		case !doc.Classified():
			doc = e.Process(doc)
		case doc.Description == "":
			doc.Description = e.synthesizer.Describe(doc.Name)
		}
		docs[i] = doc
	}

	name := strings.TrimSpace(data.StudentName)
	if name == "" {
		name = defaultName
	}

	cards := make([]domain.Card, len(docs))
	for i, doc := range docs {
		cards[i] = e.card(doc)
	}

	sections := make([]domain.Section, 0, len(e.kb.Sections.Items))
	for _, item := range e.kb.Sections.Items {
		section := domain.Section{ID: item.ID, Title: item.Title, Cards: []domain.Card{}}
		for _, card := range cards {
			if e.kb.SectionFor(card.Category) == item.ID {
				section.Cards = append(section.Cards, card)
			}
		}
		if section.Empty() {
			section.EmptyMessage = e.kb.Sections.EmptyMessage
		}
		sections = append(sections, section)
	}

	return domain.PortfolioView{
		StudentName: name,
		About:       e.summarizer.Summarize(docs, name),
		GeneratedAt: now,
		Sections:    sections,
		Cards:       cards,
	}
}

func (e *Engine) card(doc domain.Document) domain.Card {
	date := FormatDate(doc.LastModifiedTime())
	return domain.Card{
		ID:           doc.ID,
		Title:        doc.Name,
		Date:         date,
		ISODate:      FormatISODate(date),
		Category:     doc.Category,
		CategoryName: e.kb.DisplayName(doc.Category),
		Description:  doc.Description,
		Size:         FormatFileSize(doc.Size),
		MimeType:     doc.MimeType,
	}
}
