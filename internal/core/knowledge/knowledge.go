// Package knowledge holds the static tables the portfolio engine works from:
// the category taxonomy, description templates, filler vocabularies and the
// summary phrases. A KnowledgeBase is built once and only read afterwards.
package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
)

//go:embed knowledge.yaml
var embeddedYAML []byte

type Category struct {
	ID          domain.Category `yaml:"id"`
	Label       string          `yaml:"label"`
	DisplayName string          `yaml:"display_name"`
	Keywords    []string        `yaml:"keywords"`
}

type Fallback struct {
	Category    domain.Category `yaml:"category"`
	Label       string          `yaml:"label"`
	DisplayName string          `yaml:"display_name"`
}

// Heuristic applies when no keyword matched: the folded name must end with
// Suffix (when set) and contain at least one of Contains.
type Heuristic struct {
	Category domain.Category `yaml:"category"`
	Suffix   string          `yaml:"suffix"`
	Contains []string        `yaml:"contains"`
}

type DescriptionTemplate struct {
	Trigger  string `yaml:"trigger"`
	Template string `yaml:"template"`
}

type GenericDescription struct {
	Trigger string `yaml:"trigger"`
	Use     string `yaml:"use"`
}

// Placeholder describes how one {name} token is resolved. Pick draws one value
// uniformly from the union of the listed vocabularies, Join draws one value from
// each listed vocabulary and joins them with a space, Derive names a value
// computed from the file name.
type Placeholder struct {
	Pick   []string `yaml:"pick"`
	Join   []string `yaml:"join"`
	Derive string   `yaml:"derive"`
}

type TopicRule struct {
	MinRunes int    `yaml:"min_runes"`
	Fallback string `yaml:"fallback"`
}

type Summary struct {
	DefaultName string                     `yaml:"default_name"`
	Conjunction string                     `yaml:"conjunction"`
	Top         int                        `yaml:"top"`
	About       []string                   `yaml:"about"`
	Stats       map[domain.Category]string `yaml:"stats"`
}

type Section struct {
	ID         domain.SectionID  `yaml:"id"`
	Title      string            `yaml:"title"`
	Categories []domain.Category `yaml:"categories"`
	Default    bool              `yaml:"default"`
}

type Sections struct {
	EmptyMessage string    `yaml:"empty_message"`
	Items        []Section `yaml:"items"`
}

type Export struct {
	FilePrefix   string   `yaml:"file_prefix"`
	Title        string   `yaml:"title"`
	Meta         string   `yaml:"meta"`
	Sheet        string   `yaml:"sheet"`
	SummaryLabel string   `yaml:"summary_label"`
	Columns      []string `yaml:"columns"`
}

// KnowledgeBase must not be modified once returned by Parse or Load.
type KnowledgeBase struct {
	Categories          []Category             `yaml:"categories"`
	Fallback            Fallback               `yaml:"fallback"`
	Heuristics          []Heuristic            `yaml:"heuristics"`
	Descriptions        []DescriptionTemplate  `yaml:"descriptions"`
	GenericDescriptions []GenericDescription   `yaml:"generic_descriptions"`
	FallbackDescription string                 `yaml:"fallback_description"`
	Vocabularies        map[string][]string    `yaml:"vocabularies"`
	Placeholders        map[string]Placeholder `yaml:"placeholders"`
	Topic               TopicRule              `yaml:"topic"`
	Summary             Summary                `yaml:"summary"`
	Sections            Sections               `yaml:"sections"`
	Export              Export                 `yaml:"export"`

	categoryIndex map[domain.Category]int
	templateIndex map[string]string
}

var defaultOnce = sync.OnceValues(func() (*KnowledgeBase, error) {
	return Parse(embeddedYAML)
})

// Default returns the knowledge base compiled into the binary.
func Default() *KnowledgeBase {
	kb, err := defaultOnce()
	if err != nil {
		panic(fmt.Sprintf("knowledge: embedded knowledge base is invalid: %v", err))
	}
	return kb
}

// Load reads an override file, or returns the embedded tables when path is empty.
func Load(path string) (*KnowledgeBase, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base %s: %w", path, err)
	}
	kb, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse knowledge base %s: %w", path, err)
	}
	return kb, nil
}

func Parse(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := kb.normalize(); err != nil {
		return nil, err
	}
	return &kb, nil
}

// Fold is the single case-folding rule shared by keywords and file names.
func Fold(s string) string {
	return cases.Lower(language.Russian).String(s)
}

func (kb *KnowledgeBase) normalize() error {
	if len(kb.Categories) == 0 {
		return errors.New("no categories defined")
	}
	if kb.Fallback.Category == "" {
		kb.Fallback.Category = domain.CategoryOther
	}

	kb.categoryIndex = make(map[domain.Category]int, len(kb.Categories))
	for i := range kb.Categories {
		cat := &kb.Categories[i]
		if cat.ID == "" {
			return fmt.Errorf("category #%d has no id", i)
		}
		if _, dup := kb.categoryIndex[cat.ID]; dup {
			return fmt.Errorf("duplicate category %q", cat.ID)
		}
		kb.categoryIndex[cat.ID] = i
		for j, kw := range cat.Keywords {
			cat.Keywords[j] = Fold(kw)
		}
	}

	for i := range kb.Heuristics {
		h := &kb.Heuristics[i]
		h.Suffix = Fold(h.Suffix)
		for j, s := range h.Contains {
			h.Contains[j] = Fold(s)
		}
	}

	kb.templateIndex = make(map[string]string, len(kb.Descriptions))
	for i := range kb.Descriptions {
		d := &kb.Descriptions[i]
		d.Trigger = Fold(d.Trigger)
		if d.Trigger == "" || d.Template == "" {
			return fmt.Errorf("description #%d needs a trigger and a template", i)
		}
		if _, seen := kb.templateIndex[d.Trigger]; !seen {
			kb.templateIndex[d.Trigger] = d.Template
		}
	}
	for i := range kb.GenericDescriptions {
		g := &kb.GenericDescriptions[i]
		g.Trigger = Fold(g.Trigger)
		g.Use = Fold(g.Use)
		if _, ok := kb.templateIndex[g.Use]; !ok {
			return fmt.Errorf("generic description %q refers to unknown template %q", g.Trigger, g.Use)
		}
	}

	for name, ph := range kb.Placeholders {
		for _, vocab := range append(append([]string{}, ph.Pick...), ph.Join...) {
			if len(kb.Vocabularies[vocab]) == 0 {
				return fmt.Errorf("placeholder %q refers to empty vocabulary %q", name, vocab)
			}
		}
		if len(ph.Pick) == 0 && len(ph.Join) == 0 && ph.Derive == "" {
			return fmt.Errorf("placeholder %q has no source", name)
		}
	}

	if kb.FallbackDescription == "" {
		return errors.New("fallback description is empty")
	}
	if kb.Topic.MinRunes <= 0 {
		kb.Topic.MinRunes = 4
	}
	if len(kb.Summary.About) == 0 {
		return errors.New("summary has no about templates")
	}
	if kb.Summary.DefaultName == "" {
		return errors.New("summary has no default name")
	}
	if kb.Summary.Top <= 0 {
		kb.Summary.Top = 2
	}
	if kb.Export.FilePrefix == "" {
		kb.Export.FilePrefix = "portfolio"
	}
	return nil
}

// Category returns the taxonomy entry for id.
func (kb *KnowledgeBase) Category(id domain.Category) (Category, bool) {
	i, ok := kb.categoryIndex[id]
	if !ok {
		return Category{}, false
	}
	return kb.Categories[i], true
}

// Label is the category description attached by the classifier.
func (kb *KnowledgeBase) Label(id domain.Category) string {
	if cat, ok := kb.Category(id); ok && cat.Label != "" {
		return cat.Label
	}
	return kb.Fallback.Label
}

// DisplayName is the short category name shown on cards and in exports.
func (kb *KnowledgeBase) DisplayName(id domain.Category) string {
	if cat, ok := kb.Category(id); ok && cat.DisplayName != "" {
		return cat.DisplayName
	}
	return kb.Fallback.DisplayName
}

// Template returns the description template registered for a folded trigger.
func (kb *KnowledgeBase) Template(trigger string) (string, bool) {
	tpl, ok := kb.templateIndex[trigger]
	return tpl, ok
}

// SectionFor maps a category to the display section holding its cards.
func (kb *KnowledgeBase) SectionFor(id domain.Category) domain.SectionID {
	fallback := domain.SectionOther
	for _, s := range kb.Sections.Items {
		for _, c := range s.Categories {
			if c == id {
				return s.ID
			}
		}
		if s.Default {
			fallback = s.ID
		}
	}
	return fallback
}
