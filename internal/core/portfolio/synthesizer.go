package portfolio

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/portfolio-builder/internal/core/knowledge"
)

const deriveTopic = "topic"

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Synthesizer fabricates a human-readable description from a file name.
type Synthesizer struct {
	kb  *knowledge.KnowledgeBase
	rnd RandomSource
}

func NewSynthesizer(kb *knowledge.KnowledgeBase, rnd RandomSource) *Synthesizer {
	if rnd == nil {
		rnd = DefaultRandom()
	}
	return &Synthesizer{kb: kb, rnd: rnd}
}

// Describe never returns an empty string. The first trigger in table order
// wins; there is no ranking by specificity.
func (s *Synthesizer) Describe(name string) string {
	folded := knowledge.Fold(name)

	for _, d := range s.kb.Descriptions {
		if strings.Contains(folded, d.Trigger) {
			return s.fill(d.Template, name)
		}
	}
	for _, g := range s.kb.GenericDescriptions {
		if g.Trigger == "" || !strings.Contains(folded, g.Trigger) {
			continue
		}
		if tpl, ok := s.kb.Template(g.Use); ok {
			return s.fill(tpl, name)
		}
	}
	return s.kb.FallbackDescription + name
}

// fill resolves placeholders left to right so a seeded source yields the same text.
func (s *Synthesizer) fill(template, name string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := token[1 : len(token)-1]
		ph, ok := s.kb.Placeholders[key]
		if !ok {
			return token
		}
		return s.resolve(ph, name)
	})
}

func (s *Synthesizer) resolve(ph knowledge.Placeholder, name string) string {
	switch {
	case ph.Derive == deriveTopic:
		return ExtractTopic(name, s.kb.Topic)
	case len(ph.Join) > 0:
		parts := make([]string, 0, len(ph.Join))
		for _, vocab := range ph.Join {
			parts = append(parts, pick(s.rnd, s.kb.Vocabularies[vocab]))
		}
		return strings.Join(parts, " ")
	case len(ph.Pick) > 0:
		var pool []string
		for _, vocab := range ph.Pick {
			pool = append(pool, s.kb.Vocabularies[vocab]...)
		}
		return pick(s.rnd, pool)
	default:
		return ""
	}
}

// ExtractTopic takes the second and third meaningful words of the file stem.
func ExtractTopic(name string, rule knowledge.TopicRule) string {
	words := strings.FieldsFunc(stripExtension(name), isTopicSeparator)

	kept := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= rule.MinRunes {
			kept = append(kept, w)
		}
	}
	if len(kept) > 2 {
		return kept[1] + " " + kept[2]
	}
	return rule.Fallback
}

func stripExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 || strings.ContainsRune(name[i+1:], '/') {
		return name
	}
	return name[:i]
}

func isTopicSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '_' || r == '-' || r == '.'
}

func pick(rnd RandomSource, values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[rnd.IntN(len(values))]
}
