package portfolio

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/knowledge"
)

type categoryCount struct {
	category domain.Category
	count    int
}

// Summarizer writes the "about me" paragraph for a set of classified documents.
type Summarizer struct {
	kb  *knowledge.KnowledgeBase
	rnd RandomSource
}

func NewSummarizer(kb *knowledge.KnowledgeBase, rnd RandomSource) *Summarizer {
	if rnd == nil {
		rnd = DefaultRandom()
	}
	return &Summarizer{kb: kb, rnd: rnd}
}

// Summarize renders "<name>. <about> <stats>.". When no category has a stats
// phrase the trailing stats clause is omitted and the text ends with the about
// sentence.
func (s *Summarizer) Summarize(docs []domain.Document, studentName string) string {
	tally := s.tally(docs)

	about := pick(s.rnd, s.kb.Summary.About)
	about = strings.ReplaceAll(about, "{areas}", strings.Join(s.topAreas(tally), s.kb.Summary.Conjunction))

	stats := make([]string, 0, len(tally))
	for _, tc := range tally {
		phrase, ok := s.kb.Summary.Stats[tc.category]
		if !ok || phrase == "" {
			continue
		}
		stats = append(stats, strings.ReplaceAll(phrase, "{count}", strconv.Itoa(tc.count)))
	}

	name := strings.TrimSpace(studentName)
	if name == "" {
		name = s.kb.Summary.DefaultName
	}

	if len(stats) == 0 {
		return name + ". " + about
	}
	return name + ". " + about + " " + strings.Join(stats, ", ") + "."
}

// tally counts documents per category in first-seen order.
func (s *Summarizer) tally(docs []domain.Document) []categoryCount {
	index := make(map[domain.Category]int)
	var out []categoryCount
	for _, doc := range docs {
		category := doc.Category
		if category == "" {
			category = s.kb.Fallback.Category
		}
		i, ok := index[category]
		if !ok {
			i = len(out)
			index[category] = i
			out = append(out, categoryCount{category: category})
		}
		out[i].count++
	}
	return out
}

func (s *Summarizer) topAreas(tally []categoryCount) []string {
	ranked := make([]categoryCount, len(tally))
	copy(ranked, tally)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})
	if len(ranked) > s.kb.Summary.Top {
		ranked = ranked[:s.kb.Summary.Top]
	}

	areas := make([]string, 0, len(ranked))
	for _, tc := range ranked {
		areas = append(areas, knowledge.Fold(s.kb.Label(tc.category)))
	}
	return areas
}
