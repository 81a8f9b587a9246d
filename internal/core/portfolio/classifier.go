package portfolio

import (
	"strings"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/knowledge"
)

// Classifier assigns categories from file names alone. It holds no mutable
// state and never draws random values.
type Classifier struct {
	kb *knowledge.KnowledgeBase
}

func NewClassifier(kb *knowledge.KnowledgeBase) *Classifier {
	return &Classifier{kb: kb}
}

// Classify returns copies of docs with category fields set, in input order.
func (c *Classifier) Classify(docs []domain.Document) []domain.Document {
	out := make([]domain.Document, len(docs))
	for i, doc := range docs {
		out[i] = c.ClassifyDocument(doc).Document
	}
	return out
}

func (c *Classifier) ClassifyDocument(doc domain.Document) domain.ClassificationResult {
	name := knowledge.Fold(doc.Name)

	var (
		best       domain.Category
		confidence int
	)
	for _, cat := range c.kb.Categories {
		// strict comparison keeps the earlier category on ties
		if n := countMatches(name, cat.Keywords); n > confidence {
			best, confidence = cat.ID, n
		}
	}
	if confidence == 0 {
		best = c.heuristic(name)
	}

	classified := doc
	classified.Category = best
	classified.CategoryDescription = c.kb.Label(best)
	return domain.ClassificationResult{
		Document:   classified,
		Category:   best,
		Confidence: confidence,
	}
}

func (c *Classifier) heuristic(name string) domain.Category {
	for _, h := range c.kb.Heuristics {
		if h.Suffix != "" && !strings.HasSuffix(name, h.Suffix) {
			continue
		}
		if containsAny(name, h.Contains) {
			return h.Category
		}
	}
	return c.kb.Fallback.Category
}

func countMatches(name string, keywords []string) int {
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		if strings.Contains(name, kw) {
			seen[kw] = struct{}{}
		}
	}
	return len(seen)
}

func containsAny(name string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(name, n) {
			return true
		}
	}
	return false
}
