package portfolio

import (
	"regexp"
	"strings"
	"testing"

	"github.com/kirillkom/portfolio-builder/internal/core/knowledge"
)

func alt(values ...[]string) string {
	var all []string
	for _, vs := range values {
		for _, v := range vs {
			all = append(all, regexp.QuoteMeta(v))
		}
	}
	return "(" + strings.Join(all, "|") + ")"
}

func vocab(name string) []string {
	return knowledge.Default().Vocabularies[name]
}

func TestDescribeNeverEmpty(t *testing.T) {
	s := NewSynthesizer(knowledge.Default(), NewSeededRandom(1))
	for _, name := range []string{"", " ", ".", "...", "x", "🙂.png", "ДИПЛОМ"} {
		if got := s.Describe(name); got == "" {
			t.Fatalf("Describe(%q) returned empty string", name)
		}
	}
}

func TestDescribeFallbackKeepsOriginalName(t *testing.T) {
	s := NewSynthesizer(knowledge.Default(), nil)

	if got := s.Describe("Scan_001.PNG"); got != "Документ, подтверждающий достижение: Scan_001.PNG" {
		t.Fatalf("unexpected fallback description %q", got)
	}
	if got := s.Describe(""); got != "Документ, подтверждающий достижение: " {
		t.Fatalf("unexpected fallback for empty name %q", got)
	}
}

func TestDescribeTemplatesResolveFromVocabularies(t *testing.T) {
	s := NewSynthesizer(knowledge.Default(), DefaultRandom())

	cases := map[string]*regexp.Regexp{}
	cases["Аттестат_2024.pdf"] = regexp.MustCompile(`^Аттестат о среднем образовании с оценками$`)
	cases["диплом.jpg"] = regexp.MustCompile(`^Диплом об окончании ` + alt(vocab("institutions")) + `$`)
	cases["Сертификат.png"] = regexp.MustCompile(`^Сертификат ` + alt(vocab("roles")) + ` ` +
		alt(vocab("levels")) + ` ` + alt(vocab("event_kinds")) + `$`)
	cases["грамота.pdf"] = regexp.MustCompile(`^Грамота за ` + alt(vocab("achievements")) + ` в ` +
		alt(vocab("subjects"), vocab("activities")) + `$`)
	cases["Благодарность.pdf"] = regexp.MustCompile(`^Благодарность за ` + alt(vocab("contributions")) + `$`)
	cases["проект_робототехника_умный_дом.pdf"] = regexp.MustCompile(`^` + alt(vocab("project_kinds")) +
		` проект на тему "робототехника умный"$`)
	cases["олимпиада.png"] = regexp.MustCompile(`^Диплом ` + alt(vocab("olympiad_levels")) + ` олимпиады по ` +
		alt(vocab("subjects")) + `$`)

	for name, pattern := range cases {
		for i := 0; i < 200; i++ {
			if got := s.Describe(name); !pattern.MatchString(got) {
				t.Fatalf("Describe(%q) = %q does not match %s", name, got, pattern)
			}
		}
	}
}

func TestDescribeGenericTemplates(t *testing.T) {
	s := NewSynthesizer(knowledge.Default(), NewSeededRandom(7))

	olympiad := regexp.MustCompile(`^Диплом ` + alt(vocab("olympiad_levels")) + ` олимпиады по ` + alt(vocab("subjects")) + `$`)
	if got := s.Describe("Олимпиады_по_химии.jpg"); !olympiad.MatchString(got) {
		t.Fatalf("expected generic olympiad template, got %q", got)
	}
}

func TestDescribeFirstTriggerWins(t *testing.T) {
	s := NewSynthesizer(knowledge.Default(), NewSeededRandom(3))

	got := s.Describe("диплом_проект_олимпиада.pdf")
	if !strings.HasPrefix(got, "Диплом об окончании ") {
		t.Fatalf("expected diploma template to win, got %q", got)
	}
}

func TestDescribeDeterministicWithSeed(t *testing.T) {
	kb := knowledge.Default()
	names := []string{"грамота.pdf", "сертификат.png", "проект_a.docx", "олимпиада.jpg", "диплом.pdf"}

	first := NewSynthesizer(kb, NewSeededRandom(42))
	second := NewSynthesizer(kb, NewSeededRandom(42))
	for round := 0; round < 20; round++ {
		for _, name := range names {
			a, b := first.Describe(name), second.Describe(name)
			if a != b {
				t.Fatalf("round %d: seeded outputs differ for %q: %q vs %q", round, name, a, b)
			}
		}
	}

	for i := 0; i < 10; i++ {
		got := NewSynthesizer(kb, NewSeededRandom(99)).Describe("грамота.pdf")
		want := NewSynthesizer(kb, NewSeededRandom(99)).Describe("грамота.pdf")
		if got != want {
			t.Fatalf("fresh seeded synthesizers disagree: %q vs %q", got, want)
		}
	}
}

func TestExtractTopic(t *testing.T) {
	rule := knowledge.Default().Topic

	cases := map[string]string{
		"Научная работа по физике.docx":  "работа физике",
		"one-two_three.four five.txt":    "four five",
		"dir.v2/file_name_with_words":    "name with",
		"проект_робототехника_умный_дом": "робототехника умный",
		"short.pdf":                      "интересная тема",
		".hidden":                        "интересная тема",
		"":                               "интересная тема",
		"alpha beta":                     "интересная тема",
	}
	for name, want := range cases {
		if got := ExtractTopic(name, rule); got != want {
			t.Fatalf("ExtractTopic(%q) = %q, want %q", name, got, want)
		}
	}
}
