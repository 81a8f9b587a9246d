package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/kirillkom/portfolio-builder/internal/config"
	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/observability/metrics"
)

func TestPortfolioJSONView(t *testing.T) {
	handler := newTestHandler(config.Config{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/portfolio", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var view domain.PortfolioView
	if err := json.NewDecoder(res.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.StudentName != "Иван Петров" || len(view.Sections) != 4 || len(view.Cards) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestPortfolioPageRendersSections(t *testing.T) {
	handler := newTestHandler(config.Config{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/portfolio", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if got := doc.Find("h1.student-name").Text(); got != "Иван Петров" {
		t.Fatalf("unexpected student name %q", got)
	}
	if about := doc.Find("p.about").Text(); !strings.HasPrefix(about, "Иван Петров. ") {
		t.Fatalf("unexpected about text %q", about)
	}

	var titles []string
	doc.Find("section.portfolio-section h2").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	if strings.Join(titles, ",") != "Образование,Достижения,Проекты,Другое" {
		t.Fatalf("unexpected section order %v", titles)
	}

	education := doc.Find("#section-education article.document-card")
	if education.Length() != 1 {
		t.Fatalf("expected one education card, got %d", education.Length())
	}
	if got := education.Find("time").AttrOr("datetime", ""); got != "2024-05-01" {
		t.Fatalf("unexpected card iso date %q", got)
	}
	if got := education.Find(".card-category").Text(); got != "Образование" {
		t.Fatalf("unexpected card category %q", got)
	}
	if got := doc.Find("#section-achievements .card-category").Text(); got != "Спорт" {
		t.Fatalf("unexpected sports card category %q", got)
	}
	if got := doc.Find("#section-projects p.empty-section").Text(); got != "Нет документов в этом разделе" {
		t.Fatalf("unexpected empty section message %q", got)
	}
}

func TestPortfolioPageThemeAndSectionToggles(t *testing.T) {
	handler := newTestHandler(config.Config{})

	cases := []struct {
		query string
		want  string
	}{
		{query: "", want: "modern-theme"},
		{query: "?theme=dark", want: "dark-theme"},
		{query: "?theme=CLASSIC", want: "classic-theme"},
		{query: "?theme=%22%3E%3Cscript%3E", want: "modern-theme"},
	}
	for _, tc := range cases {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/portfolio"+tc.query, nil))
		doc, err := goquery.NewDocumentFromReader(res.Body)
		if err != nil {
			t.Fatalf("parse html: %v", err)
		}
		container := doc.Find("div.portfolio-container")
		if container.Length() != 1 || !container.HasClass(tc.want) {
			t.Fatalf("theme %q: expected class %s, got %q", tc.query, tc.want, container.AttrOr("class", ""))
		}
	}

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/portfolio", nil))
	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	toggle := doc.Find("#section-education button.section-toggle")
	if toggle.AttrOr("aria-controls", "") != "section-body-education" || toggle.AttrOr("aria-expanded", "") != "true" {
		t.Fatalf("unexpected section toggle %v", toggle.Nodes)
	}
	if doc.Find("#section-body-education article.document-card").Length() != 1 {
		t.Fatalf("cards must sit inside the collapsible section body")
	}
}

func TestPortfolioPageEscapesUserContent(t *testing.T) {
	services := testServices()
	services.Viewer = viewerFake{view: domain.PortfolioView{StudentName: "<script>alert(1)</script>"}}
	handler := NewRouter(config.Config{}, services, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/portfolio", nil))
	if strings.Contains(res.Body.String(), "<script>alert(1)</script>") {
		t.Fatalf("student name was not escaped")
	}
}

func TestExportPortfolioSetsDownloadHeaders(t *testing.T) {
	handler := newTestHandler(config.Config{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/portfolio/export?format=PDF", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}

	disposition := res.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, `attachment; filename="`) || !strings.Contains(disposition, `.pdf"; filename*=UTF-8''`) {
		t.Fatalf("unexpected content disposition %q", disposition)
	}
	fallback := disposition[len(`attachment; filename="`):strings.Index(disposition, `"; filename*`)]
	for _, r := range fallback {
		if r > 127 {
			t.Fatalf("fallback file name must be ASCII, got %q", fallback)
		}
	}
	if !strings.HasSuffix(disposition, "%D0%BF%D0%BE%D1%80%D1%82%D1%84%D0%BE%D0%BB%D0%B8%D0%BE_%D0%98%D0%B2%D0%B0%D0%BD_%D0%9F%D0%B5%D1%82%D1%80%D0%BE%D0%B2_2024-05-01.pdf") {
		t.Fatalf("unexpected encoded name in %q", disposition)
	}
	if res.Body.String() != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", res.Body.String())
	}
}

func TestExportPortfolioFormats(t *testing.T) {
	handler := newTestHandler(config.Config{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/portfolio/export?format=xlsx", nil))
	if ct := res.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected xlsx content type %q", ct)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/portfolio/export?format=docx", nil))
	if res.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for unknown format, got %d", res.Code)
	}
}

func TestExportFailureIsCountedInMetrics(t *testing.T) {
	services := testServices()
	services.Exporter = exporterFake{err: domain.WrapError(domain.ErrPersistence, "export", errors.New("boom"))}
	httpMetrics := metrics.NewHTTPServerMetrics("api")
	handler := NewRouter(config.Config{}, services, httpMetrics).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/portfolio/export", nil))
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}

	scrape := httptest.NewRecorder()
	handler.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `portfolio_export_requests_total{format="pdf",service="api",status="error"} 1`
	if !strings.Contains(scrape.Body.String(), want) {
		t.Fatalf("expected %s in metrics output", want)
	}
}

func TestContentDispositionFallsBackForEmptySlug(t *testing.T) {
	got := contentDisposition("!!!.xlsx")
	if !strings.HasPrefix(got, `attachment; filename="portfolio.xlsx"`) {
		t.Fatalf("unexpected disposition %q", got)
	}
}
