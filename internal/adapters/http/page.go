package httpadapter

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/portfolio"
)

//go:embed templates/portfolio.html
var templateFS embed.FS

const (
	cardTitleRunes = 40
	defaultTheme   = "modern"
)

var pageThemes = map[string]struct{}{
	"modern":  {},
	"classic": {},
	"minimal": {},
	"dark":    {},
}

var portfolioTemplate = template.Must(
	template.New("portfolio.html").
		Funcs(template.FuncMap{
			"shortName": func(name string) string { return portfolio.TruncateFileName(name, cardTitleRunes) },
		}).
		ParseFS(templateFS, "templates/portfolio.html"),
)

type portfolioPageData struct {
	domain.PortfolioView
	GeneratedDate string
	Theme         string
}

// pageTheme maps the ?theme= value to a known theme; anything else gets the default.
func pageTheme(raw string) string {
	theme := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := pageThemes[theme]; ok {
		return theme
	}
	return defaultTheme
}

func renderPortfolioPage(w io.Writer, view domain.PortfolioView, theme string) error {
	return portfolioTemplate.Execute(w, portfolioPageData{
		PortfolioView: view,
		GeneratedDate: portfolio.FormatDate(view.GeneratedAt),
		Theme:         pageTheme(theme),
	})
}
