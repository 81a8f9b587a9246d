package httpadapter

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
)

func (rt *Router) getPortfolio(w http.ResponseWriter, r *http.Request) {
	view, err := rt.services.Viewer.View(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) portfolioPage(w http.ResponseWriter, r *http.Request) {
	view, err := rt.services.Viewer.View(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := renderPortfolioPage(&buf, view, r.URL.Query().Get("theme")); err != nil {
		writeDomainError(w, r, fmt.Errorf("render portfolio page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (rt *Router) exportPortfolio(w http.ResponseWriter, r *http.Request) {
	format, err := domain.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var buf bytes.Buffer
	filename, err := rt.services.Exporter.Export(r.Context(), format, &buf)
	rt.recorder.RecordExport(string(format), buf.Len(), err)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exportContentType(format))
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func exportContentType(format domain.ExportFormat) string {
	switch format {
	case domain.ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/pdf"
	}
}

// contentDisposition carries an ASCII slug for old clients and the original
// UTF-8 name in filename* (RFC 6266).
func contentDisposition(filename string) string {
	ext := path.Ext(filename)
	fallback := slug.Make(strings.TrimSuffix(filename, ext))
	if fallback == "" {
		fallback = "portfolio"
	}
	encoded := strings.ReplaceAll(url.QueryEscape(filename), "+", "%20")
	return fmt.Sprintf(`attachment; filename="%s%s"; filename*=UTF-8''%s`, fallback, ext, encoded)
}
