package httpadapter

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/portfolio-builder/internal/config"
	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/portfolio"
)

type ingestFake struct {
	gotFiles   []domain.UploadFile
	gotStudent string
	report     domain.UploadReport
	err        error
}

func (f *ingestFake) Upload(_ context.Context, files []domain.UploadFile, studentName string) (domain.UploadReport, error) {
	f.gotFiles = files
	f.gotStudent = studentName
	if f.err != nil {
		return domain.UploadReport{}, f.err
	}
	return f.report, nil
}

type catalogFake struct {
	data    domain.PortfolioData
	err     error
	removed []string
	cleared bool
}

func (f *catalogFake) List(context.Context) (domain.PortfolioData, error) {
	return f.data, f.err
}

func (f *catalogFake) Remove(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, id)
	return nil
}

func (f *catalogFake) Clear(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.cleared = true
	return nil
}

func (f *catalogFake) SetStudentName(_ context.Context, name string) (domain.PortfolioData, error) {
	if f.err != nil {
		return domain.PortfolioData{}, f.err
	}
	f.data.StudentName = name
	return f.data, nil
}

type viewerFake struct {
	view domain.PortfolioView
	err  error
}

func (f viewerFake) View(context.Context) (domain.PortfolioView, error) {
	return f.view, f.err
}

type exporterFake struct {
	body     string
	filename string
	err      error
}

func (f exporterFake) Export(_ context.Context, format domain.ExportFormat, w io.Writer) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.WriteString(w, f.body); err != nil {
		return "", err
	}
	return f.filename + "." + string(format), nil
}

func testServices() Services {
	return Services{
		Ingestor: &ingestFake{},
		Catalog:  &catalogFake{},
		Viewer:   viewerFake{view: sampleView()},
		Exporter: exporterFake{body: "%PDF-1.4", filename: "портфолио_Иван_Петров_2024-05-01"},
		Analyzer: portfolio.NewEngine(nil, portfolio.NewSeededRandom(1)),
	}
}

func newTestHandler(cfg config.Config) http.Handler {
	return NewRouter(cfg, testServices(), nil).Handler()
}

func sampleView() domain.PortfolioView {
	return portfolio.NewEngine(nil, portfolio.NewSeededRandom(5)).BuildView(domain.PortfolioData{
		StudentName: "Иван Петров",
		Documents: []domain.Document{
			{ID: "a", Name: "диплом_математика.pdf", Size: 2048, MimeType: "application/pdf", LastModified: 1714521600000},
			{ID: "b", Name: "медаль_баскетбол.png", Size: 512, MimeType: "image/png", LastModified: 1714521600000},
		},
	}, "Анонимный пользователь", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}
