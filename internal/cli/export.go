package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/usecase"
	"github.com/kirillkom/portfolio-builder/internal/infrastructure/export/pdf"
	"github.com/kirillkom/portfolio-builder/internal/infrastructure/export/xlsx"
)

type viewFunc func(ctx context.Context) (domain.PortfolioView, error)

func (f viewFunc) View(ctx context.Context) (domain.PortfolioView, error) { return f(ctx) }

func newExportCommand(opts *options, s *session) *cobra.Command {
	var (
		format  string
		student string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "export --format pdf|xlsx [--student NAME] [--out DIR] FILE...",
		Short: "Build a portfolio from local files and export it",
		Long: `Reads the size, modification time and type of each FILE, classifies and describes it,
and writes the portfolio to DIR. Files the upload rules would reject are skipped, and
files past UPLOAD_MAX_FILES are skipped in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := domain.ParseExportFormat(format)
			if err != nil {
				return err
			}

			policy := usecase.UploadPolicy{MaxFiles: s.cfg.UploadMaxFiles, MaxFileBytes: s.cfg.UploadMaxFileBytes}
			data, skipped, err := collectDocuments(args, policy)
			if err != nil {
				return err
			}
			data.StudentName = student
			for _, rejection := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", rejection.Name, rejection.Reason)
			}

			pdfRenderer, err := pdf.New(s.kb.Export, s.cfg.ExportFontPath, s.cfg.ExportFontBoldPath)
			if err != nil {
				return err
			}
			now := time.Now()
			viewer := viewFunc(func(context.Context) (domain.PortfolioView, error) {
				return s.engine.BuildView(data, s.cfg.DefaultStudentName, now), nil
			})
			exporter := usecase.NewExportUseCase(viewer, s.kb.Export.FilePrefix, pdfRenderer, xlsx.New(s.kb.Export))

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			tmp, err := os.CreateTemp(outDir, ".portfolio-*")
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer os.Remove(tmp.Name())

			name, err := exporter.Export(cmd.Context(), exportFormat, tmp)
			if closeErr := tmp.Close(); err == nil && closeErr != nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			target := filepath.Join(outDir, name)
			if err := os.Rename(tmp.Name(), target); err != nil {
				return fmt.Errorf("move export into place: %w", err)
			}

			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"file":      target,
					"documents": len(data.Documents),
					"skipped":   skipped,
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), target)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", string(domain.ExportPDF), "Export format: pdf or xlsx")
	cmd.Flags().StringVar(&student, "student", "", "Student name shown in the portfolio")
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory to write the export to")
	return cmd
}

// collectDocuments turns local files into upload descriptors, applying the
// same size, type and count rules as the upload API.
func collectDocuments(paths []string, policy usecase.UploadPolicy) (domain.PortfolioData, []domain.Rejection, error) {
	var (
		data    domain.PortfolioData
		skipped []domain.Rejection
	)
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return domain.PortfolioData{}, nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			return domain.PortfolioData{}, nil, fmt.Errorf("%s is a directory", path)
		}

		name := filepath.Base(path)
		mimeType := detectMimeType(name)
		switch {
		case policy.MaxFileBytes > 0 && info.Size() > policy.MaxFileBytes:
			skipped = append(skipped, domain.Rejection{Name: name, Reason: usecase.RejectTooLarge})
			continue
		case !usecase.AllowedMimeType(mimeType):
			skipped = append(skipped, domain.Rejection{Name: name, Reason: usecase.RejectUnsupported})
			continue
		case policy.MaxFiles > 0 && len(data.Documents) >= policy.MaxFiles:
			skipped = append(skipped, domain.Rejection{Name: name, Reason: usecase.RejectOverLimit})
			continue
		}

		data.Documents = append(data.Documents, domain.Document{
			ID:           uuid.NewString(),
			Name:         name,
			Size:         info.Size(),
			MimeType:     mimeType,
			LastModified: info.ModTime().UnixMilli(),
			Status:       domain.StatusAccepted,
		})
	}
	return data, skipped, nil
}

// Word formats are missing from the built-in MIME table on most systems.
var wordTypes = map[string]string{
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func detectMimeType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := wordTypes[ext]; ok {
		return t
	}
	return mime.TypeByExtension(ext)
}
