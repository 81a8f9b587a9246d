package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
	"github.com/kirillkom/portfolio-builder/internal/core/ports"
)

const (
	RejectTooLarge    = "слишком большой"
	RejectUnsupported = "неподдерживаемый формат"
	RejectOverLimit   = "превышен лимит файлов"

	NotQueued = "не поставлен в очередь обработки"
)

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/gif":          {},
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

type UploadPolicy struct {
	MaxFiles     int
	MaxFileBytes int64
}

func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{MaxFiles: 10, MaxFileBytes: 5 << 20}
}

type IngestUseCase struct {
	repo   ports.PortfolioRepository
	queue  ports.MessageQueue
	policy UploadPolicy
	newID  func() string
	now    func() time.Time
}

func NewIngestUseCase(repo ports.PortfolioRepository, queue ports.MessageQueue, policy UploadPolicy) *IngestUseCase {
	defaults := DefaultUploadPolicy()
	if policy.MaxFiles <= 0 {
		policy.MaxFiles = defaults.MaxFiles
	}
	if policy.MaxFileBytes <= 0 {
		policy.MaxFileBytes = defaults.MaxFileBytes
	}
	return &IngestUseCase{
		repo:   repo,
		queue:  queue,
		policy: policy,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

func (uc *IngestUseCase) Upload(ctx context.Context, files []domain.UploadFile, studentName string) (domain.UploadReport, error) {
	if len(files) > uc.policy.MaxFiles {
		return domain.UploadReport{}, domain.WrapError(
			domain.ErrValidation,
			"upload documents",
			fmt.Errorf("%d files in one batch, at most %d allowed", len(files), uc.policy.MaxFiles),
		)
	}

	var report domain.UploadReport
	candidates := make([]domain.Document, 0, len(files))
	for _, f := range files {
		if reason, ok := uc.check(f); !ok {
			report.Rejected = append(report.Rejected, domain.Rejection{Name: f.Name, Reason: reason})
			continue
		}
		candidates = append(candidates, uc.newDocument(f))
	}

	var kept, overflow []domain.Document
	_, err := uc.repo.Update(ctx, func(data *domain.PortfolioData) error {
		room := max(uc.policy.MaxFiles-len(data.Documents), 0)
		kept, overflow = candidates, nil
		if len(kept) > room {
			kept, overflow = candidates[:room], candidates[room:]
		}
		data.Documents = append(data.Documents, kept...)
		if name := strings.TrimSpace(studentName); name != "" {
			data.StudentName = name
		}
		return nil
	})
	if err != nil {
		return domain.UploadReport{}, fmt.Errorf("save uploaded documents: %w", err)
	}
	for _, doc := range overflow {
		report.Rejected = append(report.Rejected, domain.Rejection{Name: doc.Name, Reason: RejectOverLimit})
	}

	// The records are stored at this point; a failed event leaves them
	// unprocessed, and the view classifies unprocessed records on the fly.
	for _, doc := range kept {
		if err := uc.queue.PublishDocumentAccepted(ctx, doc.ID); err != nil {
			report.Unqueued = append(report.Unqueued, domain.QueueFailure{
				DocumentID: doc.ID,
				Name:       doc.Name,
				Reason:     NotQueued,
				Err:        err,
			})
		}
	}

	data, err := uc.repo.Load(ctx)
	if err != nil {
		return domain.UploadReport{}, fmt.Errorf("reload documents: %w", err)
	}
	report.Documents = data.Documents
	report.Accepted = make([]domain.Document, 0, len(kept))
	for _, doc := range kept {
		if i := data.IndexOf(doc.ID); i >= 0 {
			doc = data.Documents[i]
		}
		report.Accepted = append(report.Accepted, doc)
	}
	return report, nil
}

func (uc *IngestUseCase) check(f domain.UploadFile) (string, bool) {
	if f.Size > uc.policy.MaxFileBytes {
		return RejectTooLarge, false
	}
	if !AllowedMimeType(f.MimeType) {
		return RejectUnsupported, false
	}
	return "", true
}

func (uc *IngestUseCase) newDocument(f domain.UploadFile) domain.Document {
	modified := f.LastModified
	if modified.IsZero() {
		modified = uc.now()
	}
	return domain.Document{
		ID:           uc.newID(),
		Name:         f.Name,
		Size:         f.Size,
		MimeType:     f.MimeType,
		LastModified: modified.UnixMilli(),
		Status:       domain.StatusAccepted,
	}
}

// AllowedMimeType accepts the fixed document types and any raster image type.
func AllowedMimeType(mimeType string) bool {
	base, _, _ := strings.Cut(mimeType, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	if _, ok := allowedMimeTypes[base]; ok {
		return true
	}
	return strings.HasPrefix(base, "image/") && base != "image/svg+xml" && len(base) > len("image/")
}
