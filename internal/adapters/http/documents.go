package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
)

const multipartMemory = 8 << 20

func (rt *Router) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}

	now := time.Now().UTC()
	lastModified := r.MultipartForm.Value["last_modified"]
	files := make([]domain.UploadFile, 0, len(headers))
	for i, fh := range headers {
		files = append(files, domain.UploadFile{
			Name:         fh.Filename,
			Size:         fh.Size,
			MimeType:     fh.Header.Get("Content-Type"),
			LastModified: lastModifiedAt(lastModified, i, now),
		})
	}

	report, err := rt.services.Ingestor.Upload(r.Context(), files, firstValue(r.MultipartForm.Value["student_name"]))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	reasons := make([]string, 0, len(report.Rejected))
	for _, rejection := range report.Rejected {
		slog.Warn("upload_rejected",
			"request_id", requestIDFromContext(r.Context()),
			"file", rejection.Name,
			"reason", rejection.Reason,
		)
		reasons = append(reasons, rejection.Reason)
	}
	for _, failure := range report.Unqueued {
		slog.Warn("upload_not_queued",
			"request_id", requestIDFromContext(r.Context()),
			"document_id", failure.DocumentID,
			"error", failure.Err,
		)
	}
	rt.recorder.RecordUpload(len(report.Accepted), reasons)

	writeJSON(w, http.StatusAccepted, report)
}

// lastModifiedAt reads the i-th millisecond timestamp sent next to the files.
func lastModifiedAt(values []string, i int, fallback time.Time) time.Time {
	if i >= len(values) {
		return fallback
	}
	ms, err := strconv.ParseInt(values[i], 10, 64)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.UnixMilli(ms).UTC()
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	data, err := rt.services.Catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (rt *Router) clearDocuments(w http.ResponseWriter, r *http.Request) {
	if err := rt.services.Catalog.Clear(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) removeDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("document_id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}
	if err := rt.services.Catalog.Remove(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type studentRequest struct {
	StudentName string `json:"student_name"`
}

func (rt *Router) setStudentName(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := rt.contract.decodeBody(r, "StudentRequest", &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	data, err := rt.services.Catalog.SetStudentName(r.Context(), req.StudentName)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
