package httpadapter

import (
	"net/http"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
)

type classifyRequest struct {
	Names []string `json:"names"`
}

type classifiedName struct {
	Name                string          `json:"name"`
	Category            domain.Category `json:"category"`
	CategoryDescription string          `json:"categoryDescription"`
}

type describeRequest struct {
	Name string `json:"name"`
}

type summarizeRequest struct {
	StudentName string   `json:"student_name"`
	Names       []string `json:"names"`
}

func (rt *Router) classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := rt.contract.decodeBody(r, "ClassifyRequest", &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	docs := rt.services.Analyzer.ClassifyNames(req.Names)
	out := make([]classifiedName, 0, len(docs))
	for _, doc := range docs {
		rt.recorder.RecordClassified(string(doc.Category))
		out = append(out, classifiedName{
			Name:                doc.Name,
			Category:            doc.Category,
			CategoryDescription: doc.CategoryDescription,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (rt *Router) describe(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := rt.contract.decodeBody(r, "DescribeRequest", &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"name":        req.Name,
		"description": rt.services.Analyzer.Describe(req.Name),
	})
}

func (rt *Router) summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := rt.contract.decodeBody(r, "SummarizeRequest", &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	docs := rt.services.Analyzer.ClassifyNames(req.Names)
	writeJSON(w, http.StatusOK, map[string]string{
		"summary": rt.services.Analyzer.Summarize(docs, req.StudentName),
	})
}
