package domain

import "time"

type Category string

const (
	CategoryEducation    Category = "education"
	CategoryAchievements Category = "achievements"
	CategoryScience      Category = "science"
	CategoryCreative     Category = "creative"
	CategorySports       Category = "sports"
	CategoryOther        Category = "other"
)

type DocumentStatus string

const (
	StatusAccepted  DocumentStatus = "accepted"
	StatusProcessed DocumentStatus = "processed"
)

// Document is one uploaded file descriptor. Raw bytes are never kept.
type Document struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Size                int64          `json:"size"`
	MimeType            string         `json:"type"`
	LastModified        int64          `json:"lastModified"`
	Category            Category       `json:"category,omitempty"`
	CategoryDescription string         `json:"categoryDescription,omitempty"`
	Description         string         `json:"description,omitempty"`
	Status              DocumentStatus `json:"status,omitempty"`
}

// LastModifiedTime converts the millisecond timestamp carried by the upload flow.
func (d Document) LastModifiedTime() time.Time {
	return time.UnixMilli(d.LastModified).UTC()
}

func (d Document) Classified() bool {
	return d.Category != ""
}

type ClassificationResult struct {
	Document   Document `json:"document"`
	Category   Category `json:"category"`
	Confidence int      `json:"-"`
}

// PortfolioData is the single value persisted under the store key.
type PortfolioData struct {
	Documents   []Document `json:"documents"`
	StudentName string     `json:"studentName"`
}

func (p *PortfolioData) IndexOf(id string) int {
	for i := range p.Documents {
		if p.Documents[i].ID == id {
			return i
		}
	}
	return -1
}

type UploadFile struct {
	Name         string
	Size         int64
	MimeType     string
	LastModified time.Time
}

type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// QueueFailure is an accepted record whose "accepted" event could not be
// delivered. The record stays stored.
type QueueFailure struct {
	DocumentID string `json:"id"`
	Name       string `json:"name"`
	Reason     string `json:"reason"`
	Err        error  `json:"-"`
}

type UploadReport struct {
	Accepted  []Document     `json:"accepted"`
	Rejected  []Rejection    `json:"rejected,omitempty"`
	Unqueued  []QueueFailure `json:"unqueued,omitempty"`
	Documents []Document     `json:"documents"`
}
