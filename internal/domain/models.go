package domain

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// Content is an opaque source of a document's bytes.
type Content interface {
	Open() (io.ReadCloser, error)
}

// BytesContent holds a document fully in memory.
type BytesContent []byte

func (b BytesContent) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// FileContent reads a document from a path on disk.
type FileContent string

func (f FileContent) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

// CandidateFile is a validated document queued for submission.
type CandidateFile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	MimeType  string    `json:"mime_type"`
	Content   Content   `json:"-"`
	AddedAt   time.Time `json:"added_at"`
}

// ContactInfo is enrichment data attached to a record. Empty fields are absent.
type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
	PlaceID string `json:"place_id,omitempty"`
	Name    string `json:"name,omitempty"`
}

// ExtractedRecord is the canonical form of one exhibitor entry.
// Contact is nil when no enrichment ran for the record, and non-nil with empty
// fields when enrichment ran but found nothing.
type ExtractedRecord struct {
	CompanyName string       `json:"company_name"`
	BoothLabel  string       `json:"booth,omitempty"`
	Size        string       `json:"size,omitempty"`
	Contact     *ContactInfo `json:"contact,omitempty"`
}

// HasEmail reports whether the record carries an enrichment email.
func (r *ExtractedRecord) HasEmail() bool {
	return r.Contact != nil && r.Contact.Email != ""
}

// ExtractionResult holds the records extracted from one source document.
// TotalRecordsReported is the count declared by the service and may differ
// from len(Records).
type ExtractionResult struct {
	SourceFileName        string            `json:"source_file_name"`
	Records               []ExtractedRecord `json:"records"`
	TotalRecordsReported  int               `json:"total_records_reported"`
	ExtractionMethod      string            `json:"extraction_method,omitempty"`
	ProcessingTimeSeconds *float64          `json:"processing_time_seconds,omitempty"`
	EnrichmentTimeSeconds *float64          `json:"enrichment_time_seconds,omitempty"`
	ExternalAPICallCount  *int              `json:"external_api_call_count,omitempty"`
	DroppedRecords        int               `json:"dropped_records"`
}

// DerivedStats are aggregate counts over a set of records.
type DerivedStats struct {
	Total         int `json:"total"`
	EnrichedCount int `json:"enriched_count"`
	WithEmail     int `json:"with_email"`
	WithPhone     int `json:"with_phone"`
	WithWebsite   int `json:"with_website"`
	WithAddress   int `json:"with_address"`
}
