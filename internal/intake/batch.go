// Package intake validates and deduplicates documents before submission.
package intake

import (
	"fmt"
	"log"
	"mime"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"boothscan/internal/domain"
)

// DefaultMaxSizeBytes is the upload limit applied when none is configured (10 MiB).
const DefaultMaxSizeBytes int64 = 10 * 1024 * 1024

// Options configures batch validation.
type Options struct {
	MaxSizeBytes int64
	AcceptedType string
	// SniffContent enables a magic-byte check on candidates with content.
	SniffContent bool
}

// DefaultOptions returns the PDF-only, 10 MiB defaults.
func DefaultOptions() Options {
	return Options{
		MaxSizeBytes: DefaultMaxSizeBytes,
		AcceptedType: domain.ContentTypePDF,
		SniffContent: true,
	}
}

// Candidate is a raw file handle offered for intake.
type Candidate struct {
	Name         string
	Size         int64
	DeclaredType string
	Content      domain.Content
}

// Rejection explains why a candidate was not accepted.
// Err is domain.ErrUnsupportedType or domain.ErrTooLarge.
type Rejection struct {
	FileName string
	Err      error
}

// AddResult is the outcome of one Add call. Duplicates appear in neither list.
type AddResult struct {
	Accepted []domain.CandidateFile
	Rejected []Rejection
}

type dedupKey struct {
	name string
	size int64
}

// Batch is an ordered set of validated files, unique by (name, size).
type Batch struct {
	mu    sync.Mutex
	opts  Options
	files []domain.CandidateFile
}

// NewBatch creates an empty batch. Zero-valued options fall back to defaults.
func NewBatch(opts Options) *Batch {
	def := DefaultOptions()
	if opts.MaxSizeBytes <= 0 {
		opts.MaxSizeBytes = def.MaxSizeBytes
	}
	if opts.AcceptedType == "" {
		opts.AcceptedType = def.AcceptedType
	}
	return &Batch{opts: opts}
}

// Add validates candidates in order and appends the accepted ones.
func (b *Batch) Add(candidates []Candidate) AddResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[dedupKey]struct{}, len(b.files)+len(candidates))
	for i := range b.files {
		seen[dedupKey{b.files[i].Name, b.files[i].SizeBytes}] = struct{}{}
	}

	var res AddResult
	for _, c := range candidates {
		mimeType, err := b.checkType(c)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{FileName: c.Name, Err: err})
			continue
		}
		if c.Size > b.opts.MaxSizeBytes {
			res.Rejected = append(res.Rejected, Rejection{FileName: c.Name, Err: domain.ErrTooLarge})
			continue
		}
		key := dedupKey{c.Name, c.Size}
		if _, dup := seen[key]; dup {
			log.Printf("intake.Batch.Add: skipping duplicate %s (%d bytes)", c.Name, c.Size)
			continue
		}
		seen[key] = struct{}{}

		f := domain.CandidateFile{
			ID:        uuid.New(),
			Name:      c.Name,
			SizeBytes: c.Size,
			MimeType:  mimeType,
			Content:   c.Content,
			AddedAt:   time.Now().UTC(),
		}
		b.files = append(b.files, f)
		res.Accepted = append(res.Accepted, f)
	}
	return res
}

// checkType resolves the candidate's MIME type and matches it against the accepted type.
func (b *Batch) checkType(c Candidate) (string, error) {
	declared := baseType(c.DeclaredType)
	generic := declared == "" || declared == "application/octet-stream"

	if !generic && declared != b.opts.AcceptedType {
		return "", domain.ErrUnsupportedType
	}
	if c.Content == nil || (!generic && !b.opts.SniffContent) {
		if generic {
			return "", domain.ErrUnsupportedType
		}
		return declared, nil
	}

	detected, err := sniff(c.Content)
	if err != nil {
		log.Printf("intake.Batch.Add: sniffing %s failed: %v", c.Name, err)
		return "", domain.ErrUnsupportedType
	}
	if !detected.Is(b.opts.AcceptedType) {
		return "", domain.ErrUnsupportedType
	}
	return b.opts.AcceptedType, nil
}

func sniff(content domain.Content) (*mimetype.MIME, error) {
	rc, err := content.Open()
	if err != nil {
		return nil, fmt.Errorf("opening content: %w", err)
	}
	defer func() { _ = rc.Close() }()
	return mimetype.DetectReader(rc)
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// Remove deletes the file with the given id. Unknown ids are ignored.
func (b *Batch) Remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.files {
		if b.files[i].ID == id {
			b.files = append(b.files[:i:i], b.files[i+1:]...)
			return
		}
	}
}

// RemoveAll deletes every file whose id is in ids, keeping the others in order.
func (b *Batch) RemoveAll(ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.files[:0:0]
	for i := range b.files {
		if _, ok := drop[b.files[i].ID]; !ok {
			kept = append(kept, b.files[i])
		}
	}
	b.files = kept
}

// Clear empties the batch.
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = nil
}

// Files returns a snapshot of the batch in insertion order.
func (b *Batch) Files() []domain.CandidateFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.CandidateFile, len(b.files))
	copy(out, b.files)
	return out
}

// Len returns the number of queued files.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.files)
}

// Options returns the validation settings of the batch.
func (b *Batch) Options() Options {
	return b.opts
}
