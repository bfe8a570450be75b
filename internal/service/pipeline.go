package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"boothscan/internal/domain"
	"boothscan/internal/intake"
	"boothscan/internal/normalizer"
	"boothscan/internal/port"
)

// PipelineConfig holds settings for a submission pipeline.
type PipelineConfig struct {
	// Timeout bounds one whole submission. Zero means no deadline.
	Timeout time.Duration
	// ResetAfter re-arms a finished pipeline to idle. Zero disables the timer.
	ResetAfter time.Duration
	// ArchiveBucket and ArchivePrefix locate archived documents when storage is set.
	ArchiveBucket string
	ArchivePrefix string
}

// PipelineStatus is a snapshot of a pipeline's state.
type PipelineStatus struct {
	State      domain.PipelineState `json:"state"`
	Message    string               `json:"message,omitempty"`
	FileCount  int                  `json:"file_count"`
	StartedAt  *time.Time           `json:"started_at,omitempty"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
	Err        error                `json:"-"`
}

// Submission is the handle of one in-flight submission.
type Submission struct {
	done    chan struct{}
	results []domain.ExtractionResult
	err     error
}

// Done is closed once the submission reached a terminal state.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the submission finishes or ctx is done.
func (s *Submission) Wait(ctx context.Context) ([]domain.ExtractionResult, error) {
	select {
	case <-s.done:
		return s.results, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Pipeline drives submissions of a batch to the extraction service.
// At most one submission is in flight; the state moves
// idle -> submitting -> succeeded|failed -> idle.
type Pipeline struct {
	client  port.ExtractionClient
	storage port.ObjectStorage
	cfg     PipelineConfig

	mu         sync.Mutex
	state      domain.PipelineState
	message    string
	lastErr    error
	fileCount  int
	startedAt  time.Time
	finishedAt time.Time
	results    []domain.ExtractionResult
	generation int
	resetTimer *time.Timer
}

// NewPipeline creates an idle pipeline. storage may be nil to disable archiving.
func NewPipeline(client port.ExtractionClient, storage port.ObjectStorage, cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		client:  client,
		storage: storage,
		cfg:     cfg,
		state:   domain.PipelineStateIdle,
	}
}

// Submit starts extracting every file of batch, in batch order.
// It fails fast with domain.ErrEmptyBatch or domain.ErrAlreadyInProgress.
// The submitted files leave the batch only when every response normalized.
func (p *Pipeline) Submit(ctx context.Context, batch *intake.Batch) (*Submission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == domain.PipelineStateSubmitting {
		return nil, domain.ErrAlreadyInProgress
	}
	files := batch.Files()
	if len(files) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	p.stopResetTimerLocked()
	p.generation++
	p.state = domain.PipelineStateSubmitting
	p.message = ""
	p.lastErr = nil
	p.fileCount = len(files)
	p.startedAt = time.Now().UTC()
	p.finishedAt = time.Time{}

	// The run outlives the caller's request; only its values are kept.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if p.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), p.cfg.Timeout)
	}

	sub := &Submission{done: make(chan struct{})}
	go func() {
		defer cancel()
		p.run(runCtx, batch, files, sub)
	}()

	log.Printf("pipeline.Submit: submitting %d file(s)", len(files))
	return sub, nil
}

func (p *Pipeline) run(ctx context.Context, batch *intake.Batch, files []domain.CandidateFile, sub *Submission) {
	results, err := p.extractAll(ctx, files)
	if err == nil {
		ids := make([]uuid.UUID, len(files))
		for i := range files {
			ids[i] = files[i].ID
		}
		batch.RemoveAll(ids)
	} else {
		results = nil
	}

	p.mu.Lock()
	p.finishedAt = time.Now().UTC()
	if err != nil {
		p.state = domain.PipelineStateFailed
		p.lastErr = err
		p.message = failureMessage(err)
		log.Printf("pipeline.run: submission failed after %s: %v", p.finishedAt.Sub(p.startedAt), err)
	} else {
		p.state = domain.PipelineStateSucceeded
		p.results = results
		p.message = successMessage(results, len(files))
		log.Printf("pipeline.run: submission succeeded in %s: %s", p.finishedAt.Sub(p.startedAt), p.message)
	}
	p.scheduleResetLocked()
	sub.results, sub.err = results, err
	p.mu.Unlock()

	close(sub.done)
}

func (p *Pipeline) extractAll(ctx context.Context, files []domain.CandidateFile) ([]domain.ExtractionResult, error) {
	var all []domain.ExtractionResult
	for i := range files {
		results, err := p.extractOne(ctx, &files[i])
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

func (p *Pipeline) extractOne(ctx context.Context, f *domain.CandidateFile) ([]domain.ExtractionResult, error) {
	if f.Content == nil {
		return nil, fmt.Errorf("%w: no content for %s", domain.ErrTransportFailure, f.Name)
	}
	p.archive(ctx, f)

	body, err := f.Content.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrTransportFailure, f.Name, err)
	}
	defer func() { _ = body.Close() }()

	resp, err := p.client.Extract(ctx, port.ExtractRequest{
		FileName:    f.Name,
		ContentType: f.MimeType,
		Body:        body,
		Size:        f.SizeBytes,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrTransportFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)
		}
		return nil, fmt.Errorf("extracting %s: %w", f.Name, err)
	}

	results, err := normalizer.Normalize(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("normalizing response for %s: %w", f.Name, err)
	}
	if msg := normalizer.Message(resp.Body); msg != "" {
		log.Printf("pipeline.extractOne: %s: %s", f.Name, msg)
	}
	for i := range results {
		if results[i].SourceFileName == "" {
			results[i].SourceFileName = f.Name
		}
		if results[i].DroppedRecords > 0 {
			log.Printf("pipeline.extractOne: %s: dropped %d record(s) without a company name",
				results[i].SourceFileName, results[i].DroppedRecords)
		}
	}
	return results, nil
}

// archive copies the document to object storage. Failures never fail the submission.
func (p *Pipeline) archive(ctx context.Context, f *domain.CandidateFile) {
	if p.storage == nil {
		return
	}
	body, err := f.Content.Open()
	if err != nil {
		log.Printf("pipeline.archive: opening %s: %v", f.Name, err)
		return
	}
	defer func() { _ = body.Close() }()

	key := path.Join(p.cfg.ArchivePrefix, f.ID.String(), f.Name)
	if _, err := p.storage.Upload(ctx, port.UploadInput{
		Bucket:      p.cfg.ArchiveBucket,
		Key:         key,
		Body:        body,
		ContentType: f.MimeType,
		Size:        f.SizeBytes,
	}); err != nil {
		log.Printf("pipeline.archive: uploading %s to %s: %v", f.Name, key, err)
	}
}

// Reset re-arms a finished pipeline to idle. Results of the last success are kept.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == domain.PipelineStateSubmitting {
		return domain.ErrAlreadyInProgress
	}
	p.stopResetTimerLocked()
	p.generation++
	p.toIdleLocked()
	return nil
}

// Status returns a snapshot of the pipeline state.
func (p *Pipeline) Status() PipelineStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := PipelineStatus{
		State:     p.state,
		Message:   p.message,
		FileCount: p.fileCount,
		Err:       p.lastErr,
	}
	if !p.startedAt.IsZero() {
		t := p.startedAt
		st.StartedAt = &t
	}
	if !p.finishedAt.IsZero() {
		t := p.finishedAt
		st.FinishedAt = &t
	}
	return st
}

// State returns the current lifecycle state.
func (p *Pipeline) State() domain.PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Results returns the results of the last successful submission.
func (p *Pipeline) Results() []domain.ExtractionResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ExtractionResult, len(p.results))
	copy(out, p.results)
	return out
}

// Close stops the reset timer.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopResetTimerLocked()
}

func (p *Pipeline) toIdleLocked() {
	p.state = domain.PipelineStateIdle
	p.message = ""
	p.lastErr = nil
}

func (p *Pipeline) scheduleResetLocked() {
	if p.cfg.ResetAfter <= 0 {
		return
	}
	gen := p.generation
	p.resetTimer = time.AfterFunc(p.cfg.ResetAfter, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation == gen && p.state.IsTerminal() {
			p.toIdleLocked()
		}
	})
}

func (p *Pipeline) stopResetTimerLocked() {
	if p.resetTimer != nil {
		p.resetTimer.Stop()
		p.resetTimer = nil
	}
}

func successMessage(results []domain.ExtractionResult, files int) string {
	records := 0
	for i := range results {
		records += len(results[i].Records)
	}
	return fmt.Sprintf("extracted %d record(s) from %d file(s)", records, files)
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedResponse):
		return "The extraction service returned an unexpected response. Your files are still queued; please try again."
	case errors.Is(err, domain.ErrTransportFailure):
		return fmt.Sprintf("The extraction request failed (%v). Your files are still queued; please try again.", err)
	default:
		return err.Error()
	}
}
