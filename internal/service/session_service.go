package service

import (
	"context"
	"fmt"
	"log"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"boothscan/internal/csvexport"
	"boothscan/internal/domain"
	"boothscan/internal/intake"
	"boothscan/internal/port"
)

// SessionConfig holds settings for the session store.
type SessionConfig struct {
	MaxSessions int
	MaxAge      time.Duration
	Intake      intake.Options
	Pipeline    PipelineConfig
}

// SessionInfo describes a session and its pipeline.
type SessionInfo struct {
	ID           uuid.UUID      `json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	FileCount    int            `json:"file_count"`
	ResultCount  int            `json:"result_count"`
	Status       PipelineStatus `json:"status"`
}

// ExportOutput is a rendered export ready for download.
type ExportOutput struct {
	FileName    string
	ContentType string
	Data        []byte
	Rows        int
}

// SessionService manages upload sessions, each owning a batch and a pipeline.
type SessionService interface {
	Create(ctx context.Context) (*SessionInfo, error)
	Get(ctx context.Context, id uuid.UUID) (*SessionInfo, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddFiles(ctx context.Context, id uuid.UUID, candidates []intake.Candidate) (*intake.AddResult, error)
	ListFiles(ctx context.Context, id uuid.UUID) ([]domain.CandidateFile, error)
	RemoveFile(ctx context.Context, id, fileID uuid.UUID) error
	ClearFiles(ctx context.Context, id uuid.UUID) error

	Submit(ctx context.Context, id uuid.UUID) (*Submission, error)
	Reset(ctx context.Context, id uuid.UUID) error
	Status(ctx context.Context, id uuid.UUID) (*PipelineStatus, error)
	Results(ctx context.Context, id uuid.UUID) ([]domain.ExtractionResult, error)
	Export(ctx context.Context, id uuid.UUID, index int, profile domain.ExportProfile, format domain.ExportFormat) (*ExportOutput, error)

	// EvictIdle drops sessions inactive since before now-MaxAge.
	// Sessions with a submission in flight are never evicted.
	EvictIdle(now time.Time) int
}

type session struct {
	id        uuid.UUID
	createdAt time.Time
	batch     *intake.Batch
	pipeline  *Pipeline

	mu           sync.Mutex
	lastActiveAt time.Time
}

func (s *session) touch() {
	s.mu.Lock()
	s.lastActiveAt = time.Now().UTC()
	s.mu.Unlock()
}

func (s *session) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActiveAt
}

type sessionService struct {
	client  port.ExtractionClient
	storage port.ObjectStorage
	cfg     SessionConfig

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// NewSessionService creates a new in-memory SessionService. storage may be nil.
func NewSessionService(client port.ExtractionClient, storage port.ObjectStorage, cfg SessionConfig) SessionService {
	return &sessionService{
		client:   client,
		storage:  storage,
		cfg:      cfg,
		sessions: make(map[uuid.UUID]*session),
	}
}

func (s *sessionService) Create(ctx context.Context) (*SessionInfo, error) {
	if s.cfg.MaxSessions > 0 && s.count() >= s.cfg.MaxSessions {
		s.EvictIdle(time.Now().UTC())
	}

	s.mu.Lock()
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, domain.ErrSessionLimit
	}
	now := time.Now().UTC()
	id := uuid.New()
	pcfg := s.cfg.Pipeline
	pcfg.ArchivePrefix = path.Join(pcfg.ArchivePrefix, id.String())
	sess := &session{
		id:           id,
		createdAt:    now,
		lastActiveAt: now,
		batch:        intake.NewBatch(s.cfg.Intake),
		pipeline:     NewPipeline(s.client, s.storage, pcfg),
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	log.Printf("sessionService.Create: created session %s", id)
	return sess.info(), nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*SessionInfo, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return sess.info(), nil
}

func (s *sessionService) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	if sess.pipeline.State() == domain.PipelineStateSubmitting {
		s.mu.Unlock()
		return domain.ErrAlreadyInProgress
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	sess.pipeline.Close()
	log.Printf("sessionService.Delete: deleted session %s", id)
	return nil
}

func (s *sessionService) AddFiles(ctx context.Context, id uuid.UUID, candidates []intake.Candidate) (*intake.AddResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	res := sess.batch.Add(candidates)
	for _, r := range res.Rejected {
		log.Printf("sessionService.AddFiles: session %s rejected %s: %v", id, r.FileName, r.Err)
	}
	return &res, nil
}

func (s *sessionService) ListFiles(ctx context.Context, id uuid.UUID) ([]domain.CandidateFile, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return sess.batch.Files(), nil
}

func (s *sessionService) RemoveFile(ctx context.Context, id, fileID uuid.UUID) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.batch.Remove(fileID)
	return nil
}

func (s *sessionService) ClearFiles(ctx context.Context, id uuid.UUID) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.batch.Clear()
	return nil
}

func (s *sessionService) Submit(ctx context.Context, id uuid.UUID) (*Submission, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sub, err := sess.pipeline.Submit(ctx, sess.batch)
	if err != nil {
		return nil, err
	}
	go func() {
		<-sub.Done()
		sess.touch()
	}()
	return sub, nil
}

func (s *sessionService) Reset(ctx context.Context, id uuid.UUID) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	return sess.pipeline.Reset()
}

func (s *sessionService) Status(ctx context.Context, id uuid.UUID) (*PipelineStatus, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	st := sess.pipeline.Status()
	return &st, nil
}

func (s *sessionService) Results(ctx context.Context, id uuid.UUID) ([]domain.ExtractionResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return sess.pipeline.Results(), nil
}

func (s *sessionService) Export(ctx context.Context, id uuid.UUID, index int, profile domain.ExportProfile, format domain.ExportFormat) (*ExportOutput, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	results := sess.pipeline.Results()
	if index < 0 || index >= len(results) {
		return nil, domain.ErrResultNotFound
	}
	res := results[index]

	filter, err := csvexport.ProfileFilter(profile)
	if err != nil {
		return nil, err
	}
	rows := 0
	for i := range res.Records {
		if filter == nil || filter(&res.Records[i]) {
			rows++
		}
	}

	out := &ExportOutput{
		FileName: csvexport.BuildFilename(res.SourceFileName, profile, format),
		Rows:     rows,
	}
	switch format {
	case domain.ExportFormatCSV:
		data, err := csvexport.Export(res.Records, profile)
		if err != nil {
			return nil, err
		}
		out.ContentType = domain.ContentTypeCSV
		out.Data = append(append([]byte{}, csvexport.BOM...), data...)
	case domain.ExportFormatXLSX:
		data, err := csvexport.ExportXLSX(res.Records, profile)
		if err != nil {
			return nil, err
		}
		out.ContentType = domain.ContentTypeXLSX
		out.Data = data
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, format)
	}

	log.Printf("sessionService.Export: session %s result %d profile=%s format=%s rows=%d",
		id, index, profile, format, rows)
	return out, nil
}

func (s *sessionService) EvictIdle(now time.Time) int {
	if s.cfg.MaxAge <= 0 {
		return 0
	}
	cutoff := now.Add(-s.cfg.MaxAge)

	s.mu.Lock()
	var evicted []*session
	for id, sess := range s.sessions {
		if sess.lastActive().After(cutoff) {
			continue
		}
		if sess.pipeline.State() == domain.PipelineStateSubmitting {
			continue
		}
		delete(s.sessions, id)
		evicted = append(evicted, sess)
	}
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.pipeline.Close()
	}
	if len(evicted) > 0 {
		log.Printf("sessionService.EvictIdle: evicted %d idle session(s)", len(evicted))
	}
	return len(evicted)
}

func (s *sessionService) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *sessionService) lookup(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess.touch()
	return sess, nil
}

func (sess *session) info() *SessionInfo {
	return &SessionInfo{
		ID:           sess.id,
		CreatedAt:    sess.createdAt,
		LastActiveAt: sess.lastActive(),
		FileCount:    sess.batch.Len(),
		ResultCount:  len(sess.pipeline.Results()),
		Status:       sess.pipeline.Status(),
	}
}
