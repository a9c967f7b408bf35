package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/docqa-backend/internal/engine"
	"github.com/yungbote/docqa-backend/internal/extract"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/vecstore"
)

// Options tunes the pipeline. Zero values fall back to defaults.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	ProbeText    string
	SettleDelay  time.Duration
}

func (o *Options) applyDefaults() {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 1000
	}
	if o.ChunkOverlap < 0 {
		o.ChunkOverlap = 0
	}
	if o.TopK <= 0 {
		o.TopK = 5
	}
}

// Service owns the whole question-answering pipeline behind one
// lifecycle: initialize, ingest, query, stats, clear.
type Service struct {
	engine engine.Engine
	store  vecstore.Store
	log    *logger.Logger
	opts   Options

	reconciler  *reconciler
	collections *collectionManager
	ingestor    *ingestor
	retriever   *retriever
	answerer    *answerer

	mu          sync.RWMutex
	initialized bool
}

// NewService wires the pipeline. No I/O happens until Initialize or the
// first ingest.
func NewService(eng engine.Engine, store vecstore.Store, log *logger.Logger, opts Options) *Service {
	opts.applyDefaults()

	rec := newReconciler(eng, store, log, opts.ProbeText)
	cm := newCollectionManager(store, rec, log)
	ret := newRetriever(eng, store, log)
	return &Service{
		engine:      eng,
		store:       store,
		log:         log,
		opts:        opts,
		reconciler:  rec,
		collections: cm,
		ingestor:    newIngestor(eng, store, cm, rec, log, opts.ChunkSize, opts.ChunkOverlap, opts.SettleDelay),
		retriever:   ret,
		answerer:    newAnswerer(eng, ret, log, opts.TopK),
	}
}

// Initialize reconciles the collection and marks the service ready.
// Calling it again is a no-op beyond re-running reconciliation.
func (s *Service) Initialize(ctx context.Context) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.collections.EnsureReady(ctx)
	if err != nil {
		return Collection{}, err
	}
	s.initialized = true
	s.retriever.Rebind()
	return col, nil
}

// IngestText chunks and stores raw text. Ingestion initializes the
// service lazily if Initialize was never called.
func (s *Service) IngestText(ctx context.Context, text string, meta Metadata) (IngestResult, error) {
	res, err := s.ingestor.Ingest(ctx, text, meta)
	if err != nil {
		return IngestResult{}, err
	}
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	s.retriever.Rebind()
	return res, nil
}

// IngestDocument extracts text from an uploaded file and ingests it.
func (s *Service) IngestDocument(ctx context.Context, filename, mimeType string, data []byte) (IngestResult, error) {
	extracted, err := extract.Extract(filename, mimeType, data)
	if err != nil {
		return IngestResult{}, err
	}
	meta := Metadata{
		Source: filename,
		Type:   extracted.Kind,
		Pages:  extracted.Pages,
		Title:  titleFromFilename(filename),
	}
	return s.IngestText(ctx, extracted.Text, meta)
}

// Query answers a question against the ingested corpus.
func (s *Service) Query(ctx context.Context, question string) (QAResult, error) {
	if err := s.requireInitialized(); err != nil {
		return QAResult{}, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return QAResult{}, fmt.Errorf("%w: empty question", ErrEmptyInput)
	}
	return s.answerer.Answer(ctx, question)
}

// QueryStream answers a question, streaming the generated text. The
// returned channel always closes and carries at most one error chunk,
// which is always the last chunk.
func (s *Service) QueryStream(ctx context.Context, question string) (<-chan StreamChunk, error) {
	if err := s.requireInitialized(); err != nil {
		return nil, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", ErrEmptyInput)
	}
	return s.answerer.AnswerStream(ctx, question)
}

// Stats reports the collection's state. It never fails: unreachable
// state shows up as IsReady=false with zero counts.
func (s *Service) Stats(ctx context.Context) CollectionStats {
	return s.collections.Describe(ctx)
}

// Clear drops all ingested data and resets the lifecycle so the next
// ingest starts from an empty collection.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.collections.Reset(ctx); err != nil {
		return err
	}
	s.initialized = false
	s.log.Info("cleared collection", "collection", s.store.Collection())
	return nil
}

func (s *Service) requireInitialized() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	return nil
}

func titleFromFilename(filename string) string {
	name := filename
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
