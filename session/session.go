// Package session schedules re-analysis of documents that change over time,
// such as files open in an editor or under a watched directory.
//
// Updates to a document are debounced: a burst of edits settles into one
// analysis after an idle delay. Every update is tagged with a sequence
// number, and a finished analysis is published only if its sequence is
// still the latest for the document. Content that hashes the same as the
// last published analysis is not analyzed again.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/pdxlint/diag"
	"github.com/ardnew/pdxlint/log"
	"github.com/ardnew/pdxlint/schema"
)

// DefaultDelay is the idle time after the last update before a document is
// analyzed.
const DefaultDelay = 150 * time.Millisecond

// Validator analyzes one document. *analyzer.Analyzer satisfies it.
type Validator interface {
	Validate(text string, kind schema.Kind) diag.List
}

// Result is a published analysis.
type Result struct {
	URI         string
	Kind        schema.Kind
	Seq         uint64
	Hash        uint64
	Diagnostics diag.List
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDelay sets the debounce delay. Negative values are treated as zero.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) { s.delay = max(d, 0) }
}

// WithLogger sets the logger for scheduling decisions.
func WithLogger(l log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// Scheduler debounces and sequences analyses per document. It is safe for
// concurrent use. The publish callback may be invoked concurrently for
// different documents.
type Scheduler struct {
	validator Validator
	publish   func(Result)
	delay     time.Duration
	logger    log.Logger

	mu   sync.Mutex
	seq  uint64
	docs map[string]*document
}

type document struct {
	seq   uint64
	text  string
	kind  schema.Kind
	timer *time.Timer

	// Content of the last published analysis.
	published bool
	hash      uint64
	hashKind  schema.Kind
}

// New returns a Scheduler that analyzes with v and hands every current
// result to publish.
func New(v Validator, publish func(Result), opts ...Option) *Scheduler {
	s := &Scheduler{
		validator: v,
		publish:   publish,
		delay:     DefaultDelay,
		docs:      map[string]*document{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Update records new content for uri and schedules its analysis, replacing
// any analysis still pending for it. It returns the sequence number of the
// update.
func (s *Scheduler) Update(uri, text string, kind schema.Kind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	seq := s.seq

	doc, ok := s.docs[uri]
	if !ok {
		doc = &document{}
		s.docs[uri] = doc
	}

	doc.seq, doc.text, doc.kind = seq, text, kind

	if doc.timer != nil {
		doc.timer.Stop()
	}

	doc.timer = time.AfterFunc(s.delay, func() { s.run(uri, doc, seq) })

	return seq
}

// Latest returns the sequence number of the last update of uri, or zero if
// uri is not tracked.
func (s *Scheduler) Latest(uri string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.docs[uri]; ok {
		return doc.seq
	}

	return 0
}

// Forget stops tracking uri. A pending or running analysis of it is
// discarded.
func (s *Scheduler) Forget(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.docs[uri]; ok {
		if doc.timer != nil {
			doc.timer.Stop()
		}

		delete(s.docs, uri)
	}
}

// Stop cancels every pending analysis and forgets all documents.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for uri, doc := range s.docs {
		if doc.timer != nil {
			doc.timer.Stop()
		}

		delete(s.docs, uri)
	}
}

// current reports whether seq is still the latest update of doc. The
// caller must hold s.mu.
func (s *Scheduler) current(uri string, doc *document, seq uint64) bool {
	return s.docs[uri] == doc && doc.seq == seq
}

func (s *Scheduler) run(uri string, doc *document, seq uint64) {
	s.mu.Lock()

	if !s.current(uri, doc, seq) {
		s.mu.Unlock()
		s.logger.Trace("discard superseded update", slog.String("uri", uri), slog.Uint64("seq", seq))

		return
	}

	text, kind := doc.text, doc.kind
	hash := xxh3.HashString(text)

	if doc.published && doc.hash == hash && doc.hashKind == kind {
		s.mu.Unlock()
		s.logger.Trace("content unchanged", slog.String("uri", uri), slog.Uint64("seq", seq))

		return
	}

	s.mu.Unlock()

	list := s.validator.Validate(text, kind)

	s.mu.Lock()

	if !s.current(uri, doc, seq) {
		s.mu.Unlock()
		s.logger.Debug("discard stale result",
			slog.String("uri", uri),
			slog.Uint64("seq", seq),
			slog.Int("diagnostics", len(list)),
		)

		return
	}

	doc.published, doc.hash, doc.hashKind = true, hash, kind

	s.mu.Unlock()

	s.publish(Result{URI: uri, Kind: kind, Seq: seq, Hash: hash, Diagnostics: list})
}
