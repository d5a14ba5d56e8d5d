package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/qualifier/internal/extractor"
	"github.com/MikeSquared-Agency/qualifier/internal/hermes"
	"github.com/MikeSquared-Agency/qualifier/internal/question"
	"github.com/MikeSquared-Agency/qualifier/internal/scoring"
	"github.com/MikeSquared-Agency/qualifier/internal/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMissingClient   = errors.New("client_id and rep_id are required")
	ErrQuestionConfig  = errors.New("stored question configuration is invalid")
)

// Publisher emits events. Both the NATS client and the Kafka producer satisfy it.
type Publisher interface {
	Publish(subject string, data any) error
}

// Notifier is told about saved hot-deal call records.
type Notifier interface {
	NotifyHotLead(ctx context.Context, rec session.CallRecord) error
}

// QuestionSource supplies the question configuration frozen into each new session.
type QuestionSource interface {
	ActiveQuestions(ctx context.Context) ([]question.Question, error)
}

// Processor owns the live qualification sessions and the engines they share.
type Processor struct {
	questions QuestionSource
	scorer    *scoring.Engine
	extractor *extractor.Extractor
	writer    session.CallRecordWriter
	publisher Publisher
	notifier  Notifier
	policy    session.MergePolicy
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
}

// entry serialises access to one session. A closed entry has been saved or
// abandoned and must not be touched again.
type entry struct {
	mu       sync.Mutex
	sess     *session.Session
	closed   bool
	lastUsed time.Time
}

// New wires a processor. pub may be nil, in which case no events are emitted.
func New(src QuestionSource, scorer *scoring.Engine, ext *extractor.Extractor, w session.CallRecordWriter, pub Publisher, policy session.MergePolicy, logger *slog.Logger) *Processor {
	return &Processor{
		questions: src,
		scorer:    scorer,
		extractor: ext,
		writer:    w,
		publisher: pub,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*entry),
	}
}

// SetNotifier registers n to hear about hot deals. Call before serving.
func (p *Processor) SetNotifier(n Notifier) {
	p.notifier = n
}

// Start opens a session for a lead with the currently active questions.
func (p *Processor) Start(ctx context.Context, clientID, repID string) (View, error) {
	if clientID == "" || repID == "" {
		return View{}, ErrMissingClient
	}

	qs, err := p.questions.ActiveQuestions(ctx)
	if err != nil {
		return View{}, fmt.Errorf("load questions: %w", err)
	}
	set, err := question.NewSet(qs)
	if err != nil {
		return View{}, fmt.Errorf("%w: %w", ErrQuestionConfig, err)
	}

	sess := session.New(session.Config{
		ClientID:    clientID,
		RepID:       repID,
		Questions:   set,
		Scorer:      p.scorer,
		Extractor:   p.extractor,
		MergePolicy: p.policy,
	})

	p.mu.Lock()
	p.sessions[sess.ID] = &entry{sess: sess, lastUsed: p.now()}
	p.mu.Unlock()

	p.logger.Info("session started",
		"session_id", sess.ID,
		"client_id", clientID,
		"rep_id", repID,
		"questions", set.Len(),
	)
	return newView(sess), nil
}

func (p *Processor) Get(id uuid.UUID) (View, error) {
	return p.with(id, func(*session.Session) error { return nil })
}

// Answer records text for questionID. Answers can be edited from any step.
func (p *Processor) Answer(id uuid.UUID, questionID, text string) (View, error) {
	return p.with(id, func(s *session.Session) error {
		return s.SetAnswer(questionID, text)
	})
}

func (p *Processor) Next(id uuid.UUID) (View, error) {
	return p.with(id, func(s *session.Session) error {
		s.Next()
		return nil
	})
}

func (p *Processor) Prev(id uuid.UUID) (View, error) {
	return p.with(id, func(s *session.Session) error {
		s.Prev()
		return nil
	})
}

// ApplyTranscript merges answers extracted from transcript into the session
// and returns the IDs that changed.
func (p *Processor) ApplyTranscript(id uuid.UUID, transcript string) (View, []string, error) {
	var changed []string
	v, err := p.with(id, func(s *session.Session) error {
		changed = s.ApplyExtraction(transcript)
		return nil
	})
	if err != nil {
		return View{}, nil, err
	}

	p.logger.Info("transcript applied", "session_id", id, "changed", len(changed))
	p.publish(hermes.SubjectExtractionApplied, hermes.ExtractionAppliedEvent{
		SessionID: id,
		Changed:   changed,
		Timestamp: p.now().UTC(),
	})
	return v, changed, nil
}

// Save persists the session's call record. It only succeeds on the summary
// step. A saved session is closed; a failed save leaves it open for retry.
func (p *Processor) Save(ctx context.Context, id uuid.UUID) (session.CallRecord, error) {
	e, err := p.lookup(id)
	if err != nil {
		return session.CallRecord{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return session.CallRecord{}, ErrSessionNotFound
	}
	e.lastUsed = p.now()

	sum, err := e.sess.Summary()
	if err != nil {
		return session.CallRecord{}, err
	}
	rec, err := sum.Save(ctx, p.writer)
	if err != nil {
		p.logger.Error("save failed", "session_id", id, "error", err)
		return session.CallRecord{}, err
	}

	e.closed = true
	p.remove(id)

	p.logger.Info("call record saved",
		"session_id", id,
		"record_id", rec.ID,
		"client_id", rec.ClientID,
		"score", rec.Score,
		"status", rec.Status,
	)

	evt := hermes.CallQualifiedEvent{
		RecordID:         rec.ID,
		SessionID:        rec.SessionID,
		ClientID:         rec.ClientID,
		RepID:            rec.RepID,
		Score:            rec.Score,
		Status:           string(rec.Status),
		NextAction:       rec.NextAction,
		IsHotDeal:        rec.IsHotDeal,
		FollowUpRequired: rec.FollowUpRequired,
		Timestamp:        p.now().UTC(),
	}
	p.publish(hermes.SubjectCallQualified, evt)
	if rec.IsHotDeal {
		p.publish(hermes.SubjectLeadHot, evt)
		if p.notifier != nil {
			if err := p.notifier.NotifyHotLead(ctx, rec); err != nil {
				p.logger.Warn("hot lead notification failed", "record_id", rec.ID, "error", err)
			}
		}
	}
	return rec, nil
}

// Abandon discards a session without saving.
func (p *Processor) Abandon(id uuid.UUID) error {
	e, err := p.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrSessionNotFound
	}
	e.closed = true
	p.remove(id)
	p.logger.Info("session abandoned", "session_id", id)
	return nil
}

// Sweep abandons sessions idle for longer than maxIdle and returns how many
// were dropped.
func (p *Processor) Sweep(maxIdle time.Duration) int {
	cutoff := p.now().Add(-maxIdle)

	p.mu.RLock()
	entries := make(map[uuid.UUID]*entry, len(p.sessions))
	for id, e := range p.sessions {
		entries[id] = e
	}
	p.mu.RUnlock()

	// Entry locks are never taken while holding p.mu.
	var stale []uuid.UUID
	for id, e := range entries {
		e.mu.Lock()
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, id)
		}
		e.mu.Unlock()
	}

	n := 0
	for _, id := range stale {
		if err := p.Abandon(id); err == nil {
			n++
		}
	}
	if n > 0 {
		p.logger.Info("idle sessions swept", "count", n)
	}
	return n
}

// ActiveSessions returns the number of open sessions.
func (p *Processor) ActiveSessions() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}

// Score validates questions and scores answers without a session.
func (p *Processor) Score(qs []question.Question, answers question.Answers) (scoring.Result, error) {
	set, err := question.NewSet(qs)
	if err != nil {
		return scoring.Result{}, err
	}
	return p.scorer.Score(set.Questions(), answers), nil
}

// Extract validates questions and extracts answers from transcript without a session.
func (p *Processor) Extract(qs []question.Question, transcript string) (question.Answers, error) {
	set, err := question.NewSet(qs)
	if err != nil {
		return nil, err
	}
	return p.extractor.Extract(set.Questions(), transcript), nil
}

// HandleTranscriptStored is the NATS handler for qualifier.transcript.stored.
func (p *Processor) HandleTranscriptStored(subject string, data []byte) {
	var evt hermes.TranscriptStoredEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse transcript event", "subject", subject, "error", err)
		return
	}

	id, err := uuid.Parse(evt.SessionID)
	if err != nil {
		p.logger.Error("invalid session id", "session_id", evt.SessionID, "error", err)
		return
	}

	if _, _, err := p.ApplyTranscript(id, evt.Transcript); err != nil {
		p.logger.Warn("transcript not applied", "session_id", id, "error", err)
	}
}

func (p *Processor) with(id uuid.UUID, fn func(*session.Session) error) (View, error) {
	e, err := p.lookup(id)
	if err != nil {
		return View{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return View{}, ErrSessionNotFound
	}
	e.lastUsed = p.now()

	if err := fn(e.sess); err != nil {
		return View{}, err
	}
	return newView(e.sess), nil
}

func (p *Processor) lookup(id uuid.UUID) (*entry, error) {
	p.mu.RLock()
	e, ok := p.sessions[id]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func (p *Processor) remove(id uuid.UUID) {
	p.mu.Lock()
	delete(p.sessions, id)
	p.mu.Unlock()
}

func (p *Processor) publish(subject string, data any) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
