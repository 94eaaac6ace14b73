package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ezemirmul/estimator/internal/errors"
	"github.com/ezemirmul/estimator/internal/models"
	"github.com/ezemirmul/estimator/internal/source"
)

// Step identifies where a play session currently is.
type Step string

const (
	StepSelectingTopic Step = "selecting_topic"
	StepAnswering      Step = "answering_question"
	StepShowingResult  Step = "showing_result"
)

const tickInterval = time.Second

// Scheduler schedules fn to run once after d and returns a stop function.
// The default implementation is time.AfterFunc; tests substitute a manual one.
type Scheduler func(d time.Duration, fn func()) (stop func() bool)

func afterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// Option configures a Session.
type Option func(*Session)

// WithScheduler replaces the countdown scheduler.
func WithScheduler(s Scheduler) Option {
	return func(sess *Session) { sess.schedule = s }
}

// Session drives one player through topic selection, a timed question and a
// scored result. Events are serialized behind a mutex; the countdown is the
// only autonomous activity and is cancelled on every state exit, so a stale
// tick can never fire against a question that has been superseded.
type Session struct {
	mu       sync.Mutex
	source   source.QuestionSource
	schedule Scheduler

	step      Step
	topic     string
	index     int
	questions []models.GroupedQuestion
	remaining float64
	score     int
	result    *Result

	// gen is bumped whenever the countdown is cancelled; a tick scheduled
	// under an older generation is a no-op even if it already fired and was
	// waiting on the mutex.
	gen      int
	stopTick func() bool

	touched time.Time
}

// NewSession creates a session in the topic-selection step reading questions
// from the given source.
func NewSession(src source.QuestionSource, opts ...Option) *Session {
	s := &Session{
		source:   src,
		schedule: afterFunc,
		step:     StepSelectingTopic,
		touched:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State is a snapshot of the session for API responses. The current
// question's answer is deliberately not part of it.
type State struct {
	Step          Step    `json:"step"`
	Topic         string  `json:"topic,omitempty"`
	QuestionIndex int     `json:"question_index"`
	Question      string  `json:"question,omitempty"`
	Remaining     float64 `json:"remaining_seconds"`
	Score         int     `json:"score"`
	Result        *Result `json:"result,omitempty"`
}

// State returns the current session snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	st := State{
		Step:      s.step,
		Topic:     s.topic,
		Remaining: s.remaining,
		Score:     s.score,
		Result:    s.result,
	}
	if len(s.questions) > 0 {
		st.QuestionIndex = s.index % len(s.questions)
		if s.step == StepAnswering {
			st.Question = s.questions[st.QuestionIndex].Question
		}
	}
	return st
}

// SelectTopic starts a fresh run on the given topic: score and question index
// reset regardless of prior state. Topics without questions are rejected with
// no state change.
func (s *Session) SelectTopic(ctx context.Context, topic string) (State, error) {
	topic = models.NormalizeTopic(topic)
	grouped, err := s.source.Grouped(ctx)
	if err != nil {
		return s.State(), errors.NewUnavailableError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	list := grouped[topic]
	if len(list) == 0 {
		return s.snapshot(), errors.NewValidationError("topic", fmt.Sprintf("%q has no questions", topic))
	}

	s.topic = topic
	s.questions = list
	s.score = 0
	s.index = 0
	s.result = nil
	s.startQuestion()
	return s.snapshot(), nil
}

// Submit evaluates the player's raw input against the current question. Once
// the session has left the answering step further submits are no-ops, which
// also makes the call idempotent against a racing timeout.
func (s *Session) Submit(raw string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	if s.step != StepAnswering {
		return s.snapshot()
	}
	s.finish(raw)
	return s.snapshot()
}

// NextQuestion advances to the following question of the same topic, wrapping
// modulo the topic's current question count. The list is re-read from the
// source, so it may have grown or shrunk since the previous turn; if it
// became empty the advance is rejected with no state change.
func (s *Session) NextQuestion(ctx context.Context) (State, error) {
	grouped, err := s.source.Grouped(ctx)
	if err != nil {
		return s.State(), errors.NewUnavailableError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	if s.step != StepShowingResult {
		return s.snapshot(), errors.NewValidationError("session", "no result to advance from")
	}
	list := grouped[s.topic]
	if len(list) == 0 {
		return s.snapshot(), errors.NewValidationError("topic", fmt.Sprintf("%q has no questions", s.topic))
	}

	s.index++
	s.questions = list
	s.result = nil
	s.startQuestion()
	return s.snapshot(), nil
}

// ChangeTopic fully resets the session and returns to topic selection.
func (s *Session) ChangeTopic() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()

	s.cancelTick()
	s.step = StepSelectingTopic
	s.topic = ""
	s.questions = nil
	s.index = 0
	s.score = 0
	s.remaining = 0
	s.result = nil
	return s.snapshot()
}

// Close cancels any pending countdown. The session is unusable afterwards
// only in the sense that no timer will fire; explicit events still work.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTick()
}

// LastActive reports when the session last processed an event.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// startQuestion enters the answering step for the question at the current
// index, deriving the countdown from that question's time limit.
// Callers must hold s.mu.
func (s *Session) startQuestion() {
	s.cancelTick()
	q := s.questions[s.index%len(s.questions)]
	s.remaining = q.TimeLimit()
	s.step = StepAnswering
	s.scheduleTick()
}

// Callers must hold s.mu.
func (s *Session) scheduleTick() {
	gen := s.gen
	s.stopTick = s.schedule(tickInterval, func() { s.tick(gen) })
}

// Callers must hold s.mu.
func (s *Session) cancelTick() {
	if s.stopTick != nil {
		s.stopTick()
		s.stopTick = nil
	}
	s.gen++
}

func (s *Session) tick(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.step != StepAnswering {
		// Superseded: the question this tick was armed for is gone.
		return
	}

	s.remaining--
	if s.remaining <= 0 {
		// Timeout is an implicit submit with no input.
		s.finish("")
		return
	}
	s.scheduleTick()
}

// finish evaluates the submission, accumulates the score and moves to the
// result step. Callers must hold s.mu.
func (s *Session) finish(raw string) {
	s.cancelTick()
	q := s.questions[s.index%len(s.questions)]
	res := Evaluate(q.Answer, raw)
	s.score += res.Points
	s.result = &res
	s.remaining = 0
	s.step = StepShowingResult
}
