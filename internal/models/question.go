package models

import (
	"strconv"
	"strings"
	"time"
)

// DefaultTime is the fallback time limit in seconds applied whenever a
// question is created or updated without a positive time value.
const DefaultTime = 10

type Question struct {
	ID        int64     `json:"id"`
	Topic     string    `json:"topic"`
	Question  string    `json:"question"`
	Answer    float64   `json:"answer"`
	Time      float64   `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// QuestionUpdate carries a partial update; nil fields are left untouched.
type QuestionUpdate struct {
	Topic    *string
	Question *string
	Answer   *float64
	Time     *float64
}

// GroupedQuestion is the public, id-less view served to players.
// Time is omitted when it equals the default.
type GroupedQuestion struct {
	Question string   `json:"question"`
	Answer   float64  `json:"answer"`
	Time     *float64 `json:"time,omitempty"`
}

// Grouped maps a normalized topic to its questions.
type Grouped map[string][]GroupedQuestion

// TimeLimit returns the effective countdown seconds for a question.
func (g GroupedQuestion) TimeLimit() float64 {
	if g.Time != nil && *g.Time > 0 {
		return *g.Time
	}
	return DefaultTime
}

// NormalizeTopic folds a topic label so grouping is stable regardless of the
// input casing or surrounding whitespace.
func NormalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// ParseNumber parses text as a decimal number, accepting a comma as the
// decimal separator. ok is false for blank or unparseable input.
func ParseNumber(raw string) (value float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CoerceTime turns an optional time limit into a stored one: absent or
// non-positive values become the default. This is a documented normalization,
// not an error.
func CoerceTime(t *float64) float64 {
	if t != nil && *t > 0 {
		return *t
	}
	return DefaultTime
}

// GroupedView converts a question to its player-facing shape.
func (q Question) GroupedView() GroupedQuestion {
	g := GroupedQuestion{Question: q.Question, Answer: q.Answer}
	if q.Time != DefaultTime {
		t := q.Time
		g.Time = &t
	}
	return g
}

// ImportRow is one raw spreadsheet row before validation. All fields arrive
// as text so that the same validation path serves file uploads and the JSON
// bulk endpoint.
type ImportRow struct {
	// Line is the 1-based spreadsheet row the data came from (the header is
	// row 1), used in error messages.
	Line     int
	Topic    string
	Question string
	Answer   string
	Time     string
}

// ImportResult reports a bulk import outcome: how many rows were inserted and
// the collected per-row error messages. Row errors never abort the batch.
type ImportResult struct {
	Success int      `json:"success"`
	Errors  []string `json:"errors"`
}
