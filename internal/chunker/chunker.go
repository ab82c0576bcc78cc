// Package chunker splits extracted document text into bounded-length sections
// suitable for prompting a model with a limited context window.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"mcqengine/internal/models"
)

const (
	// DefaultMaxChars is the default maximum width of a section in characters.
	DefaultMaxChars = 1000
	// DefaultMinLen is the default length a section must exceed to be kept.
	DefaultMinLen = 100
)

// noiseLine matches page numbers ("page 12") and pagination artifacts made
// only of digits, spaces and hyphens ("- 3 -", "12").
var noiseLine = regexp.MustCompile(`(?i)^\s*(page \d+|[\d\s-]+)$`)

// Chunker wraps normalized text into sections
type Chunker struct {
	maxChars int
	minLen   int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithMaxChars sets the maximum section width in characters.
func WithMaxChars(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxChars = n
		}
	}
}

// WithMinLen sets the length a section must exceed to be kept.
func WithMinLen(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.minLen = n
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxChars: DefaultMaxChars,
		minLen:   DefaultMinLen,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxChars returns the configured section width.
func (c *Chunker) MaxChars() int { return c.maxChars }

// MinLen returns the configured minimum length.
func (c *Chunker) MinLen() int { return c.minLen }

// Split removes line noise from raw extracted text and chunks the result.
func (c *Chunker) Split(raw string) []models.Section {
	return c.Chunk(CleanLines(raw))
}

// Chunk collapses whitespace and greedily wraps the text at whitespace
// boundaries into sections no wider than maxChars. Words are never broken, so
// a single word longer than maxChars forms its own section. Sections whose
// length does not exceed minLen are dropped.
func (c *Chunker) Chunk(text string) []models.Section {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var sections []models.Section
	var line strings.Builder
	lineLen := 0

	flush := func() {
		if lineLen > c.minLen {
			sections = append(sections, models.Section(line.String()))
		}
		line.Reset()
		lineLen = 0
	}

	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if lineLen > 0 && lineLen+1+wl > c.maxChars {
			flush()
		}
		if lineLen > 0 {
			line.WriteByte(' ')
			lineLen++
		}
		line.WriteString(w)
		lineLen += wl
	}
	if lineLen > 0 {
		flush()
	}

	return sections
}

// Chunk is a shorthand for New(WithMaxChars(maxChars), WithMinLen(minLen)).Chunk(text).
func Chunk(text string, maxChars, minLen int) []models.Section {
	return New(WithMaxChars(maxChars), WithMinLen(minLen)).Chunk(text)
}

// Normalize collapses every whitespace run to a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CleanLines drops lines that are purely page numbers or pagination artifacts.
func CleanLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if noiseLine.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
