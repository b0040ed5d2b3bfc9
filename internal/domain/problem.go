package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Problem.
var (
	ErrEmptyProblemURL     = errors.New("problem URL cannot be empty")
	ErrProblemURLTooLong   = errors.New("problem URL cannot exceed 500 characters")
	ErrProblemTitleTooLong = errors.New("problem title cannot exceed 300 characters")
)

// slugPattern extracts the problem slug from a problem URL,
// e.g. https://leetcode.com/problems/two-sum/ -> two-sum.
var slugPattern = regexp.MustCompile(`/problems/([^/]+)`)

// Problem is a trackable unit of learning content. Its metadata (title,
// difficulty, tags) is opaque to the scheduling engine; only the attached
// Stats participate in scheduling decisions.
type Problem struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Number      int       `json:"number"`
	Difficulty  string    `json:"difficulty"` // Easy, Medium, Hard
	Tags        []string  `json:"tags"`
	Description string    `json:"description"`
	Notes       string    `json:"notes"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Stats is nil for problems that have never been reviewed.
	Stats *ProblemStats `json:"stats,omitempty"`
}

// NewProblem creates a new active problem from a URL, deriving the slug.
func NewProblem(url string) (*Problem, error) {
	now := time.Now().UTC()
	p := &Problem{
		ID:        uuid.New(),
		URL:       strings.TrimSpace(url),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Slug = ExtractSlug(p.URL)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ExtractSlug returns the problem slug embedded in a problem URL, or an
// empty string if the URL does not contain one.
func ExtractSlug(url string) string {
	m := slugPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// Validate checks if the Problem has valid data.
// Returns an error if any field fails validation.
func (p *Problem) Validate() error {
	if p.ID == uuid.Nil {
		return ErrInvalidID
	}
	if p.URL == "" {
		return ErrEmptyProblemURL
	}
	if len(p.URL) > 500 {
		return ErrProblemURLTooLong
	}
	if len(p.Title) > 300 {
		return ErrProblemTitleTooLong
	}
	return nil
}

// HasStats reports whether the problem has ever been reviewed.
func (p *Problem) HasStats() bool {
	return p.Stats != nil
}
