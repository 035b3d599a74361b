// Package marks generates the per-subject mark sheet for a new participant.
package marks

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/examworld/awr/internal/domain/model"
)

// Mark range constants per subject.
const (
	theoryMin    = 10
	theoryMax    = 80
	practicalMin = 5
	practicalMax = 20

	// marksPerSubject is the maximum obtainable total for one subject.
	marksPerSubject = 100
)

// DefaultSubjects is the fixed, ordered subject list for the exam.
func DefaultSubjects() []string {
	return []string{
		"securityPoseAesthetics",
		"wrestling",
		"shoppingCartDragRace",
		"auntyCrowdManagement",
		"fakeSirenSound",
	}
}

// Sheet is a generated mark set with its derived aggregates.
type Sheet struct {
	Marks      map[string]model.Mark
	TotalMarks int
	Percentage float64
}

// Generator produces random mark sheets over a configured subject set.
// It has no dependency on prior records; output depends only on the
// random source.
type Generator struct {
	mu       sync.Mutex
	subjects []string
	rng      *rand.Rand
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSubjects overrides the subject list.
func WithSubjects(subjects []string) Option {
	return func(g *Generator) {
		if len(subjects) > 0 {
			g.subjects = subjects
		}
	}
}

// WithRand injects a random source, typically seeded for reproducible tests.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// NewGenerator creates a mark generator with configuration options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		subjects: DefaultSubjects(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // marks are not security-sensitive
	}

	// Apply all options
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Subjects returns the configured subject list.
func (g *Generator) Subjects() []string {
	out := make([]string, len(g.subjects))
	copy(out, g.subjects)
	return out
}

// MaxTotal returns the maximum obtainable total across all subjects.
func (g *Generator) MaxTotal() int {
	return len(g.subjects) * marksPerSubject
}

// Generate produces a mark sheet covering exactly the configured subjects.
// Theory marks are uniform in [10,80], practical marks uniform in [5,20].
func (g *Generator) Generate() Sheet {
	g.mu.Lock()
	defer g.mu.Unlock()

	sheet := Sheet{Marks: make(map[string]model.Mark, len(g.subjects))}
	for _, subject := range g.subjects {
		m := model.Mark{
			Theory:    theoryMin + g.rng.Intn(theoryMax-theoryMin+1),
			Practical: practicalMin + g.rng.Intn(practicalMax-practicalMin+1),
		}
		sheet.Marks[subject] = m
		sheet.TotalMarks += m.Total()
	}

	sheet.Percentage = Round2(float64(sheet.TotalMarks) / float64(g.MaxTotal()) * 100)
	return sheet
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
