// Package generator backfills missing keyword metrics.
package generator

import (
	"math/rand"
	"time"
)

// Backfiller supplies stand-in values for metrics missing from a CSV.
type Backfiller interface {
	Rank() float64
	Volume() float64
	Difficulty() float64
}

// Generator produces randomized stand-in metrics.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Rank returns a rank in [1, 100].
func (g *Generator) Rank() float64 {
	return float64(g.rnd.Intn(100) + 1)
}

// Volume returns a search volume in [100, 5000).
func (g *Generator) Volume() float64 {
	return float64(100 + g.rnd.Intn(4900))
}

// Difficulty returns a difficulty in [10, 90).
func (g *Generator) Difficulty() float64 {
	return float64(10 + g.rnd.Intn(80))
}

// Fixed returns the same values on every call.
type Fixed struct {
	RankValue       float64
	VolumeValue     float64
	DifficultyValue float64
}

// Rank implements Backfiller.
func (f Fixed) Rank() float64 { return f.RankValue }

// Volume implements Backfiller.
func (f Fixed) Volume() float64 { return f.VolumeValue }

// Difficulty implements Backfiller.
func (f Fixed) Difficulty() float64 { return f.DifficultyValue }
