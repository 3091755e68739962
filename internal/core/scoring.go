package core

import "strings"

// Point calculation constants.
const (
	BasePoints        = 100
	PointsPerObject   = 100
	PickBonus         = 100
	FirstVisitBonus   = 5
	stationABonus     = 1
	stationOtherMalus = -1
)

// ScoringContext carries per-run scoring state. Callers create one per run
// and pass it explicitly; there is no shared package-level state.
type ScoringContext struct {
	visited map[string]bool
}

// NewScoringContext returns an empty context.
func NewScoringContext() *ScoringContext {
	return &ScoringContext{visited: make(map[string]bool)}
}

// CalculatePoints derives a point value from the task contents.
// The first task scored at a station earns FirstVisitBonus on top.
func (sc *ScoringContext) CalculatePoints(t *Task) int {
	points := BasePoints + PointsPerObject*len(t.Objects)
	if t.IsPick() {
		points += PickBonus
	}

	station := strings.ToUpper(t.Station)
	switch {
	case strings.Contains(station, "A"):
		points += stationABonus
	case strings.Contains(station, "B"):
	default:
		points += stationOtherMalus
	}

	if !sc.visited[t.Station] {
		sc.visited[t.Station] = true
		points += FirstVisitBonus
	}

	if points < 0 {
		return 0
	}
	return points
}

// Visited reports whether the station has been scored in this context.
func (sc *ScoringContext) Visited(station string) bool {
	return sc.visited[station]
}
