// Package ranking holds the observation model and the rules for comparing
// two observations of the same team.
package ranking

import (
	"ctfrank/internal/chrono"
	"errors"
	"strconv"
	"time"
)

// NoData is how an absent rank or timestamp is rendered.
const NoData = "NO_DATA"

// Rank is a leaderboard position where 1 is the best. The zero value means
// the rank is not known.
type Rank int

func (r Rank) Known() bool {
	return r > 0
}

func (r Rank) String() string {
	if !r.Known() {
		return NoData
	}
	return strconv.Itoa(int(r))
}

// Observation is one stored snapshot of a team's ranks.
type Observation struct {
	// ObservedAt is zero when the stored row carries no timestamp.
	ObservedAt time.Time
	World      Rank
	Region     Rank
}

var ErrIncompleteObservation = errors.New("observation is missing a rank")

// Validate checks that a freshly built observation can be persisted.
func (o Observation) Validate() error {
	if !o.World.Known() || !o.Region.Known() {
		return ErrIncompleteObservation
	}
	return nil
}

// Timestamp renders ObservedAt as ISO-8601 with second precision, or NoData.
func (o Observation) Timestamp() string {
	if o.ObservedAt.IsZero() {
		return NoData
	}
	return chrono.Timestamp(o.ObservedAt)
}

type Direction int

const (
	Unknown Direction = iota
	Improved
	Worsened
	Unchanged
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Worsened:
		return "worsened"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Indicator is the chat emoji shortcode shown next to a rank.
func (d Direction) Indicator() string {
	switch d {
	case Improved:
		return ":arrow_up:"
	case Worsened:
		return ":arrow_down:"
	case Unchanged:
		return ":arrow_right:"
	default:
		return ":x:"
	}
}

// Evaluate classifies the move from previous to current. A lower rank is a
// better standing.
func Evaluate(current, previous Rank) Direction {
	if !previous.Known() {
		return Unknown
	}
	if current > previous {
		return Worsened
	}
	if current < previous {
		return Improved
	}
	return Unchanged
}

type Change struct {
	World  Direction
	Region Direction
}

// Compare evaluates both scopes independently. A zero previous observation
// yields Unknown for both.
func Compare(current, previous Observation) Change {
	return Change{
		World:  Evaluate(current.World, previous.World),
		Region: Evaluate(current.Region, previous.Region),
	}
}
