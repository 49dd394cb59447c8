package draft

import "math"

const (
	// FullTurns is the number of whole revolutions added to every spin
	FullTurns = 5
	// JitterFraction is the share of the winning segment the pointer may
	// wander across, centered on the segment middle.
	JitterFraction = 0.6
)

// WheelColors is the segment palette, assigned by candidate index
var WheelColors = []string{
	"#0f172a",
	"#1e293b",
	"#334155",
	"#0891b2",
	"#0e7490",
	"#155e75",
	"#164e63",
	"#0c4a6e",
	"#075985",
	"#0369a1",
}

// Segment is the arc a candidate occupies on the wheel, in degrees
type Segment struct {
	TeamID int     `json:"teamId"`
	Name   string  `json:"name"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Color  string  `json:"color"`
}

// Width returns the arc size in degrees
func (s Segment) Width() float64 { return s.End - s.Start }

// Center returns the middle of the arc
func (s Segment) Center() float64 { return s.Start + s.Width()/2 }

// Contains reports whether angle lies on the arc
func (s Segment) Contains(angle float64) bool {
	return angle >= s.Start && angle <= s.End
}

// Segments lays the candidates out consecutively from 0 degrees, each arc
// proportional to its share of the total weight.
func Segments(weighted []WeightedTeam) []Segment {
	total := TotalWeight(weighted)
	segments := make([]Segment, len(weighted))
	start := 0.0
	for i, w := range weighted {
		width := w.Weight / total * 360
		segments[i] = Segment{
			TeamID: w.TeamID,
			Name:   w.Name,
			Start:  start,
			End:    start + width,
			Color:  WheelColors[i%len(WheelColors)],
		}
		start += width
	}
	return segments
}

// Rotation is the planned wheel movement for one spin
type Rotation struct {
	Segments []Segment `json:"segments"`
	Winner   Segment   `json:"winner"`
	From     float64   `json:"from"`
	Landing  float64   `json:"landing"`
	Jitter   float64   `json:"jitter"`
	Target   float64   `json:"target"`
}

// PointerAngle is the wheel angle under the fixed pointer once the wheel
// has stopped at Target.
func (r Rotation) PointerAngle() float64 {
	return normalize(360 - normalize(r.Target))
}

// PlanRotation computes the cumulative rotation that brings the winner's
// segment under the pointer. The result always moves forward from current.
func PlanRotation(current float64, weighted []WeightedTeam, winner int, jitter RandomSource) Rotation {
	segments := Segments(weighted)
	seg := segments[winner]

	landing := 360 - seg.Center()
	delta := landing - normalize(current)
	if delta <= 0 {
		delta += 360
	}
	target := current + FullTurns*360 + delta

	width := seg.Width()
	offset := jitter.Float64()*width*JitterFraction - width*JitterFraction/2

	return Rotation{
		Segments: segments,
		Winner:   seg,
		From:     current,
		Landing:  landing,
		Jitter:   offset,
		Target:   target + offset,
	}
}

func normalize(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return a
}
