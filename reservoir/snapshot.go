package reservoir

import (
	"math"
	"slices"
)

// Snapshot is an immutable point-in-time copy of a reservoir's retained
// values, sorted ascending. All statistics are computed against this copy, so
// they stay consistent with each other even while the reservoir keeps moving.
type Snapshot struct {
	values []int64
}

// NewSnapshot copies and sorts the given values.
func NewSnapshot(values []int64) *Snapshot {
	vs := make([]int64, len(values))
	copy(vs, values)
	slices.Sort(vs)
	return &Snapshot{values: vs}
}

// Values returns a copy of the snapshot's values, sorted ascending.
func (s *Snapshot) Values() []int64 {
	vs := make([]int64, len(s.values))
	copy(vs, s.values)
	return vs
}

func (s *Snapshot) Size() int {
	return len(s.values)
}

func (s *Snapshot) Min() int64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.values[0]
}

func (s *Snapshot) Max() int64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.values[len(s.values)-1]
}

func (s *Snapshot) Sum() int64 {
	var sum int64
	for _, v := range s.values {
		sum += v
	}
	return sum
}

func (s *Snapshot) Mean() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return float64(s.Sum()) / float64(len(s.values))
}

func (s *Snapshot) Variance() float64 {
	if len(s.values) <= 1 {
		return 0
	}
	mean := s.Mean()
	var sum float64
	for _, v := range s.values {
		d := float64(v) - mean
		sum += d * d
	}
	return sum / float64(len(s.values)-1)
}

func (s *Snapshot) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Percentile returns the value at quantile p in [0,1], interpolating between
// neighboring samples.
func (s *Snapshot) Percentile(p float64) float64 {
	return s.Percentiles([]float64{p})[0]
}

func (s *Snapshot) Percentiles(ps []float64) []float64 {
	scores := make([]float64, len(ps))
	size := len(s.values)
	if size == 0 {
		return scores
	}
	for i, p := range ps {
		pos := p * float64(size+1)
		switch {
		case pos < 1.0:
			scores[i] = float64(s.values[0])
		case pos >= float64(size):
			scores[i] = float64(s.values[size-1])
		default:
			lower := float64(s.values[int(pos)-1])
			upper := float64(s.values[int(pos)])
			scores[i] = lower + (pos-math.Floor(pos))*(upper-lower)
		}
	}
	return scores
}
