package energy

import "math"

// SyncPoint marks a strong beat: the time of an energy peak and its height
type SyncPoint struct {
	Time     float64
	Strength float64
}

// SyncPoints returns the local maxima of the profile at or above threshold,
// in time order
func (p *Profile) SyncPoints(threshold float64) []SyncPoint {
	var points []SyncPoint
	n := len(p.Values)
	for i, v := range p.Values {
		if v < threshold {
			continue
		}
		if i > 0 && p.Values[i-1] > v {
			continue
		}
		if i+1 < n && p.Values[i+1] >= v {
			continue
		}
		points = append(points, SyncPoint{Time: float64(i) * p.HopSeconds, Strength: v})
	}
	return points
}

// Nearest returns the index of the sync point closest to t, considering
// only points strictly less than window seconds away
func Nearest(points []SyncPoint, t, window float64) (int, bool) {
	best, bestD := -1, window
	for i, sp := range points {
		d := math.Abs(sp.Time - t)
		if d < bestD {
			best, bestD = i, d
		}
	}
	return best, best >= 0
}
