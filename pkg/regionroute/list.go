package regionroute

import (
	"slices"
	"sort"

	"github.com/matzehuels/regionroute/pkg/errors"
)

// Metric selects the quantity compared when pruning candidates.
type Metric string

const (
	MetricTime     Metric = "time"
	MetricDistance Metric = "distance"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	if err := errors.ValidateOneOf("prune metric", s, string(MetricTime), string(MetricDistance)); err != nil {
		return "", err
	}
	return Metric(s), nil
}

func (m Metric) inROI(c *Candidate) float64 {
	if m == MetricDistance {
		return c.DistanceInROI()
	}
	return c.TimeInROI()
}

func (m Metric) total(c *Candidate) float64 {
	if m == MetricDistance {
		return c.Distance()
	}
	return c.Time()
}

// ErrNotSortedByROI is returned by SelectBest when the list is not ordered
// by value in the ROI, descending.
var ErrNotSortedByROI = errors.New(errors.ErrCodePrecondition, "candidates must be sorted by value in ROI, descending")

// keepFraction of the candidates with the most value in the ROI survive
// into gain ranking.
const keepFraction = 0.75

// CandidateList is an ordered set of candidates.
type CandidateList []*Candidate

// SortByROI orders candidates by value in the ROI, descending. Ties keep
// their relative order.
func (l CandidateList) SortByROI(m Metric) {
	sort.SliceStable(l, func(i, j int) bool { return m.inROI(l[i]) > m.inROI(l[j]) })
}

// IsSortedByROI reports whether l is ordered as SortByROI leaves it.
func (l CandidateList) IsSortedByROI(m Metric) bool {
	for i := 1; i < len(l); i++ {
		if m.inROI(l[i]) > m.inROI(l[i-1]) {
			return false
		}
	}
	return true
}

// PruneDominated sorts l by value in the ROI and removes every candidate
// that a kept candidate beats on both counts: strictly less in total and
// strictly more in the ROI. The surviving set does not depend on the input
// order.
func (l *CandidateList) PruneDominated(m Metric) {
	l.SortByROI(m)
	kept := (*l)[:0]
	for _, c := range *l {
		dominated := false
		for _, k := range kept {
			if m.total(k) < m.total(c) && m.inROI(k) > m.inROI(c) {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, c)
		}
	}
	clear((*l)[len(kept):])
	*l = kept
}

// SelectBest returns up to k candidates by descending gain, drawn from the
// top three quarters of l by value in the ROI. Candidates whose merged path
// revisits a node are only used when not enough others remain. l must be
// sorted by value in the ROI.
func (l CandidateList) SelectBest(k int, m Metric) (CandidateList, error) {
	if !l.IsSortedByROI(m) {
		return nil, ErrNotSortedByROI
	}
	if len(l) == 0 || k <= 0 {
		return nil, nil
	}
	keep := max(1, int(float64(len(l))*keepFraction))
	top := slices.Clone(l[:keep])
	sort.SliceStable(top, func(i, j int) bool { return top[i].Gain() > top[j].Gain() })

	var clean, crossing CandidateList
	for _, c := range top {
		if c.IsDetourSelfIntersecting() {
			crossing = append(crossing, c)
		} else {
			clean = append(clean, c)
		}
	}
	out := append(clean, crossing...)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
