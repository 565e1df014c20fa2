package regionroute

import (
	"github.com/matzehuels/regionroute/pkg/roadgraph"
	"github.com/matzehuels/regionroute/pkg/route"
	"github.com/matzehuels/regionroute/pkg/skeleton"
)

type nodePair struct {
	from, to roadgraph.NodeID
}

// MultiRouter computes and caches skeleton-restricted paths between node
// sets. A retargetable skeleton is activated for every pair and queried one
// path at a time; otherwise a batch oracle answers each source in one sweep.
type MultiRouter struct {
	oracle route.Oracle
	skel   skeleton.Skeleton
	opts   []route.QueryOption
	paths  map[nodePair]*route.Path
}

// NewMultiRouter restricts searches of o to skel. opts apply to every query;
// the skeleton filter is appended last.
func NewMultiRouter(o route.Oracle, skel skeleton.Skeleton, opts ...route.QueryOption) *MultiRouter {
	return &MultiRouter{
		oracle: o,
		skel:   skel,
		opts:   append(append([]route.QueryOption(nil), opts...), route.WithFilter(skel)),
		paths:  make(map[nodePair]*route.Path),
	}
}

// OneToMany routes from from to every target not cached yet.
func (m *MultiRouter) OneToMany(from roadgraph.NodeID, targets []roadgraph.NodeID) error {
	var missing []roadgraph.NodeID
	for _, t := range targets {
		if _, ok := m.paths[nodePair{from, t}]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if rt, ok := m.skel.(skeleton.Retargetable); ok {
		for _, t := range missing {
			rt.Activate(from, t)
			p, err := m.oracle.CalcPath(from, t, m.opts...)
			if err != nil {
				return err
			}
			m.paths[nodePair{from, t}] = p
		}
		return nil
	}

	if b, ok := m.oracle.(route.BatchOracle); ok {
		res, err := b.OneToMany(from, missing, m.opts...)
		if err != nil {
			return err
		}
		for _, t := range missing {
			m.paths[nodePair{from, t}] = res[t]
		}
		return nil
	}

	for _, t := range missing {
		p, err := m.oracle.CalcPath(from, t, m.opts...)
		if err != nil {
			return err
		}
		m.paths[nodePair{from, t}] = p
	}
	return nil
}

// ManyToMany runs OneToMany for every source.
func (m *MultiRouter) ManyToMany(sources, targets []roadgraph.NodeID) error {
	for _, s := range sources {
		if err := m.OneToMany(s, targets); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the cached path from from to to.
func (m *MultiRouter) Path(from, to roadgraph.NodeID) (*route.Path, bool) {
	p, ok := m.paths[nodePair{from, to}]
	return p, ok
}

// Len returns the number of cached pairs.
func (m *MultiRouter) Len() int { return len(m.paths) }
