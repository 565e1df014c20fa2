package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating deployments or graph
// versions that share one backend.
//
//	shared := NewScopedKeyer(NewDefaultKeyer(), "berlin:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CellsKey generates a prefixed key for cell caching.
func (k *ScopedKeyer) CellsKey(graphHash string, opts CellsKeyOpts) string {
	return k.prefix + k.inner.CellsKey(graphHash, opts)
}

// RouteKey generates a prefixed key for route caching.
func (k *ScopedKeyer) RouteKey(graphHash string, opts RouteKeyOpts) string {
	return k.prefix + k.inner.RouteKey(graphHash, opts)
}
