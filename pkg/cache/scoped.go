package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating cache namespaces when
// several deployments share one Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// RenderKey generates a prefixed key for a cached still render.
func (k *ScopedKeyer) RenderKey(sourceHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(sourceHash, opts)
}

// AnimationKey generates a prefixed key for a cached animation.
func (k *ScopedKeyer) AnimationKey(sourceHash string, opts AnimationKeyOpts) string {
	return k.prefix + k.inner.AnimationKey(sourceHash, opts)
}
