package resolver

// Resolver is a static label-to-canonical-name mapping.
type Resolver struct {
	names map[string]string
}

// New builds a Resolver from a label→canonical mapping. Every canonical
// name is also entered as a key mapping to itself, which makes Resolve
// idempotent: resolving an already-resolved name returns it unchanged.
func New(names map[string]string) *Resolver {
	m := make(map[string]string, len(names)*2)
	for label, canonical := range names {
		m[label] = canonical
	}
	for _, canonical := range names {
		if _, ok := m[canonical]; !ok {
			m[canonical] = canonical
		}
	}
	return &Resolver{names: m}
}

// Default returns a resolver with no configured mappings; every label
// passes through unchanged.
func Default() *Resolver {
	return New(nil)
}

// Resolve returns the canonical storage name for label. Unmapped labels
// are returned unchanged.
func (r *Resolver) Resolve(label string) string {
	if canonical, ok := r.names[label]; ok {
		return canonical
	}
	return label
}

// Len reports the number of known labels, self-mappings included.
func (r *Resolver) Len() int {
	return len(r.names)
}
