package algorithms

// Result maps node IDs to computed values. Centrality algorithms produce
// real-valued scores; community algorithms produce integer community labels
// stored as floats so that both kinds flow through the same contract and
// write-back path.
type Result map[string]float64

// Partition maps node IDs to community labels. Labels are dense integers
// starting at 0 but are opaque: they are not stable across runs or across
// algorithms.
type Partition map[string]int

// Partition converts a community-detection result into a Partition by
// truncating the stored labels.
func (r Result) Partition() Partition {
	p := make(Partition, len(r))
	for id, label := range r {
		p[id] = int(label)
	}
	return p
}

// Result converts a partition back to the generic result form.
func (p Partition) Result() Result {
	r := make(Result, len(p))
	for id, label := range p {
		r[id] = float64(label)
	}
	return r
}

// Params carries per-algorithm tuning parameters by name.
type Params map[string]any

// Float returns a float parameter or the fallback when absent or mistyped.
func (p Params) Float(key string, fallback float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

// Int returns an integer parameter or the fallback when absent or mistyped.
func (p Params) Int(key string, fallback int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
