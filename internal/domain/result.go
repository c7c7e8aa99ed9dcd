package domain

// Result is the outcome of one independent unit of work (a category search,
// an item enrichment). Exactly one of Output or Err is meaningful.
type Result[In, Out any] struct {
	Input  In
	Output Out
	Err    error
}

// OK reports whether the unit succeeded.
func (r Result[In, Out]) OK() bool {
	return r.Err == nil
}

// Partition splits results into the outputs to keep and the failed results,
// preserving order in both.
func Partition[In, Out any](results []Result[In, Out]) (kept []Out, dropped []Result[In, Out]) {
	kept = make([]Out, 0, len(results))
	for _, r := range results {
		if r.OK() {
			kept = append(kept, r.Output)
			continue
		}
		dropped = append(dropped, r)
	}
	return kept, dropped
}
