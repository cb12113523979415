package types

// Result maps every declared OutputKey to the series IDs assigned to it, in
// encounter order. Keys sharing a template share a bucket.
type Result struct {
	keys         []OutputKey
	series       map[string][]string
	Unrecognized []string
}

// NewResult creates a result with an empty bucket for each key. Duplicate
// templates are collapsed onto the first declaration.
func NewResult(keys ...OutputKey) *Result {
	r := &Result{
		keys:   make([]OutputKey, 0, len(keys)),
		series: make(map[string][]string, len(keys)),
	}
	for _, k := range keys {
		if _, ok := r.series[k.Template]; ok {
			continue
		}
		r.keys = append(r.keys, k)
		r.series[k.Template] = []string{}
	}
	return r
}

// Keys returns the declared keys in declaration order.
func (r *Result) Keys() []OutputKey {
	out := make([]OutputKey, len(r.keys))
	copy(out, r.keys)
	return out
}

// Has reports whether key was declared.
func (r *Result) Has(key OutputKey) bool {
	_, ok := r.series[key.Template]
	return ok
}

// Append adds a series ID to the bucket of key. It returns false if key was
// never declared.
func (r *Result) Append(key OutputKey, seriesID string) bool {
	ids, ok := r.series[key.Template]
	if !ok {
		return false
	}
	r.series[key.Template] = append(ids, seriesID)
	return true
}

// Series returns the series IDs assigned to key (nil if undeclared).
func (r *Result) Series(key OutputKey) []string {
	ids, ok := r.series[key.Template]
	if !ok {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Lookup returns the key whose bucket holds seriesID.
func (r *Result) Lookup(seriesID string) (OutputKey, bool) {
	for _, k := range r.keys {
		for _, id := range r.series[k.Template] {
			if id == seriesID {
				return k, true
			}
		}
	}
	return OutputKey{}, false
}

// Len returns the number of classified series across all buckets.
func (r *Result) Len() int {
	n := 0
	for _, ids := range r.series {
		n += len(ids)
	}
	return n
}
