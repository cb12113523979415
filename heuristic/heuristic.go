package heuristic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caio-sobreiro/bidsheuristic/types"
)

// Option configures a Heuristic.
type Option func(*Heuristic)

// WithLogger overrides the logger used for unrecognized-series reports.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Heuristic) {
		h.logger = logger
	}
}

// WithUnrecognizedReport makes Classify log every series no rule claims.
func WithUnrecognizedReport() Option {
	return func(h *Heuristic) {
		h.reportUnrecognized = true
	}
}

// WithIntendedFor declares the scans a field-map key applies to. A later
// declaration for the same template replaces the earlier one.
func WithIntendedFor(key types.OutputKey, targets ...string) Option {
	return func(h *Heuristic) {
		if h.intendedFor == nil {
			h.intendedFor = make(map[string][]string)
		}
		h.intendedFor[key.Template] = append([]string(nil), targets...)
	}
}

// Heuristic is the classification table of one project.
//
// A Heuristic holds no mutable state after New returns; Classify may be
// called concurrently.
type Heuristic struct {
	project            string
	keys               []types.OutputKey
	rules              []Rule
	intendedFor        map[string][]string
	reportUnrecognized bool
	logger             *slog.Logger
}

// New builds a Heuristic from its declared keys and ordered rules. Every key a
// rule routes to must be declared.
func New(project string, keys []types.OutputKey, rules []Rule, opts ...Option) (*Heuristic, error) {
	declared := make(map[string]bool, len(keys))
	for _, k := range keys {
		declared[k.Template] = true
	}
	for i := range rules {
		if err := rules[i].validate(); err != nil {
			return nil, err
		}
		for _, k := range rules[i].targets() {
			if !declared[k.Template] {
				return nil, fmt.Errorf("rule %q routes to undeclared key %q", rules[i].Name, k.Template)
			}
		}
	}

	h := &Heuristic{
		project: project,
		keys:    append([]types.OutputKey(nil), keys...),
		rules:   append([]Rule(nil), rules...),
	}
	for _, opt := range opts {
		opt(h)
	}
	for tmpl := range h.intendedFor {
		if !declared[tmpl] {
			return nil, fmt.Errorf("IntendedFor references undeclared key %q", tmpl)
		}
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h, nil
}

// Project returns the project label the heuristic was written for.
func (h *Heuristic) Project() string {
	return h.project
}

// Keys returns the declared output keys in declaration order.
func (h *Heuristic) Keys() []types.OutputKey {
	return append([]types.OutputKey(nil), h.keys...)
}

// Rules returns the rule table in evaluation order.
func (h *Heuristic) Rules() []Rule {
	return append([]Rule(nil), h.rules...)
}

// Classify assigns each record to at most one bucket. The first rule whose
// predicate matches claims the record. Records nothing claims are recorded in
// Result.Unrecognized and, if enabled, logged.
func (h *Heuristic) Classify(ctx context.Context, records []types.SeriesRecord) *types.Result {
	result := types.NewResult(h.keys...)

	for i := range records {
		s := newSeries(&records[i])
		rule, ok := h.match(s)
		if !ok {
			result.Unrecognized = append(result.Unrecognized, s.SeriesID)
			if h.reportUnrecognized {
				h.logger.InfoContext(ctx, "Series not recognized",
					"project", h.project,
					"series_id", s.SeriesID,
					"protocol", s.ProtocolName,
					"description", s.SeriesDescription)
			}
			continue
		}

		key, ok := rule.target(s)
		if !ok {
			h.logger.DebugContext(ctx, "Series claimed without a bucket",
				"project", h.project,
				"rule", rule.Name,
				"series_id", s.SeriesID,
				"protocol", s.ProtocolName)
			continue
		}
		result.Append(key, s.SeriesID)
	}

	return result
}

// Match returns the name of the rule that claims rec, if any.
func (h *Heuristic) Match(rec types.SeriesRecord) (string, bool) {
	rule, ok := h.match(newSeries(&rec))
	if !ok {
		return "", false
	}
	return rule.Name, true
}

func (h *Heuristic) match(s *Series) (*Rule, bool) {
	for i := range h.rules {
		if h.rules[i].When(s) {
			return &h.rules[i], true
		}
	}
	return nil, false
}

// IntendedFor returns the targets declared for key, or nil.
func (h *Heuristic) IntendedFor(key types.OutputKey) []string {
	targets, ok := h.intendedFor[key.Template]
	if !ok {
		return nil
	}
	return append([]string(nil), targets...)
}

// IntendedForTable returns a copy of the whole IntendedFor table keyed by template.
func (h *Heuristic) IntendedForTable() map[string][]string {
	out := make(map[string][]string, len(h.intendedFor))
	for k, v := range h.intendedFor {
		out[k] = append([]string(nil), v...)
	}
	return out
}
