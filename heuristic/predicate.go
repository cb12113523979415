package heuristic

import (
	"strings"

	"github.com/caio-sobreiro/bidsheuristic/types"
)

// Series is the view of a SeriesRecord that predicates see. Protocol is the
// lower-cased protocol name, computed once per record.
type Series struct {
	*types.SeriesRecord
	Protocol string
}

func newSeries(rec *types.SeriesRecord) *Series {
	return &Series{SeriesRecord: rec, Protocol: strings.ToLower(rec.ProtocolName)}
}

// Predicate tests a single series.
type Predicate func(s *Series) bool

// ProtocolContains matches when the lower-cased protocol name contains sub.
// sub is expected in lower case.
func ProtocolContains(sub string) Predicate {
	return func(s *Series) bool { return strings.Contains(s.Protocol, sub) }
}

// DescriptionContains is a case-sensitive substring test on the series description.
func DescriptionContains(sub string) Predicate {
	return func(s *Series) bool { return strings.Contains(s.SeriesDescription, sub) }
}

// DescriptionHasSuffix is a case-sensitive suffix test on the series description.
func DescriptionHasSuffix(suffix string) Predicate {
	return func(s *Series) bool { return strings.HasSuffix(s.SeriesDescription, suffix) }
}

// ImageType matches when token is one of the image type values.
func ImageType(token string) Predicate {
	return func(s *Series) bool { return s.HasImageType(token) }
}

// RepetitionTime matches an exact TR in seconds.
//
// The comparison is exact float equality with no tolerance. A TR encoded with
// different precision upstream (1.8500001) will silently fail to match.
func RepetitionTime(tr float64) Predicate {
	return func(s *Series) bool { return s.RepetitionTime == tr }
}

// Derived matches series flagged as derived.
func Derived() Predicate {
	return func(s *Series) bool { return s.IsDerived }
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(s *Series) bool { return !p(s) }
}

// All matches when every predicate matches. All() matches everything.
func All(ps ...Predicate) Predicate {
	return func(s *Series) bool {
		for _, p := range ps {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one predicate matches.
func Any(ps ...Predicate) Predicate {
	return func(s *Series) bool {
		for _, p := range ps {
			if p(s) {
				return true
			}
		}
		return false
	}
}
