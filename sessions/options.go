// Package sessions builds the per-project session index: every session of a
// subject gets an anonymized, time-ordered label "<Prefix><ordinal>".
package sessions

import (
	"fmt"
	"strings"

	herrors "github.com/caio-sobreiro/bidsheuristic/errors"
)

// SortKey selects how a subject's sessions are put in chronological order.
type SortKey string

const (
	SortByLabel     SortKey = "label"
	SortByTimestamp SortKey = "timestamp"
)

// SubjectSource selects how the subjects of a project are discovered.
type SubjectSource string

const (
	// SubjectsFromSessions lists the project's sessions and resolves each
	// session's parent subject.
	SubjectsFromSessions SubjectSource = "sessions"
	// SubjectsFromProject lists the project's subjects directly.
	SubjectsFromProject SubjectSource = "subjects"
)

// Options describes how one project's index is built.
type Options struct {
	Project      string        `json:"project"`
	Prefix       string        `json:"prefix"`
	SortKey      SortKey       `json:"sort_key"`
	FirstOrdinal int           `json:"first_ordinal"`
	Subjects     SubjectSource `json:"subjects"`

	// SubjectPad groups subjects whose labels are equal once left-padded with
	// zeros to this width ("123" and "000123" at width 6). Zero disables grouping.
	SubjectPad int `json:"subject_pad,omitempty"`
}

// Validate checks the options, returning an error wrapping ErrInvalidOptions.
func (o Options) Validate() error {
	var problems []string
	if o.Project == "" {
		problems = append(problems, "project is required")
	}
	if o.Prefix == "" {
		problems = append(problems, "prefix is required")
	}
	switch o.SortKey {
	case SortByLabel, SortByTimestamp:
	default:
		problems = append(problems, fmt.Sprintf("sort_key %q must be label or timestamp", o.SortKey))
	}
	if o.FirstOrdinal < 1 {
		problems = append(problems, fmt.Sprintf("first_ordinal %d must be at least 1", o.FirstOrdinal))
	}
	switch o.Subjects {
	case SubjectsFromSessions, SubjectsFromProject:
	default:
		problems = append(problems, fmt.Sprintf("subjects %q must be sessions or subjects", o.Subjects))
	}
	if o.SubjectPad < 0 {
		problems = append(problems, "subject_pad must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", herrors.ErrInvalidOptions, strings.Join(problems, "; "))
	}
	return nil
}

// Label returns the index label for the session at zero-based position i of a
// subject's sorted session list.
func (o Options) Label(i int) string {
	return fmt.Sprintf("%s%d", o.Prefix, o.FirstOrdinal+i)
}

// PadLabel left-pads label with zeros to width, like Python's str.zfill for
// unsigned labels.
func PadLabel(label string, width int) string {
	if len(label) >= width {
		return label
	}
	return strings.Repeat("0", width-len(label)) + label
}
