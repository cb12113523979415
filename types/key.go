// Package types contains the data model shared by the classifier and the session indexer
package types

import "strings"

// DefaultOutType is the conversion output format used when a key declares none.
const DefaultOutType = "nii.gz"

// Template placeholders filled in by the conversion engine.
const (
	PlaceholderSubject = "{subject}"
	PlaceholderSession = "{session}"
	PlaceholderItem    = "{item}"
)

// OutputKey names one output category: a path template plus the formats the
// conversion engine should produce for it. Keys are compared by template only.
type OutputKey struct {
	Template          string
	OutTypes          []string
	AnnotationClasses []string
}

// Equal reports whether two keys address the same bucket.
func (k OutputKey) Equal(other OutputKey) bool {
	return k.Template == other.Template
}

// String returns the template.
func (k OutputKey) String() string {
	return k.Template
}

// HasPlaceholder reports whether the template references the given placeholder,
// e.g. PlaceholderItem.
func (k OutputKey) HasPlaceholder(p string) bool {
	return strings.Contains(k.Template, p)
}
