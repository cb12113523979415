// Package heuristic implements heudiconv-style series classification: output
// keys, an ordered first-match-wins rule table, and the label helpers the
// conversion engine calls while filling in path templates.
package heuristic

import (
	"fmt"
	"strings"

	herrors "github.com/caio-sobreiro/bidsheuristic/errors"
	"github.com/caio-sobreiro/bidsheuristic/types"
)

// KeyOption configures an OutputKey built by CreateKey.
type KeyOption func(*types.OutputKey)

// WithOutTypes overrides the default {"nii.gz"} output formats.
func WithOutTypes(outTypes ...string) KeyOption {
	return func(k *types.OutputKey) {
		if len(outTypes) > 0 {
			k.OutTypes = append([]string(nil), outTypes...)
		}
	}
}

// WithAnnotationClasses attaches annotation classes to the key.
func WithAnnotationClasses(classes ...string) KeyOption {
	return func(k *types.OutputKey) {
		k.AnnotationClasses = append([]string(nil), classes...)
	}
}

// CreateKey builds an OutputKey for template. An empty template is a
// configuration error wrapping ErrInvalidTemplate.
func CreateKey(template string, opts ...KeyOption) (types.OutputKey, error) {
	if template == "" {
		return types.OutputKey{}, herrors.ErrInvalidTemplate
	}
	key := types.OutputKey{
		Template: template,
		OutTypes: []string{types.DefaultOutType},
	}
	for _, opt := range opts {
		opt(&key)
	}
	return key, nil
}

// MustCreateKey is like CreateKey but panics on error. It is meant for
// package-level key tables.
func MustCreateKey(template string, opts ...KeyOption) types.OutputKey {
	key, err := CreateKey(template, opts...)
	if err != nil {
		panic(fmt.Sprintf("heuristic: CreateKey(%q): %v", template, err))
	}
	return key
}

// ReplaceSubject strips leading zeros from a subject label.
func ReplaceSubject(label string) string {
	return strings.TrimLeft(label, "0")
}
