// Package projects holds the per-project heuristics and a registry that
// resolves a project label to its classification table and session index
// options.
package projects

import (
	"fmt"
	"sort"

	herrors "github.com/caio-sobreiro/bidsheuristic/errors"
	"github.com/caio-sobreiro/bidsheuristic/heuristic"
	"github.com/caio-sobreiro/bidsheuristic/sessions"
)

// Project bundles what the conversion engine needs for one project.
type Project struct {
	Heuristic *heuristic.Heuristic
	Index     sessions.Options
}

// Label returns the project label.
func (p *Project) Label() string {
	return p.Heuristic.Project()
}

// Registry maps project labels to their definitions.
//
// Example usage:
//
//	registry, err := projects.Default()
//	project, err := registry.Lookup("PNC_LG_810336")
//	result := project.Heuristic.Classify(ctx, records)
type Registry struct {
	projects map[string]*Project
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		projects: make(map[string]*Project),
	}
}

// Register adds a project. Registering the same label again replaces the
// previous definition.
func (r *Registry) Register(p *Project) {
	r.projects[p.Label()] = p
}

// Unregister removes a project.
func (r *Registry) Unregister(label string) {
	delete(r.projects, label)
}

// Lookup returns the project registered under label, or an error wrapping
// ErrUnknownProject.
func (r *Registry) Lookup(label string) (*Project, error) {
	p, ok := r.projects[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", herrors.ErrUnknownProject, label)
	}
	return p, nil
}

// Has returns true if a project is registered under label.
func (r *Registry) Has(label string) bool {
	_, ok := r.projects[label]
	return ok
}

// Labels returns the registered project labels, sorted.
func (r *Registry) Labels() []string {
	labels := make([]string, 0, len(r.projects))
	for label := range r.projects {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Default returns a registry holding every built-in project. opts are passed
// to each heuristic (typically heuristic.WithLogger).
func Default(opts ...heuristic.Option) (*Registry, error) {
	r := NewRegistry()
	for _, build := range []func(...heuristic.Option) (*Project, error){Conte, PNC} {
		p, err := build(opts...)
		if err != nil {
			return nil, err
		}
		r.Register(p)
	}
	return r, nil
}
