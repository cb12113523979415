// Package interfaces contains the capabilities the heuristics consume
package interfaces

import (
	"context"

	"github.com/caio-sobreiro/bidsheuristic/types"
)

// DataService is the remote research-data platform holding the project hierarchy.
//
// Implementations must not retry; errors are returned to the caller as is.
type DataService interface {
	// Project lookup
	FindProject(ctx context.Context, label string) (*types.Project, error)

	// Subject operations
	ProjectSubjects(ctx context.Context, projectID string) ([]types.Subject, error)
	GetSubject(ctx context.Context, subjectID string) (*types.Subject, error)

	// Session operations
	ProjectSessions(ctx context.Context, projectID string) ([]types.Session, error)
	SubjectSessions(ctx context.Context, subjectID string) ([]types.Session, error)
}
