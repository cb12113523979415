package sessions

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	herrors "github.com/caio-sobreiro/bidsheuristic/errors"
	"github.com/caio-sobreiro/bidsheuristic/interfaces"
	"github.com/caio-sobreiro/bidsheuristic/types"
)

// Index maps original session labels to their anonymized labels. It is
// read-only once built and safe for concurrent use.
type Index struct {
	project string
	labels  map[string]string
}

// NewIndex wraps an existing label mapping, e.g. one restored from a previous run.
func NewIndex(project string, labels map[string]string) *Index {
	ix := &Index{project: project, labels: make(map[string]string, len(labels))}
	for k, v := range labels {
		ix.labels[k] = v
	}
	return ix
}

// Project returns the project label the index was built for.
func (ix *Index) Project() string {
	return ix.project
}

// ReplaceSession returns the indexed label for an original session label. A
// label that was not seen while building yields *errors.SessionNotIndexedError.
func (ix *Index) ReplaceSession(label string) (string, error) {
	newLabel, ok := ix.labels[label]
	if !ok {
		return "", herrors.NewSessionNotIndexedError(ix.project, label)
	}
	return newLabel, nil
}

// Len returns the number of indexed sessions.
func (ix *Index) Len() int {
	return len(ix.labels)
}

// Map returns a copy of the label mapping.
func (ix *Index) Map() map[string]string {
	out := make(map[string]string, len(ix.labels))
	for k, v := range ix.labels {
		out[k] = v
	}
	return out
}

// BuildOption configures Build.
type BuildOption func(*builder)

// WithLogger overrides the logger used while building.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(b *builder) {
		b.logger = logger
	}
}

type builder struct {
	svc    interfaces.DataService
	opts   Options
	logger *slog.Logger
}

// Build queries svc for every subject of the project and its sessions, sorts
// each subject's sessions and assigns them sequential labels. Service errors
// are returned as they come; nothing is retried.
func Build(ctx context.Context, svc interfaces.DataService, opts Options, bopts ...BuildOption) (*Index, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	b := &builder{svc: svc, opts: opts}
	for _, o := range bopts {
		o(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b.build(ctx)
}

func (b *builder) build(ctx context.Context) (*Index, error) {
	project, err := b.svc.FindProject(ctx, b.opts.Project)
	if err != nil {
		return nil, fmt.Errorf("find project %s: %w", b.opts.Project, err)
	}
	if project == nil {
		return nil, fmt.Errorf("%w: %s", herrors.ErrProjectNotFound, b.opts.Project)
	}

	var groups [][]types.Subject
	switch b.opts.Subjects {
	case SubjectsFromSessions:
		groups, err = b.subjectsFromSessions(ctx, project)
	default:
		groups, err = b.subjectsFromProject(ctx, project)
	}
	if err != nil {
		return nil, err
	}

	ix := &Index{project: b.opts.Project, labels: make(map[string]string)}
	for _, group := range groups {
		var list []types.Session
		for _, subj := range group {
			sess, err := b.svc.SubjectSessions(ctx, subj.ID)
			if err != nil {
				return nil, fmt.Errorf("list sessions of subject %s: %w", subj.Label, err)
			}
			list = append(list, sess...)
		}

		sortSessions(list, b.opts.SortKey)
		for i, s := range list {
			label := b.opts.Label(i)
			if prev, ok := ix.labels[s.Label]; ok && prev != label {
				b.logger.WarnContext(ctx, "Session label seen twice, keeping the later assignment",
					"project", b.opts.Project,
					"session", s.Label,
					"previous", prev,
					"label", label)
			}
			ix.labels[s.Label] = label
		}
	}

	if len(ix.labels) == 0 {
		return nil, fmt.Errorf("%w: %s", herrors.ErrEmptyIndex, b.opts.Project)
	}

	b.logger.InfoContext(ctx, "Session index built",
		"project", b.opts.Project,
		"subjects", len(groups),
		"sessions", len(ix.labels),
		"sort_key", string(b.opts.SortKey),
		"first_ordinal", b.opts.FirstOrdinal)
	return ix, nil
}

// subjectsFromSessions resolves the parent subject of every project session,
// keeping first-seen order and dropping repeats.
func (b *builder) subjectsFromSessions(ctx context.Context, project *types.Project) ([][]types.Subject, error) {
	sessions, err := b.svc.ProjectSessions(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions of project %s: %w", project.Label, err)
	}

	seen := make(map[string]bool)
	var groups [][]types.Subject
	for _, s := range sessions {
		if s.SubjectID == "" {
			b.logger.WarnContext(ctx, "Session has no parent subject, skipping",
				"project", project.Label,
				"session", s.Label)
			continue
		}
		if seen[s.SubjectID] {
			continue
		}
		seen[s.SubjectID] = true

		subj, err := b.svc.GetSubject(ctx, s.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("resolve subject %s: %w", s.SubjectID, err)
		}
		if subj == nil {
			return nil, fmt.Errorf("resolve subject %s: %w", s.SubjectID,
				herrors.NewStatusError("get subject", http.StatusNotFound, "subject not found"))
		}
		groups = append(groups, []types.Subject{*subj})
	}
	return groups, nil
}

// subjectsFromProject lists the project's subjects, grouping labels that are
// equal once padded to SubjectPad.
func (b *builder) subjectsFromProject(ctx context.Context, project *types.Project) ([][]types.Subject, error) {
	subjects, err := b.svc.ProjectSubjects(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("list subjects of project %s: %w", project.Label, err)
	}

	pos := make(map[string]int)
	var groups [][]types.Subject
	for _, subj := range subjects {
		key := subj.ID
		if b.opts.SubjectPad > 0 {
			key = PadLabel(subj.Label, b.opts.SubjectPad)
		}
		i, ok := pos[key]
		if !ok {
			pos[key] = len(groups)
			groups = append(groups, []types.Subject{subj})
			continue
		}
		groups[i] = append(groups[i], subj)
	}
	return groups, nil
}

// sortSessions orders sessions in place. The sort is stable, so sessions with
// equal keys keep the order the service returned them in. With SortByTimestamp,
// sessions lacking a timestamp go after all timestamped ones.
func sortSessions(list []types.Session, key SortKey) {
	switch key {
	case SortByLabel:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Label < list[j].Label
		})
	case SortByTimestamp:
		sort.SliceStable(list, func(i, j int) bool {
			ti, tj := list[i].Timestamp, list[j].Timestamp
			switch {
			case ti == nil:
				return false
			case tj == nil:
				return true
			default:
				return ti.Before(*tj)
			}
		})
	}
}

// Lazy builds an Index on first use and keeps it for the life of the process.
// A failed build is not cached; the next call tries again.
type Lazy struct {
	svc   interfaces.DataService
	opts  Options
	bopts []BuildOption

	mu sync.Mutex
	ix *Index
}

// NewLazy returns a Lazy that builds with svc and opts when first asked.
func NewLazy(svc interfaces.DataService, opts Options, bopts ...BuildOption) *Lazy {
	return &Lazy{svc: svc, opts: opts, bopts: bopts}
}

// Index returns the cached index, building it if needed.
func (l *Lazy) Index(ctx context.Context) (*Index, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ix != nil {
		return l.ix, nil
	}
	ix, err := Build(ctx, l.svc, l.opts, l.bopts...)
	if err != nil {
		return nil, err
	}
	l.ix = ix
	return ix, nil
}

// ReplaceSession builds the index if needed and looks up label.
func (l *Lazy) ReplaceSession(ctx context.Context, label string) (string, error) {
	ix, err := l.Index(ctx)
	if err != nil {
		return "", err
	}
	return ix.ReplaceSession(label)
}
