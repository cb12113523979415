// Package flywheel implements interfaces.DataService against the Flywheel
// REST API.
package flywheel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	herrors "github.com/caio-sobreiro/bidsheuristic/errors"
	"github.com/caio-sobreiro/bidsheuristic/interfaces"
	"github.com/caio-sobreiro/bidsheuristic/types"
)

var _ interfaces.DataService = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. Timeouts belong here or on the
// request context; the Flywheel client itself never retries.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger overrides the logger used by the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client talks to one Flywheel site.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the API rooted at baseURL (for example
// https://upenn.flywheel.io/api).
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("flywheel: api key is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("flywheel: bad base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("flywheel: base URL %q must be absolute", baseURL)
	}

	c := &Client{baseURL: u, apiKey: apiKey}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// SplitAPIKey splits a site-qualified key "host[:port]:secret" into the API
// base URL and the bare key. Keys without a host return an empty URL.
func SplitAPIKey(key string) (baseURL, secret string) {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return "", key
	}
	return "https://" + key[:i] + "/api", key[i+1:]
}

type projectJSON struct {
	ID    string `json:"_id"`
	Label string `json:"label"`
}

type subjectJSON struct {
	ID      string `json:"_id"`
	Label   string `json:"label"`
	Code    string `json:"code"`
	Project string `json:"project"`
}

type sessionJSON struct {
	ID        string     `json:"_id"`
	Label     string     `json:"label"`
	Timestamp *time.Time `json:"timestamp"`
	Project   string     `json:"project"`
	Subject   struct {
		ID string `json:"_id"`
	} `json:"subject"`
	Parents struct {
		Project string `json:"project"`
		Subject string `json:"subject"`
	} `json:"parents"`
}

func (p projectJSON) toProject() types.Project {
	return types.Project{ID: p.ID, Label: p.Label}
}

func (s subjectJSON) toSubject() types.Subject {
	label := s.Label
	if label == "" {
		label = s.Code
	}
	return types.Subject{ID: s.ID, Label: label, Code: s.Code, ProjectID: s.Project}
}

func (s sessionJSON) toSession() types.Session {
	subjectID := s.Parents.Subject
	if subjectID == "" {
		subjectID = s.Subject.ID
	}
	projectID := s.Parents.Project
	if projectID == "" {
		projectID = s.Project
	}
	return types.Session{
		ID:        s.ID,
		Label:     s.Label,
		Timestamp: s.Timestamp,
		SubjectID: subjectID,
		ProjectID: projectID,
	}
}

// FindProject returns the first project whose label equals label exactly.
func (c *Client) FindProject(ctx context.Context, label string) (*types.Project, error) {
	q := url.Values{}
	q.Set("filter", fmt.Sprintf("label=%q", label))
	q.Set("limit", "1")

	var projects []projectJSON
	if err := c.get(ctx, "find project", "projects", q, &projects); err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.Label == label {
			project := p.toProject()
			return &project, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", herrors.ErrProjectNotFound, label)
}

// ProjectSubjects lists the subjects of a project.
func (c *Client) ProjectSubjects(ctx context.Context, projectID string) ([]types.Subject, error) {
	var raw []subjectJSON
	if err := c.get(ctx, "list project subjects", "projects/"+url.PathEscape(projectID)+"/subjects", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]types.Subject, 0, len(raw))
	for _, s := range raw {
		out = append(out, s.toSubject())
	}
	return out, nil
}

// GetSubject resolves a subject reference.
func (c *Client) GetSubject(ctx context.Context, subjectID string) (*types.Subject, error) {
	var raw subjectJSON
	if err := c.get(ctx, "get subject", "subjects/"+url.PathEscape(subjectID), nil, &raw); err != nil {
		return nil, err
	}
	subj := raw.toSubject()
	return &subj, nil
}

// ProjectSessions lists the sessions of a project.
func (c *Client) ProjectSessions(ctx context.Context, projectID string) ([]types.Session, error) {
	return c.sessions(ctx, "list project sessions", "projects/"+url.PathEscape(projectID)+"/sessions")
}

// SubjectSessions lists the sessions of a subject.
func (c *Client) SubjectSessions(ctx context.Context, subjectID string) ([]types.Session, error) {
	return c.sessions(ctx, "list subject sessions", "subjects/"+url.PathEscape(subjectID)+"/sessions")
}

func (c *Client) sessions(ctx context.Context, op, path string) ([]types.Session, error) {
	var raw []sessionJSON
	if err := c.get(ctx, op, path, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]types.Session, 0, len(raw))
	for _, s := range raw {
		out = append(out, s.toSession())
	}
	return out, nil
}

// maxErrorBody bounds how much of an error response ends up in the message.
const maxErrorBody = 512

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return herrors.NewServiceError(op, err)
	}
	req.Header.Set("Authorization", "scitran-user "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Flywheel request failed", "op", op, "path", path, "error", err)
		return herrors.NewServiceError(op, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Flywheel request",
		"op", op,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return herrors.NewStatusError(op, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return herrors.NewServiceError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
