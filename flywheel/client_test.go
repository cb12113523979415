package flywheel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	herrors "github.com/caio-sobreiro/bidsheuristic/errors"
	"github.com/caio-sobreiro/bidsheuristic/sessions"
)

const testKey = "secret"

// newTestServer serves a tiny Flywheel hierarchy: one project, two subjects,
// three sessions.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filter") == `label="PNC_LG_810336"` {
			io.WriteString(w, `[{"_id":"p1","label":"PNC_LG_810336"}]`)
			return
		}
		io.WriteString(w, `[]`)
	})
	mux.HandleFunc("/api/projects/p1/subjects", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"_id":"s1","label":"123","code":"123"},{"_id":"s2","label":"000456"}]`)
	})
	mux.HandleFunc("/api/projects/p1/sessions", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"_id":"x1","label":"a","parents":{"project":"p1","subject":"s1"}}]`)
	})
	mux.HandleFunc("/api/subjects/s1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"_id":"s1","label":"123"}`)
	})
	mux.HandleFunc("/api/subjects/s1/sessions", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"_id":"x2","label":"second","timestamp":"2019-05-02T10:00:00Z","parents":{"subject":"s1"}},
			{"_id":"x1","label":"first","timestamp":"2018-01-15T09:30:00Z","parents":{"subject":"s1"}}
		]`)
	})
	mux.HandleFunc("/api/subjects/s2/sessions", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"_id":"x3","label":"only","timestamp":"2020-02-02T00:00:00Z","subject":{"_id":"s2"}}]`)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "scitran-user "+testKey {
			http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, key string) *Client {
	t.Helper()
	c, err := NewClient(srv.URL+"/api/", key, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestFindProject(t *testing.T) {
	c := newTestClient(t, newTestServer(t), testKey)

	p, err := c.FindProject(context.Background(), "PNC_LG_810336")
	if err != nil {
		t.Fatalf("FindProject() error = %v", err)
	}
	if p.ID != "p1" {
		t.Errorf("ID = %q, want p1", p.ID)
	}

	_, err = c.FindProject(context.Background(), "MISSING")
	if !errors.Is(err, herrors.ErrProjectNotFound) {
		t.Errorf("FindProject(MISSING) error = %v, want ErrProjectNotFound", err)
	}
}

func TestSubjectsAndSessions(t *testing.T) {
	c := newTestClient(t, newTestServer(t), testKey)
	ctx := context.Background()

	subjects, err := c.ProjectSubjects(ctx, "p1")
	if err != nil {
		t.Fatalf("ProjectSubjects() error = %v", err)
	}
	if len(subjects) != 2 || subjects[1].Label != "000456" {
		t.Errorf("ProjectSubjects() = %+v", subjects)
	}

	sess, err := c.SubjectSessions(ctx, "s1")
	if err != nil {
		t.Fatalf("SubjectSessions() error = %v", err)
	}
	if len(sess) != 2 {
		t.Fatalf("SubjectSessions() returned %d sessions, want 2", len(sess))
	}
	want := time.Date(2018, time.January, 15, 9, 30, 0, 0, time.UTC)
	if sess[1].Timestamp == nil || !sess[1].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", sess[1].Timestamp, want)
	}
	if sess[1].SubjectID != "s1" {
		t.Errorf("SubjectID = %q, want s1", sess[1].SubjectID)
	}

	other, err := c.SubjectSessions(ctx, "s2")
	if err != nil {
		t.Fatalf("SubjectSessions(s2) error = %v", err)
	}
	if other[0].SubjectID != "s2" {
		t.Errorf("SubjectID from embedded subject = %q, want s2", other[0].SubjectID)
	}

	projSess, err := c.ProjectSessions(ctx, "p1")
	if err != nil {
		t.Fatalf("ProjectSessions() error = %v", err)
	}
	if projSess[0].ProjectID != "p1" {
		t.Errorf("ProjectID = %q, want p1", projSess[0].ProjectID)
	}

	subj, err := c.GetSubject(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSubject() error = %v", err)
	}
	if subj.Label != "123" {
		t.Errorf("Label = %q, want 123", subj.Label)
	}
}

func TestStatusErrors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("Unauthorized", func(t *testing.T) {
		c := newTestClient(t, srv, "wrong")
		_, err := c.ProjectSubjects(context.Background(), "p1")

		var serr *herrors.ServiceError
		if !errors.As(err, &serr) {
			t.Fatalf("error = %v, want *ServiceError", err)
		}
		if !serr.IsUnauthorized() {
			t.Errorf("StatusCode = %d, want 401", serr.StatusCode)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		c := newTestClient(t, srv, testKey)
		_, err := c.GetSubject(context.Background(), "nope")

		var serr *herrors.ServiceError
		if !errors.As(err, &serr) || !serr.IsNotFound() {
			t.Errorf("error = %v, want 404 ServiceError", err)
		}
	})
}

func TestTransportError(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, testKey)
	srv.Close()

	_, err := c.ProjectSubjects(context.Background(), "p1")
	var serr *herrors.ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *ServiceError", err)
	}
	if serr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport errors", serr.StatusCode)
	}
}

func TestBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{not json`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, testKey)
	_, err := c.ProjectSubjects(context.Background(), "p1")
	var serr *herrors.ServiceError
	if !errors.As(err, &serr) {
		t.Errorf("error = %v, want *ServiceError", err)
	}
}

func TestBuildIndexOverREST(t *testing.T) {
	c := newTestClient(t, newTestServer(t), testKey)
	opts := sessions.Options{
		Project:      "PNC_LG_810336",
		Prefix:       "PNC",
		SortKey:      sessions.SortByTimestamp,
		FirstOrdinal: 2,
		Subjects:     sessions.SubjectsFromProject,
		SubjectPad:   6,
	}

	ix, err := sessions.Build(context.Background(), c, opts,
		sessions.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := map[string]string{"first": "PNC2", "second": "PNC3", "only": "PNC2"}
	for orig, label := range want {
		if got, err := ix.ReplaceSession(orig); err != nil || got != label {
			t.Errorf("ReplaceSession(%q) = %q, %v, want %q", orig, got, err, label)
		}
	}
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		key     string
	}{
		{"MissingKey", "https://example.flywheel.io/api", ""},
		{"RelativeURL", "/api", "k"},
		{"BadURL", "://", "k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.baseURL, tt.key); err == nil {
				t.Error("NewClient() should fail")
			}
		})
	}
}

func TestSplitAPIKey(t *testing.T) {
	tests := []struct {
		key        string
		wantURL    string
		wantSecret string
	}{
		{"upenn.flywheel.io:abc123", "https://upenn.flywheel.io/api", "abc123"},
		{"localhost:8443:abc123", "https://localhost:8443/api", "abc123"},
		{"abc123", "", "abc123"},
	}

	for _, tt := range tests {
		gotURL, gotSecret := SplitAPIKey(tt.key)
		if gotURL != tt.wantURL || gotSecret != tt.wantSecret {
			t.Errorf("SplitAPIKey(%q) = %q, %q, want %q, %q", tt.key, gotURL, gotSecret, tt.wantURL, tt.wantSecret)
		}
	}
}
