package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/caio-sobreiro/bidsheuristic/config"
	"github.com/caio-sobreiro/bidsheuristic/flywheel"
	"github.com/caio-sobreiro/bidsheuristic/heuristic"
	"github.com/caio-sobreiro/bidsheuristic/interfaces"
	"github.com/caio-sobreiro/bidsheuristic/projects"
	"github.com/caio-sobreiro/bidsheuristic/seqinfo"
	"github.com/caio-sobreiro/bidsheuristic/sessions"
)

// serviceFactory opens the data service the session index is built from.
type serviceFactory func(cfg config.Config, logger *slog.Logger) (interfaces.DataService, error)

func newFlywheelService(cfg config.Config, logger *slog.Logger) (interfaces.DataService, error) {
	baseURL, key := cfg.ResolveAPI()
	return flywheel.NewClient(baseURL, key, flywheel.WithLogger(logger))
}

// bucket is one output key of the plan.
type bucket struct {
	Template    string   `json:"template"`
	OutTypes    []string `json:"outtypes"`
	Series      []string `json:"series"`
	IntendedFor []string `json:"intended_for,omitempty"`
}

// plan is what the conversion engine consumes.
type plan struct {
	Project      string            `json:"project"`
	Buckets      []bucket          `json:"buckets"`
	Unrecognized []string          `json:"unrecognized"`
	Sessions     map[string]string `json:"sessions,omitempty"`
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, out io.Writer, newService serviceFactory) error {
	registry, err := projects.Default(heuristic.WithLogger(logger))
	if err != nil {
		return err
	}
	project, err := registry.Lookup(cfg.Project)
	if err != nil {
		return err
	}

	records, err := seqinfo.NewScanner(seqinfo.WithLogger(logger)).ScanDir(ctx, cfg.DICOMDir)
	if err != nil {
		return err
	}

	h := project.Heuristic
	result := h.Classify(ctx, records)
	logger.InfoContext(ctx, "Series classified",
		"project", cfg.Project,
		"series", len(records),
		"classified", result.Len(),
		"unrecognized", len(result.Unrecognized))

	p := plan{
		Project:      cfg.Project,
		Unrecognized: append([]string{}, result.Unrecognized...),
	}
	for _, k := range result.Keys() {
		p.Buckets = append(p.Buckets, bucket{
			Template:    k.Template,
			OutTypes:    k.OutTypes,
			Series:      result.Series(k),
			IntendedFor: h.IntendedFor(k),
		})
	}

	if !cfg.SkipIndex {
		svc, err := newService(cfg, logger)
		if err != nil {
			return err
		}
		ix, err := sessions.Build(ctx, svc, cfg.IndexOptions(project.Index), sessions.WithLogger(logger))
		if err != nil {
			return err
		}
		p.Sessions = ix.Map()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
