package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/forge/internal/platform"
	"github.com/aretw0/forge/pkg/adapters/clipboard"
	"github.com/aretw0/forge/pkg/core"
)

// app bundles what a command needs: the service and the resolved configuration.
type app struct {
	svc  *core.Service
	cfg  platform.Config
	root string
}

// openApp locates the project, loads forge.yaml, applies environment and
// flag overrides and opens the service.
func openApp(cmd *cobra.Command, extra ...core.ServiceOption) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := workDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		start = wd
	}

	root, err := platform.FindRoot(start)
	if errors.Is(err, platform.ErrRootNotFound) {
		root = start
	} else if err != nil {
		return nil, err
	}

	cfg, err := platform.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	if localeFlag != "" {
		cfg.Locale = localeFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	serviceOpts := []core.ServiceOption{
		core.WithNotifier(newNotifier(os.Stderr)),
		core.WithExporter(clipboard.New(cfg.CopyCommand)),
	}
	serviceOpts = append(serviceOpts, extra...)

	opts := append(cfg.Options(root),
		platform.WithLogger(slog.Default()),
		platform.WithServiceOptions(serviceOpts...),
	)
	svc, err := platform.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening forge: %w", err)
	}

	return &app{svc: svc, cfg: cfg, root: root}, nil
}

func (a *app) Close() {
	if err := platform.Close(a.svc); err != nil {
		slog.Warn("closing storage", "error", err)
	}
}

// resolveID accepts a full identity or an unambiguous prefix of one.
func resolveID(col *core.Collection, arg string) (string, error) {
	if _, ok := col.Get(arg); ok {
		return arg, nil
	}

	var matches []string
	for _, uc := range col.Load() {
		if arg != "" && strings.HasPrefix(uc.Identity, arg) {
			matches = append(matches, uc.Identity)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("use case %q: %w", arg, core.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("use case prefix %q is ambiguous (%d matches)", arg, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
