// Package export writes archived use cases to a directory, one file per record.
//
// A manifest (.forge-export.json) remembers what the previous run wrote, so
// records deleted from the collection disappear from the directory too.
// Files the exporter did not create are never touched.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"

	"github.com/aretw0/forge/pkg/core"
)

// ManifestFile is the name of the manifest kept in the export directory.
const ManifestFile = ".forge-export.json"

// Config holds the configuration of an Exporter.
type Config struct {
	Dir         string
	Format      string // file extension without dot: md, json, yaml; defaults to md
	Match       string // doublestar pattern on titles; empty exports everything
	Serializers map[string]Serializer
	Logger      *slog.Logger
}

// Exporter writes use cases to a directory.
type Exporter struct {
	config     Config
	ext        string
	serializer Serializer
}

// Result summarises an export run.
type Result struct {
	Written []string `json:"written"`
	Removed []string `json:"removed,omitempty"`
	Skipped int      `json:"skipped"`
}

type manifest struct {
	Format string            `json:"format"`
	Files  map[string]string `json:"files"` // file name -> identity
}

// New validates cfg and builds an exporter.
func New(cfg Config) (*Exporter, error) {
	if cfg.Dir == "" {
		return nil, errors.New("export directory required")
	}
	if cfg.Format == "" {
		cfg.Format = "md"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Match != "" && !doublestar.ValidatePattern(cfg.Match) {
		return nil, fmt.Errorf("invalid match pattern %q", cfg.Match)
	}

	ext := "." + strings.TrimPrefix(strings.ToLower(cfg.Format), ".")
	s, ok := cfg.Serializers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q", cfg.Format)
	}
	return &Exporter{config: cfg, ext: ext, serializer: s}, nil
}

// Export writes docs to the directory and removes files a previous run wrote
// for records that are gone.
func (e *Exporter) Export(ctx context.Context, docs []core.UseCase) (Result, error) {
	var res Result
	dir := e.config.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return res, fmt.Errorf("failed to create export directory: %w", err)
	}

	prev := e.readManifest()
	next := manifest{Format: e.ext, Files: make(map[string]string)}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !Matches(e.config.Match, doc) {
			res.Skipped++
			continue
		}

		name := uniqueName(doc, e.ext, next.Files)
		data, err := e.serializer.Serialize(doc)
		if err != nil {
			return res, fmt.Errorf("serialize %q: %w", doc.Identity, err)
		}
		if err := atomic.WriteFile(filepath.Join(dir, name), bytes.NewReader(data)); err != nil {
			return res, fmt.Errorf("write %s: %w", name, err)
		}
		next.Files[name] = doc.Identity
		res.Written = append(res.Written, name)
	}

	for name := range prev.Files {
		if _, ok := next.Files[name]; ok {
			continue
		}
		err := os.Remove(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return res, fmt.Errorf("remove stale %s: %w", name, err)
		}
		res.Removed = append(res.Removed, name)
	}
	slices.Sort(res.Removed)

	if err := e.writeManifest(next); err != nil {
		return res, err
	}

	e.config.Logger.Info("export complete",
		"dir", dir, "format", e.ext,
		"written", len(res.Written), "removed", len(res.Removed), "skipped", res.Skipped)
	return res, nil
}

func (e *Exporter) readManifest() manifest {
	m := manifest{Files: map[string]string{}}
	data, err := os.ReadFile(filepath.Join(e.config.Dir, ManifestFile))
	if err != nil {
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil {
		e.config.Logger.Warn("export manifest corrupt, ignoring", "error", err)
		return manifest{Files: map[string]string{}}
	}
	if m.Files == nil {
		m.Files = map[string]string{}
	}
	return m
}

func (e *Exporter) writeManifest(m manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(filepath.Join(e.config.Dir, ManifestFile), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Matches reports whether doc's display title matches the doublestar pattern.
// An empty pattern matches everything; matching ignores case.
func Matches(pattern string, doc core.UseCase) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.Match(strings.ToLower(pattern), strings.ToLower(core.DisplayTitle(doc)))
	return err == nil && ok
}

// FileName returns the file name used for doc: a slug of the title followed
// by the first characters of the identity, which keeps equal titles apart.
func FileName(doc core.UseCase, ext string) string {
	name := Slug(doc.Title)
	if doc.Identity != "" {
		id := Slug(doc.Identity)
		if len(id) > 8 {
			id = id[:8]
		}
		name += "-" + id
	}
	return name + ext
}

// uniqueName returns FileName(doc, ext) unless another record of this run
// already took it. It then falls back to the full identity, and finally to a
// numeric suffix.
func uniqueName(doc core.UseCase, ext string, taken map[string]string) string {
	name := FileName(doc, ext)
	if _, ok := taken[name]; !ok {
		return name
	}

	base := Slug(doc.Title)
	if doc.Identity != "" {
		base += "-" + Slug(doc.Identity)
		if _, ok := taken[base+ext]; !ok {
			return base + ext
		}
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", base, n, ext)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// Slug lowercases s and keeps letters and digits, joining words with dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
