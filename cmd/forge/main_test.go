package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forge/internal/platform"
	"github.com/aretw0/forge/pkg/adapters/fs"
	"github.com/aretw0/forge/pkg/adapters/memory"
	"github.com/aretw0/forge/pkg/core"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{""}},
		{"a", []string{"a"}},
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\n\r\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitLines(tt.in), "input %q", tt.in)
	}
}

func TestFormValues_RoundTrip(t *testing.T) {
	doc := core.UseCase{
		Title:          "Checkout",
		Actor:          "Customer",
		Description:    "Buy things",
		Preconditions:  "Cart not empty",
		Steps:          []string{"Add to cart", "Pay"},
		Postconditions: "Order placed",
		Constraints:    []string{"Under 2s"},
	}

	s := core.NewSession(nil)
	valuesFrom(doc).applyTo(s)

	got := s.Snapshot()
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Actor, got.Actor)
	assert.Equal(t, doc.Description, got.Description)
	assert.Equal(t, doc.Preconditions, got.Preconditions)
	assert.Equal(t, doc.Postconditions, got.Postconditions)
	assert.Equal(t, doc.Steps, got.Steps)
	assert.Equal(t, doc.Constraints, got.Constraints)
}

func TestFieldFlags_ApplyOnlyChanged(t *testing.T) {
	var f fieldFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--title", "Login", "--step", "Open", "--step", "Submit"}))

	s := core.NewSession(&core.UseCase{Actor: "Visitor", Constraints: []string{"keep"}})
	applied, err := f.applyTo(cmd, s)
	require.NoError(t, err)
	assert.True(t, applied)

	got := s.Snapshot()
	assert.Equal(t, "Login", got.Title)
	assert.Equal(t, "Visitor", got.Actor, "unset flags leave fields alone")
	assert.Equal(t, []string{"Open", "Submit"}, got.Steps)
	assert.Equal(t, []string{"keep"}, got.Constraints)
}

func TestFieldFlags_NoneSet(t *testing.T) {
	var f fieldFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags(nil))

	applied, err := f.applyTo(cmd, core.NewSession(nil))
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestFieldFlags_PerItemListEdits(t *testing.T) {
	var f fieldFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--set-step", "2=Pay by card",
		"--remove-step", "3", "--remove-step", "1", "--remove-step", "9",
		"--add-step", "Receive receipt",
		"--add-constraint", "Under 2s",
		"--set-constraint", "1=PCI compliant",
	}))

	s := core.NewSession(&core.UseCase{
		Steps:       []string{"Add to cart", "Pay", "Wait"},
		Constraints: []string{""},
	})
	applied, err := f.applyTo(cmd, s)
	require.NoError(t, err)
	assert.True(t, applied)

	got := s.Snapshot()
	assert.Equal(t, []string{"Pay by card", "Receive receipt"}, got.Steps,
		"removals use the original positions; out-of-range positions are ignored")
	assert.Equal(t, []string{"PCI compliant", "Under 2s"}, got.Constraints)
}

func TestFieldFlags_InvalidSetItem(t *testing.T) {
	for _, arg := range []string{"Pay", "0=Pay", "x=Pay"} {
		var f fieldFlags
		cmd := &cobra.Command{Use: "x"}
		f.register(cmd)
		require.NoError(t, cmd.ParseFlags([]string{"--set-step", arg}))

		_, err := f.applyTo(cmd, core.NewSession(nil))
		assert.Error(t, err, "argument %q", arg)
	}
}

func TestResolveID(t *testing.T) {
	ctx := context.Background()
	ids := []string{"aaaa-1111", "aaaa-2222", "bbbb-3333"}
	next := 0
	col := core.OpenCollection(ctx, memory.New(), core.CollectionConfig{
		NewID: func() string { id := ids[next]; next++; return id },
	})
	for range ids {
		_, err := col.Upsert(ctx, core.UseCase{})
		require.NoError(t, err)
	}

	id, err := resolveID(col, "bbbb-3333")
	require.NoError(t, err)
	assert.Equal(t, "bbbb-3333", id)

	id, err = resolveID(col, "bb")
	require.NoError(t, err)
	assert.Equal(t, "bbbb-3333", id)

	_, err = resolveID(col, "aaaa")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = resolveID(col, "zzz")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	_, err = resolveID(col, "")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestNoticeLine(t *testing.T) {
	for _, kind := range []core.NoticeKind{core.NoticeSuccess, core.NoticeInfo, core.NoticeError} {
		assert.Contains(t, noticeLine("Use case archived.", kind), "Use case archived.")
	}

	var buf bytes.Buffer
	newNotifier(&buf).Notify("Deletion cancelled.", core.NoticeInfo)
	assert.Contains(t, buf.String(), "Deletion cancelled.")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []core.UseCase{
		{Identity: "3f2c9a1e-0000-4000", Title: "Checkout", Steps: []string{"a", "b"}},
		{Identity: "77", Title: ""},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "3f2c9a1e ")
	assert.NotContains(t, lines[1], "3f2c9a1e-")
	assert.Contains(t, lines[2], "Untitled")

	buf.Reset()
	writeTable(&buf, nil)
	assert.Empty(t, buf.String())

	assert.Equal(t, "1 use case", countLine(1))
	assert.Equal(t, "0 use cases", countLine(0))
}

func TestOpenApp_UsesProjectConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, platform.ConfigFile),
		[]byte("data_dir: store\nlocale: fr\n"), 0644))
	sub := filepath.Join(root, "docs", "drafts")
	require.NoError(t, os.MkdirAll(sub, 0755))

	oldDir := workDir
	workDir = sub
	defer func() { workDir = oldDir }()

	a, err := openApp(&cobra.Command{Use: "x"})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, root, a.root)
	assert.Equal(t, "fr", a.cfg.Locale)

	store, ok := a.svc.Collection().Storage().(*fs.Store)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "store"), store.Path)
	assert.Contains(t, a.svc.Render(), "Acteur Principal")
}

func TestOpenApp_FlagOverrides(t *testing.T) {
	oldDir, oldBackend := workDir, backendFlag
	workDir, backendFlag = t.TempDir(), "memory"
	defer func() { workDir, backendFlag = oldDir, oldBackend }()

	a, err := openApp(&cobra.Command{Use: "x"})
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.svc.Collection().Storage().(*memory.Store)
	assert.True(t, ok)

	backendFlag = "redis"
	_, err = openApp(&cobra.Command{Use: "x"})
	assert.ErrorContains(t, err, "unknown backend")
}

func TestEdit_StrictRequiresTitle(t *testing.T) {
	var f fieldFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--actor", "Visitor", "--strict"}))

	err := edit(cmd, &f, core.NewSession(nil))
	assert.ErrorIs(t, err, core.ErrTitleRequired)

	require.NoError(t, cmd.ParseFlags([]string{"--title", "Login"}))
	assert.NoError(t, edit(cmd, &f, core.NewSession(nil)))
}
