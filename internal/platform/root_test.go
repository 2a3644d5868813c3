package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   repo/ (.forge)
	//     subdir/nested/
	//   configured/ (forge.yaml)
	//     sub/
	//   fake/ (.forge is a file)
	//   empty/
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	configured := filepath.Join(baseDir, "configured")
	configuredSub := filepath.Join(configured, "sub")
	fakeDir := filepath.Join(baseDir, "fake")
	emptyDir := filepath.Join(baseDir, "empty")

	for _, d := range []string{nestedDir, configuredSub, fakeDir, emptyDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(repoDir, DefaultDataDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configured, ConfigFile), []byte("backend: memory\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fakeDir, DefaultDataDir), nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{"Start at Root", repoDir, repoDir, false},
		{"Start in Subdir", subDir, repoDir, false},
		{"Start Nested Deeply", nestedDir, repoDir, false},
		{"Config File Marker", configuredSub, configured, false},
		{"Data Dir Must Be A Directory", fakeDir, "", true},
		{"No Root Found", emptyDir, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrRootNotFound) {
					t.Errorf("expected ErrRootNotFound, got %v", err)
				}
				return
			}
			if filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
				t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
			}
		})
	}
}
