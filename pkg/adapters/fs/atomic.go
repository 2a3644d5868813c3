package fs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// writeFileAtomic replaces filename with data through a temp file and rename,
// so readers never observe a partial collection. The parent directory must exist.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if _, err := os.Stat(filepath.Dir(filename)); err != nil {
		return fmt.Errorf("atomic write %s: %w", filename, err)
	}

	if err := atomic.WriteFile(filename, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("atomic write %s: %w", filename, err)
	}

	// atomic.WriteFile keeps the temp file's mode for new files.
	if err := os.Chmod(filename, perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", filename, err)
	}
	return nil
}
