package debate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Iron-Ham/sift/internal/errors"
)

// ArtifactStore reads and writes the per-role Markdown files of a debate.
type ArtifactStore struct {
	Dir string
}

// NewArtifactStore returns a store rooted at dir.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{Dir: dir}
}

// Path returns the file path for role.
func (a *ArtifactStore) Path(role Role) string {
	return filepath.Join(a.Dir, role.Artifact())
}

// Reset creates the directory and removes artifacts left by a previous run.
// Other files in the directory are untouched.
func (a *ArtifactStore) Reset() error {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", errors.Join(errors.ErrExportFailed, err))
	}
	for _, role := range Roles {
		if err := os.Remove(a.Path(role)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", role.Artifact(), errors.Join(errors.ErrExportFailed, err))
		}
	}
	return nil
}

// Write stores content as the role's artifact and returns its path.
func (a *ArtifactStore) Write(role Role, content string) (string, error) {
	path := a.Path(role)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", role.Artifact(), errors.Join(errors.ErrExportFailed, err))
	}
	return path, nil
}

// Read returns the role's artifact content.
func (a *ArtifactStore) Read(role Role) (string, error) {
	data, err := os.ReadFile(a.Path(role))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List returns the paths of existing artifacts in speaking order.
func (a *ArtifactStore) List() []string {
	var paths []string
	for _, role := range Roles {
		if _, err := os.Stat(a.Path(role)); err == nil {
			paths = append(paths, a.Path(role))
		}
	}
	return paths
}
