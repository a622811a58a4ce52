package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/designlens/designlens/internal/domain"
)

const historyFile = "history/sessions.json"

// FileHistory implements domain.HistoryStore using JSON file storage under
// the artifacts directory. The external dashboard reads this file.
type FileHistory struct {
	artifactsDir string
}

func New(artifactsDir string) *FileHistory {
	return &FileHistory{artifactsDir: artifactsDir}
}

func (h *FileHistory) path(projectPath string) string {
	return filepath.Join(projectPath, h.artifactsDir, historyFile)
}

func (h *FileHistory) Append(projectPath string, entry domain.SessionEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	fp := h.path(projectPath)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

func (h *FileHistory) Load(projectPath string) ([]domain.SessionEntry, error) {
	data, err := os.ReadFile(h.path(projectPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.SessionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
