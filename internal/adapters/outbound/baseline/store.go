// Package baseline persists reference screenshots under
// <artifacts>/baselines/<viewId>/<WxH>.png with a JSON metadata sidecar.
package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/designlens/designlens/internal/domain"
)

// FileStore implements domain.BaselineStore on the local filesystem.
// Writers to the same view+viewport are serialized by a per-key lock so a
// reference image can never be corrupted by concurrent writes.
type FileStore struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a store rooted at artifactsDir.
func New(artifactsDir string) *FileStore {
	return &FileStore{
		root:  filepath.Join(artifactsDir, "baselines"),
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *FileStore) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locks[key]; !ok {
		s.locks[key] = &sync.Mutex{}
	}
	return s.locks[key]
}

func (s *FileStore) imagePath(viewID string, vp domain.Viewport) string {
	return filepath.Join(s.root, viewID, vp.String()+".png")
}

func (s *FileStore) metaPath(viewID string, vp domain.Viewport) string {
	return filepath.Join(s.root, viewID, vp.String()+".json")
}

// Load reads a baseline. Returns (nil, nil) when none exists.
func (s *FileStore) Load(viewID string, vp domain.Viewport) (*domain.Baseline, error) {
	img, err := os.ReadFile(s.imagePath(viewID, vp))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	b := domain.Baseline{ViewID: viewID, Viewport: vp}
	if meta, err := os.ReadFile(s.metaPath(viewID, vp)); err == nil {
		if err := json.Unmarshal(meta, &b); err != nil {
			return nil, fmt.Errorf("parsing baseline metadata for %s: %w", viewID, err)
		}
	}
	b.Image = img
	b.ImagePath = s.imagePath(viewID, vp)
	return &b, nil
}

// Create writes a baseline only when none exists yet (first run). An
// existing baseline is never overwritten here.
func (s *FileStore) Create(b domain.Baseline) (*domain.Baseline, error) {
	lock := s.lockFor(b.ViewID + "@" + b.Viewport.String())
	lock.Lock()
	defer lock.Unlock()

	path := s.imagePath(b.ViewID, b.Viewport)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("baseline for %s at %s already exists", b.ViewID, b.Viewport)
	}
	return s.write(b)
}

// Accept is the explicit replacement action: it overwrites the stored
// baseline and records who accepted it and when.
func (s *FileStore) Accept(b domain.Baseline) (*domain.Baseline, error) {
	lock := s.lockFor(b.ViewID + "@" + b.Viewport.String())
	lock.Lock()
	defer lock.Unlock()

	if b.AcceptedAt.IsZero() {
		b.AcceptedAt = time.Now()
	}
	return s.write(b)
}

func (s *FileStore) write(b domain.Baseline) (*domain.Baseline, error) {
	dir := filepath.Join(s.root, b.ViewID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	path := s.imagePath(b.ViewID, b.Viewport)
	if err := os.WriteFile(path, b.Image, 0644); err != nil {
		return nil, err
	}
	b.ImagePath = path

	meta, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.metaPath(b.ViewID, b.Viewport), meta, 0644); err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns metadata for all stored baselines, sorted by view id.
func (s *FileStore) List() ([]domain.Baseline, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var baselines []domain.Baseline
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		metas, err := filepath.Glob(filepath.Join(s.root, entry.Name(), "*.json"))
		if err != nil {
			return nil, err
		}
		for _, metaPath := range metas {
			data, err := os.ReadFile(metaPath)
			if err != nil {
				return nil, err
			}
			var b domain.Baseline
			if err := json.Unmarshal(data, &b); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", metaPath, err)
			}
			b.ImagePath = s.imagePath(b.ViewID, b.Viewport)
			baselines = append(baselines, b)
		}
	}

	sort.Slice(baselines, func(i, j int) bool {
		if baselines[i].ViewID != baselines[j].ViewID {
			return baselines[i].ViewID < baselines[j].ViewID
		}
		return baselines[i].Viewport.String() < baselines[j].Viewport.String()
	})
	return baselines, nil
}
