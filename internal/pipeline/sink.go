package pipeline

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/ironsheep/hydrangea-counter/internal/imaging"
)

// ArtifactSink receives the intermediate and final images of a run.
// Save returns a locator for the stored artifact, such as a file path.
type ArtifactSink interface {
	Save(name string, img image.Image) (string, error)
}

// DirSink writes artifacts into a directory, creating it on first use.
// The encoding follows the artifact name's extension.
type DirSink struct {
	Dir string
}

// NewDirSink returns a sink rooted at dir. Nothing touches the filesystem
// until the first Save.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

// Save implements ArtifactSink.
func (s *DirSink) Save(name string, img image.Image) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create output directory %s", s.Dir)
	}
	path := filepath.Join(s.Dir, name)
	if err := imaging.Save(img, path); err != nil {
		return "", err
	}
	return path, nil
}

// MemorySink keeps artifacts in memory. It is safe for concurrent use.
type MemorySink struct {
	mu     sync.Mutex
	images map[string]image.Image
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{images: make(map[string]image.Image)}
}

// Save implements ArtifactSink. Saving a name twice replaces the image.
func (s *MemorySink) Save(name string, img image.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[name] = img
	return "memory://" + name, nil
}

// Get returns a stored artifact.
func (s *MemorySink) Get(name string) (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[name]
	return img, ok
}

// Names returns the stored artifact names in sorted order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.images))
	for name := range s.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
