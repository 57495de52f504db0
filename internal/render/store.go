package render

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/waymarker/waymarker-backend/internal/domain"
)

// Artifact header lines. Both stamps are exact-match comparable strings in
// the fixed version format; consumers assert string equality on them.
const (
	headerGeneration = "<!-- generation-version: "
	headerContent    = "<!-- content-version: "
	headerSuffix     = " -->"
)

// Artifact is one rendered output plus its two version stamps: the run that
// produced it and the content state it was produced from. A cascaded-in item
// gets a fresh generation stamp while its content stamp stays unchanged.
type Artifact struct {
	Path              string         `json:"path"`
	GenerationVersion domain.Version `json:"generation_version"`
	ContentVersion    domain.Version `json:"content_version"`
}

// Store persists rendered artifacts.
type Store interface {
	Write(path string, generationVersion, contentVersion domain.Version, body []byte) error
	Read(path string) (*Artifact, []byte, error)
	List() ([]Artifact, error)
	Delete(path string) error
}

// FileStore is the local filesystem artifact store rooted at one output
// directory.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &FileStore{root: dir}, nil
}

// Write stamps body with the two version headers and writes it atomically
// (temp file then rename) so a crashed run never leaves a torn artifact.
func (s *FileStore) Write(path string, generationVersion, contentVersion domain.Version, body []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s%s%s\n", headerGeneration, generationVersion, headerSuffix)
	fmt.Fprintf(&buf, "%s%s%s\n", headerContent, contentVersion, headerSuffix)
	buf.Write(body)

	tmp, err := os.CreateTemp(filepath.Dir(full), ".artifact-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), full)
}

// Read returns the artifact stamps and the body without headers.
func (s *FileStore) Read(path string) (*Artifact, []byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, nil, err
	}
	art, bodyStart, err := parseHeaders(path, data)
	if err != nil {
		return nil, nil, err
	}
	return art, data[bodyStart:], nil
}

// List walks the store and returns every artifact with parseable stamps.
func (s *FileStore) List() ([]Artifact, error) {
	var artifacts []Artifact
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		art, err := parseHeaderLines(rel, f)
		f.Close()
		if err != nil {
			// Not one of ours; leave it alone.
			return nil
		}
		artifacts = append(artifacts, *art)
		return nil
	})
	return artifacts, err
}

// Delete removes one artifact. Deleting an absent artifact is not an error.
func (s *FileStore) Delete(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("artifact path escapes store: %s", path)
	}
	return filepath.Join(s.root, clean), nil
}

func parseHeaders(path string, data []byte) (*Artifact, int, error) {
	first := bytes.IndexByte(data, '\n')
	if first < 0 {
		return nil, 0, fmt.Errorf("artifact %s: missing headers", path)
	}
	second := bytes.IndexByte(data[first+1:], '\n')
	if second < 0 {
		return nil, 0, fmt.Errorf("artifact %s: missing headers", path)
	}
	second += first + 1

	gen, err := parseStamp(string(data[:first]), headerGeneration)
	if err != nil {
		return nil, 0, fmt.Errorf("artifact %s: %w", path, err)
	}
	content, err := parseStamp(string(data[first+1:second]), headerContent)
	if err != nil {
		return nil, 0, fmt.Errorf("artifact %s: %w", path, err)
	}
	return &Artifact{
		Path:              path,
		GenerationVersion: gen,
		ContentVersion:    content,
	}, second + 1, nil
}

func parseHeaderLines(path string, f *os.File) (*Artifact, error) {
	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return nil, fmt.Errorf("artifact %s: missing headers", path)
	}
	gen, err := parseStamp(sc.Text(), headerGeneration)
	if err != nil {
		return nil, err
	}
	if !sc.Scan() {
		return nil, fmt.Errorf("artifact %s: missing headers", path)
	}
	content, err := parseStamp(sc.Text(), headerContent)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Path:              path,
		GenerationVersion: gen,
		ContentVersion:    content,
	}, nil
}

func parseStamp(line, prefix string) (domain.Version, error) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, prefix) || !strings.HasSuffix(line, headerSuffix) {
		return domain.Version{}, fmt.Errorf("malformed stamp line %q", line)
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(line, prefix), headerSuffix)
	t, err := domain.ParseVersion(raw)
	if err != nil {
		return domain.Version{}, err
	}
	return domain.NewVersion(t), nil
}
