package manifest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"fotosite/internal/logging"
)

// ManifestFilename is the manifest's fixed name inside the cache directory.
const ManifestFilename = "manifest.json"

// Store loads and persists the manifest document. The manifest is a cache:
// a missing, corrupt or wrong-version file is replaced by an empty one and
// logged, never surfaced as an error.
type Store struct {
	path string
}

// NewStore creates a store rooted at the given cache directory.
func NewStore(cacheDir string) *Store {
	return &Store{path: filepath.Join(cacheDir, ManifestFilename)}
}

// Path returns the manifest file path.
func (s *Store) Path() string { return s.path }

// Load reads the manifest from disk. Absence, parse failure or a schema
// version other than SchemaVersion all yield a fresh, empty manifest.
// The cost is a full rebuild, which is always safe.
func (s *Store) Load() *Manifest {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Manifest unreadable at %s, starting fresh: %v", s.path, err)
		} else {
			logging.Debug("No manifest at %s, starting fresh", s.path)
		}
		return New()
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logging.Warn("Manifest corrupt at %s, starting fresh: %v", s.path, err)
		return New()
	}

	if m.Meta.Version != SchemaVersion {
		logging.Warn("Manifest schema version %d (want %d), starting fresh", m.Meta.Version, SchemaVersion)
		return New()
	}

	if m.Root == nil {
		m.Root = &ContentNode{}
	}
	return &m
}

// Save writes the manifest atomically: marshal to a temp file in the same
// directory, fsync, then rename over the target. A crash mid-save leaves
// either the old manifest or the new one, never a torn file.
func (s *Store) Save(m *Manifest) error {
	m.Meta.Version = SchemaVersion
	m.Meta.LastUpdated = time.Now()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ManifestFilename+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// FindNode returns the node with the given relative path, or nil. The
// empty path addresses the root.
func (m *Manifest) FindNode(path string) *ContentNode {
	path = normalizePath(path)
	if m.Root == nil {
		return nil
	}
	if path == "" {
		return m.Root
	}

	node := m.Root
	for _, seg := range strings.Split(path, "/") {
		var next *ContentNode
		for _, child := range node.Children {
			if filepath.Base(child.Path) == seg {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// UpsertNode finds or creates the node at path (creating intermediate
// nodes as needed) and applies the mutator to it. Children stay sorted by
// path so manifest output is deterministic run to run.
func (m *Manifest) UpsertNode(path string, mutate func(*ContentNode)) *ContentNode {
	path = normalizePath(path)
	if m.Root == nil {
		m.Root = &ContentNode{}
	}

	node := m.Root
	if path != "" {
		prefix := ""
		for _, seg := range strings.Split(path, "/") {
			if prefix == "" {
				prefix = seg
			} else {
				prefix = prefix + "/" + seg
			}
			var next *ContentNode
			for _, child := range node.Children {
				if child.Path == prefix {
					next = child
					break
				}
			}
			if next == nil {
				next = &ContentNode{Path: prefix, Slug: Slugify(seg)}
				node.Children = append(node.Children, next)
				sort.Slice(node.Children, func(i, j int) bool {
					return node.Children[i].Path < node.Children[j].Path
				})
			}
			node = next
		}
	}

	if mutate != nil {
		mutate(node)
	}
	return node
}

// Walk visits every image entry across all nodes in depth-first order.
// The visitor returns false to stop early, which makes the traversal
// cheap to restart or abandon while building a work queue.
func (m *Manifest) Walk(visit func(node *ContentNode, img *ImageContent) bool) {
	if m.Root == nil {
		return
	}
	walkNode(m.Root, visit)
}

func walkNode(n *ContentNode, visit func(*ContentNode, *ImageContent) bool) bool {
	for _, c := range n.Content {
		img, ok := c.(*ImageContent)
		if !ok {
			continue
		}
		if !visit(n, img) {
			return false
		}
	}
	for _, child := range n.Children {
		if !walkNode(child, visit) {
			return false
		}
	}
	return true
}

// Nodes visits every node in depth-first order.
func (m *Manifest) Nodes(visit func(*ContentNode) bool) {
	if m.Root == nil {
		return
	}
	var rec func(*ContentNode) bool
	rec = func(n *ContentNode) bool {
		if !visit(n) {
			return false
		}
		for _, child := range n.Children {
			if !rec(child) {
				return false
			}
		}
		return true
	}
	rec(m.Root)
}

func normalizePath(path string) string {
	path = filepath.ToSlash(filepath.Clean(path))
	if path == "." || path == "/" {
		return ""
	}
	return strings.Trim(path, "/")
}

// Slugify converts a directory or file name into a URL-safe slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
