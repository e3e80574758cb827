package scanner

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"fotosite/internal/fingerprint"
	"fotosite/internal/logging"
	"fotosite/internal/manifest"
	"fotosite/internal/planner"
)

// Config is the scan configuration, passed by value so tests can run
// several configurations side by side.
type Config struct {
	SourceDir string
	// Sizes is the global size ladder, used to derive each image's
	// eligible widths at refresh time.
	Sizes     []int
	MinWidth  int
	MinHeight int
	// Placeholder is the inline-preview strategy ("none" or "blur").
	Placeholder string
	// ConfigHash and ScanConfigHash are the freshly computed fingerprints
	// of the active configuration.
	ConfigHash     string
	ScanConfigHash string
	Workers        int
}

// Stats summarizes one scan pass.
type Stats struct {
	Files             int64
	Nodes             int
	Images            int
	Markdown          int
	Unchanged         int
	Refreshed         int
	Excluded          int
	Pruned            int
	Errors            int64
	ConfigChanged     bool
	ScanConfigChanged bool
	Duration          time.Duration
}

// Scanner performs incremental scans of one source tree.
type Scanner struct {
	cfg    Config
	ladder *planner.Planner
}

// New creates a scanner.
func New(cfg Config) *Scanner {
	return &Scanner{cfg: cfg, ladder: &planner.Planner{Sizes: cfg.Sizes}}
}

// Scan refreshes the manifest against the source tree. Unchanged files
// are recognized by their item fingerprint alone (one stat, no decode);
// changed and new files get dimensions, EXIF and placeholder re-read; and
// entries whose file has vanished are pruned in this same pass, so the
// manifest mirrors the source tree exactly when Scan returns.
func (s *Scanner) Scan(ctx context.Context, m *manifest.Manifest) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	// A changed processing config invalidates every realized variant and
	// re-derives each image's eligible widths from the current ladder.
	// File metadata is still trusted, so no re-read happens here.
	if m.Meta.ConfigHash != s.cfg.ConfigHash {
		if m.Meta.ConfigHash != "" {
			stats.ConfigChanged = true
			logging.Info("Processing config changed (%s -> %s), all variants invalidated",
				m.Meta.ConfigHash, s.cfg.ConfigHash)
		}
		m.Walk(func(_ *manifest.ContentNode, img *manifest.ImageContent) bool {
			img.GeneratedSizes = nil
			img.GeneratedFormats = nil
			img.Sizes = s.ladder.EligibleSizes(img.Width)
			return true
		})
		m.Meta.ConfigHash = s.cfg.ConfigHash
	}

	// A changed scan config invalidates scan-derived metadata (EXIF,
	// placeholders) without touching generated variants.
	forceRefresh := false
	if m.Meta.ScanConfigHash != s.cfg.ScanConfigHash {
		if m.Meta.ScanConfigHash != "" {
			stats.ScanConfigChanged = true
			forceRefresh = true
			logging.Info("Scan config changed (%s -> %s), metadata will be re-read",
				m.Meta.ScanConfigHash, s.cfg.ScanConfigHash)
		}
		m.Meta.ScanConfigHash = s.cfg.ScanConfigHash
	}

	oldIndex := indexManifest(m)

	var (
		dirs    []string
		content = make(map[string][]manifest.GalleryContent)
	)

	w := newWalker(s.cfg.SourceDir, s.cfg.Workers, func(job fileJob) fileResult {
		return s.processFile(job, oldIndex, forceRefresh)
	})

	err := w.run(ctx,
		func(relPath string) {
			dirs = append(dirs, relPath)
		},
		func(res fileResult) {
			switch {
			case res.excluded:
				stats.Excluded++
			case res.content != nil:
				content[res.nodePath] = append(content[res.nodePath], res.content)
				switch res.content.(type) {
				case *manifest.ImageContent:
					stats.Images++
				case *manifest.MarkdownContent:
					stats.Markdown++
				}
				if res.refreshed {
					stats.Refreshed++
				} else {
					stats.Unchanged++
				}
			}
		})
	if err != nil {
		return stats, err
	}

	// Rebuild the tree from what was actually encountered. Anything the
	// walk did not see is pruned by construction.
	m.Root = &manifest.ContentNode{}
	for _, dir := range dirs {
		node := m.UpsertNode(dir, nil)
		if node.Title == "" && dir != "" {
			node.Title = filepath.Base(dir)
		}
		applyGalleryInfo(filepath.Join(s.cfg.SourceDir, filepath.FromSlash(dir)), node)

		entries := content[dir]
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Name() < entries[j].Name()
		})
		node.Content = entries
	}

	stats.Nodes = len(dirs)
	stats.Files = w.filesSeen.Load()
	stats.Errors = w.errorCount.Load()
	stats.Pruned = countPruned(oldIndex, content)
	stats.Duration = time.Since(start)

	m.Meta.LastScanned = time.Now()

	logging.Info("Scan complete: %d nodes, %d images (%d refreshed, %d unchanged), %d markdown, %d pruned in %v",
		stats.Nodes, stats.Images, stats.Refreshed, stats.Unchanged, stats.Markdown, stats.Pruned, stats.Duration)
	return stats, nil
}

// processFile classifies one file and either carries its manifest entry
// forward untouched (the O(1) skip path) or builds a refreshed entry.
func (s *Scanner) processFile(job fileJob, oldIndex map[string]map[string]manifest.GalleryContent, forceRefresh bool) fileResult {
	name := job.info.Name()
	nodePath := filepath.ToSlash(filepath.Dir(job.relPath))
	if nodePath == "." {
		nodePath = ""
	}

	if isInfoFile(name) {
		return fileResult{nodePath: nodePath}
	}

	hash := fingerprint.ItemHash(name, job.info.Size(), job.info.ModTime())
	old := oldIndex[nodePath][name]

	switch {
	case isImage(name):
		if oldImg, ok := old.(*manifest.ImageContent); ok && oldImg.Hash == hash && !forceRefresh {
			return fileResult{nodePath: nodePath, content: oldImg}
		}
		return s.refreshImage(job, nodePath, hash, old)

	case isMarkdown(name):
		if oldMd, ok := old.(*manifest.MarkdownContent); ok && oldMd.Hash == hash {
			return fileResult{nodePath: nodePath, content: oldMd}
		}
		md := manifest.NewMarkdownContent(name, job.info.Size(), hash, job.info.ModTime())
		return fileResult{nodePath: nodePath, content: md, refreshed: true}

	default:
		return fileResult{nodePath: nodePath}
	}
}

// refreshImage re-reads everything derived from file content: dimensions,
// eligible sizes, EXIF and the placeholder. Any realized-variant record
// from a previous incarnation of the file is stale and dropped.
func (s *Scanner) refreshImage(job fileJob, nodePath, hash string, old manifest.GalleryContent) fileResult {
	width, height, err := readDimensions(job.path)
	if err != nil {
		return fileResult{nodePath: nodePath, err: err}
	}

	if (s.cfg.MinWidth > 0 && width < s.cfg.MinWidth) || (s.cfg.MinHeight > 0 && height < s.cfg.MinHeight) {
		logging.Debug("Excluding %s: %dx%d below minimum", job.relPath, width, height)
		return fileResult{nodePath: nodePath, excluded: true}
	}

	img := manifest.NewImageContent(job.info.Name(), job.info.Size(), hash)
	img.NeedsRefresh = true
	img.Width = width
	img.Height = height
	img.LastModified = job.info.ModTime()
	img.Sizes = s.ladder.EligibleSizes(width)

	readExif(job.path, img)

	if s.cfg.Placeholder == "blur" {
		if uri, err := placeholderDataURI(job.path); err == nil {
			img.Placeholder = uri
		} else {
			logging.Debug("Placeholder failed for %s: %v", job.relPath, err)
		}
	}

	if oldImg, ok := old.(*manifest.ImageContent); ok && oldImg.Hash == hash {
		// Only scan-derived metadata was stale; the variants still match
		// the unchanged file content identity.
		img.GeneratedSizes = oldImg.GeneratedSizes
		img.GeneratedFormats = oldImg.GeneratedFormats
		img.OutputPath = oldImg.OutputPath
	}

	return fileResult{nodePath: nodePath, content: img, refreshed: true}
}

// indexManifest builds a lookup of existing entries by node path and
// filename. Read-only during the parallel walk.
func indexManifest(m *manifest.Manifest) map[string]map[string]manifest.GalleryContent {
	index := make(map[string]map[string]manifest.GalleryContent)
	m.Nodes(func(n *manifest.ContentNode) bool {
		if len(n.Content) > 0 {
			byName := make(map[string]manifest.GalleryContent, len(n.Content))
			for _, c := range n.Content {
				byName[c.Name()] = c
			}
			index[n.Path] = byName
		}
		return true
	})
	return index
}

func countPruned(oldIndex map[string]map[string]manifest.GalleryContent, content map[string][]manifest.GalleryContent) int {
	pruned := 0
	for nodePath, byName := range oldIndex {
		kept := make(map[string]bool)
		for _, c := range content[nodePath] {
			kept[c.Name()] = true
		}
		for name := range byName {
			if !kept[name] {
				pruned++
			}
		}
	}
	return pruned
}
