package scanner

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"fotosite/internal/logging"
	"fotosite/internal/manifest"
)

// infoFilenames are the per-gallery metadata files, checked in order.
var infoFilenames = []string{"info.yml", "info.yaml"}

// galleryInfo is the optional per-directory metadata file.
type galleryInfo struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Cover       string            `yaml:"cover"`
	Date        string            `yaml:"date"`
	Weight      int               `yaml:"weight"`
	Hidden      bool              `yaml:"hidden"`
	Featured    bool              `yaml:"featured"`
	DataSources map[string]string `yaml:"data_sources"`
}

func isInfoFile(name string) bool {
	for _, candidate := range infoFilenames {
		if name == candidate {
			return true
		}
	}
	return false
}

// applyGalleryInfo reads the directory's info file, if any, into the
// node. A malformed file is logged and ignored; the gallery still renders
// with derived defaults.
func applyGalleryInfo(dir string, node *manifest.ContentNode) {
	for _, candidate := range infoFilenames {
		data, err := os.ReadFile(filepath.Join(dir, candidate))
		if err != nil {
			continue
		}

		var info galleryInfo
		if err := yaml.Unmarshal(data, &info); err != nil {
			logging.Warn("Malformed %s in %s: %v", candidate, dir, err)
			return
		}

		if info.Title != "" {
			node.Title = info.Title
		}
		node.Description = info.Description
		node.Cover = info.Cover
		node.Weight = info.Weight
		node.Hidden = info.Hidden
		node.Featured = info.Featured
		node.DataSources = info.DataSources

		if info.Date != "" {
			if parsed, err := parseInfoDate(info.Date); err == nil {
				node.Date = &parsed
			} else {
				logging.Warn("Unparseable date %q in %s: %v", info.Date, dir, err)
			}
		}
		return
	}
}

func parseInfoDate(value string) (time.Time, error) {
	var err error
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
