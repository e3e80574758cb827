package manifest

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// SchemaVersion is the manifest schema version understood by this binary.
// Any other on-disk version (older or newer) causes a full rebuild; there
// is no field-by-field migration, the manifest is a cache.
const SchemaVersion = 3

// ContentKind discriminates the gallery content union at the
// serialization boundary.
type ContentKind string

const (
	// KindImage marks an ImageContent entry.
	KindImage ContentKind = "image"
	// KindMarkdown marks a MarkdownContent entry.
	KindMarkdown ContentKind = "markdown"
)

// GalleryContent is the closed union of content kinds a gallery can hold.
// Consumers switch exhaustively on Kind(); there are no other
// implementations outside this package.
type GalleryContent interface {
	ContentKind() ContentKind
	Name() string
	ItemHash() string
}

// FileIdentity carries the fields shared by every content kind. Hash is
// the item fingerprint over (filename, size, mtime).
type FileIdentity struct {
	Filename string `json:"filename"`
	FileSize int64  `json:"fileSize"`
	Hash     string `json:"hash"`
}

// Name returns the item's filename.
func (f FileIdentity) Name() string { return f.Filename }

// ItemHash returns the stored item fingerprint.
func (f FileIdentity) ItemHash() string { return f.Hash }

// ExifData is the subset of EXIF metadata the site renders.
type ExifData struct {
	Camera       string `json:"camera,omitempty"`
	LensModel    string `json:"lensModel,omitempty"`
	FocalLength  string `json:"focalLength,omitempty"`
	Aperture     string `json:"aperture,omitempty"`
	ShutterSpeed string `json:"shutterSpeed,omitempty"`
	ISO          int    `json:"iso,omitempty"`
}

// ImageContent is a photo in a gallery, including the realized variant
// bookkeeping the planner consumes.
type ImageContent struct {
	Kind ContentKind `json:"kind"`
	FileIdentity

	Width        int       `json:"width"`
	Height       int       `json:"height"`
	LastModified time.Time `json:"lastModified"`

	// Sizes is the list of widths this item is eligible for, derived from
	// its native width and the global size ladder.
	Sizes []int `json:"sizes,omitempty"`

	DateTaken   *time.Time `json:"dateTaken,omitempty"`
	Exif        *ExifData  `json:"exif,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`

	// GeneratedSizes and GeneratedFormats record what has actually been
	// produced under the current config hash. Always a subset of Sizes;
	// empty until the item has been processed at least once since the
	// current config hash was set.
	GeneratedSizes   []int    `json:"generatedSizes,omitempty"`
	GeneratedFormats []string `json:"generatedFormats,omitempty"`
	OutputPath       string   `json:"outputPath,omitempty"`

	// NeedsRefresh is set by the scanner when the stored hash no longer
	// matches and metadata must be re-read. Resolved within the same scan
	// pass, never persisted.
	NeedsRefresh bool `json:"-"`
}

// ContentKind returns KindImage.
func (c *ImageContent) ContentKind() ContentKind { return KindImage }

// MarkdownContent is a prose file in a gallery. Only its identity is
// cached; the body is read from the source file at render time so edited
// prose never goes stale behind the fingerprint.
type MarkdownContent struct {
	Kind ContentKind `json:"kind"`
	FileIdentity

	LastModified time.Time `json:"lastModified"`
}

// ContentKind returns KindMarkdown.
func (c *MarkdownContent) ContentKind() ContentKind { return KindMarkdown }

// NewImageContent creates an image entry with the discriminator set.
func NewImageContent(filename string, size int64, hash string) *ImageContent {
	return &ImageContent{
		Kind:         KindImage,
		FileIdentity: FileIdentity{Filename: filename, FileSize: size, Hash: hash},
	}
}

// NewMarkdownContent creates a markdown entry with the discriminator set.
func NewMarkdownContent(filename string, size int64, hash string, modified time.Time) *MarkdownContent {
	return &MarkdownContent{
		Kind:         KindMarkdown,
		FileIdentity: FileIdentity{Filename: filename, FileSize: size, Hash: hash},
		LastModified: modified,
	}
}

// ContentNode is one source directory that becomes a gallery or page.
// Path is the only stable cross-run identity; a rename is a delete plus a
// create, never an in-place identity change.
type ContentNode struct {
	Path        string `json:"path"`
	Slug        string `json:"slug"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Cover       string `json:"cover,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Weight      int    `json:"weight,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
	Featured    bool   `json:"featured,omitempty"`

	// DataSources maps keys other subsystems use to request derived data
	// (statistics, feeds) to their provider arguments.
	DataSources map[string]string `json:"dataSources,omitempty"`

	Content  []GalleryContent `json:"content,omitempty"`
	Children []*ContentNode   `json:"children,omitempty"`
}

// Meta is the manifest header: schema version, the config fingerprints
// the cache was built under, and run timestamps.
type Meta struct {
	Version             int            `json:"version"`
	ConfigHash          string         `json:"configHash,omitempty"`
	ScanConfigHash      string         `json:"scanConfigHash,omitempty"`
	Quality             map[string]int `json:"quality,omitempty"`
	LastScanned         time.Time      `json:"lastScanned"`
	LastImagesProcessed time.Time      `json:"lastImagesProcessed"`
	LastUpdated         time.Time      `json:"lastUpdated"`
}

// Manifest is the root persisted document.
type Manifest struct {
	Meta Meta         `json:"meta"`
	Root *ContentNode `json:"root"`
}

// New returns an empty manifest at the current schema version.
func New() *Manifest {
	return &Manifest{
		Meta: Meta{Version: SchemaVersion},
		Root: &ContentNode{Path: "", Slug: ""},
	}
}

// UnmarshalJSON decodes the node, dispatching each content entry on its
// kind discriminator. Unknown kinds are an error rather than silently
// dropped: an unreadable entry means the manifest predates or postdates
// this binary and the store treats the whole file as corrupt.
func (n *ContentNode) UnmarshalJSON(data []byte) error {
	// The alias is embedded by value: goccy rejects decoding through an
	// embedded pointer to an unexported type.
	type nodeAlias ContentNode
	var aux struct {
		nodeAlias
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = ContentNode(aux.nodeAlias)

	n.Content = make([]GalleryContent, 0, len(aux.Content))
	for _, raw := range aux.Content {
		var probe struct {
			Kind ContentKind `json:"kind"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return err
		}
		switch probe.Kind {
		case KindImage:
			var img ImageContent
			if err := json.Unmarshal(raw, &img); err != nil {
				return err
			}
			n.Content = append(n.Content, &img)
		case KindMarkdown:
			var md MarkdownContent
			if err := json.Unmarshal(raw, &md); err != nil {
				return err
			}
			n.Content = append(n.Content, &md)
		default:
			return fmt.Errorf("unknown content kind %q", probe.Kind)
		}
	}
	if len(n.Content) == 0 {
		n.Content = nil
	}
	return nil
}

// FindContent returns the content entry with the given filename, or nil.
func (n *ContentNode) FindContent(filename string) GalleryContent {
	for _, c := range n.Content {
		if c.Name() == filename {
			return c
		}
	}
	return nil
}

// FindImage returns the image entry with the given filename, or nil.
func (n *ContentNode) FindImage(filename string) *ImageContent {
	if img, ok := n.FindContent(filename).(*ImageContent); ok {
		return img
	}
	return nil
}
