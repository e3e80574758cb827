package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"
)

// HashLength is the number of hex characters kept from the SHA-256 digest.
// 48 bits is far beyond what accidental collisions need for a few thousand
// items while staying compact in the manifest.
const HashLength = 12

func truncate(sum [32]byte) string {
	return hex.EncodeToString(sum[:])[:HashLength]
}

// ConfigHash fingerprints the image processing configuration: the size
// ladder and the format→quality map. Inputs are sorted before hashing so
// reordering configuration never invalidates the cache.
func ConfigHash(sizes []int, formats map[string]int) string {
	sorted := make([]int, len(sizes))
	copy(sorted, sizes)
	sort.Ints(sorted)

	keys := make([]string, 0, len(formats))
	for k := range formats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, w := range sorted {
		fmt.Fprintf(h, "w:%d;", w)
	}
	for _, k := range keys {
		fmt.Fprintf(h, "f:%s=%d;", k, formats[k])
	}

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return truncate(sum)
}

// ScanConfigHash fingerprints the scan configuration: the placeholder
// strategy and the minimum accepted image dimensions.
func ScanConfigHash(placeholderStrategy string, minWidth, minHeight int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("p:%s;mw:%d;mh:%d;", placeholderStrategy, minWidth, minHeight)))
	return truncate(sum)
}

// ItemHash fingerprints a single content item by filename, size in bytes
// and modification time. It never reads file content: a scan over an
// unchanged tree costs one stat per file, not one read. A rewrite with
// identical bytes but a new mtime re-triggers processing, and a byte
// change that preserves size and mtime is missed.
func ItemHash(filename string, fileSize int64, lastModified time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s;%d;%d;", filename, fileSize, lastModified.UTC().Unix())))
	return truncate(sum)
}
