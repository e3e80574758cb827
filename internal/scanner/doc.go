// Package scanner walks the source tree and refreshes the manifest
// incrementally: unchanged files cost one stat, changed or new files get
// their metadata re-read, and vanished files are pruned in the same pass.
package scanner
