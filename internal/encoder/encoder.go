package encoder

import (
	"fmt"

	"fotosite/internal/planner"
)

// EncodeError is a per-variant failure. It carries the offending
// (width, format) pair so the orchestrator can report exactly which
// variant failed without parsing messages.
type EncodeError struct {
	Width  int
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %dpx %s variant: %v", e.Width, e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Encoder turns one source image into one variant file. Implementations
// are stateless and safe for concurrent use from multiple workers.
type Encoder interface {
	Encode(sourcePath string, v planner.Variant) error
}
