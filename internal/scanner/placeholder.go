package scanner

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// placeholderWidth is the pixel width of inline blur-up placeholders.
// At ~24px a JPEG is a few hundred bytes, small enough to live in the
// manifest and be inlined into HTML.
const placeholderWidth = 24

// placeholderDataURI renders a tiny blurred preview of the source image
// and returns it as a data URI suitable for inlining.
func placeholderDataURI(sourcePath string) (string, error) {
	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("placeholder load: %w", err)
	}

	tiny := imaging.Resize(img, placeholderWidth, 0, imaging.Lanczos)
	tiny = imaging.Blur(tiny, 0.8)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, tiny, &jpeg.Options{Quality: 60}); err != nil {
		return "", fmt.Errorf("placeholder encode: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
