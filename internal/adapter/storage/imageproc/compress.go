package imageproc

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	// maxWidth is the widest a stored receipt gets; phone photos are
	// downscaled to it.
	maxWidth = 1280

	jpegQuality = 75
)

// Processor implements usecase.ReceiptProcessor. It re-encodes every
// receipt as JPEG and downscales oversized photos.
type Processor struct{}

// New creates a new Processor.
func New() *Processor {
	return &Processor{}
}

// Normalize decodes the image, downscales it if it is wider than maxWidth
// and re-encodes it as JPEG.
func (p *Processor) Normalize(data []byte) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}
