package totpx

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// DefaultQRSize is the edge length in pixels of rendered QR codes.
const DefaultQRSize = 256

// QRRenderer turns a provisioning URI into an image.
type QRRenderer interface {
	Render(uri string) ([]byte, error)
}

// PNGRenderer renders QR codes as square PNG images.
type PNGRenderer struct {
	Size int
}

// Render encodes uri as a QR code with medium error correction and returns
// the PNG bytes.
func (r PNGRenderer) Render(uri string) ([]byte, error) {
	if uri == "" {
		return nil, errors.New("totpx: empty uri")
	}

	size := r.Size
	if size <= 0 {
		size = DefaultQRSize
	}

	code, err := qr.Encode(uri, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("totpx: encode qr: %w", err)
	}
	code, err = barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("totpx: scale qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, fmt.Errorf("totpx: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
