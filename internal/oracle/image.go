package oracle

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"mime"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// ImageEncoder turns an image file into a data URL, downscaling images whose
// longest side exceeds MaxSide.
type ImageEncoder struct {
	MaxSide int
}

// DataURL reads path and returns a base64 data URL.
func (e ImageEncoder) DataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "image/png"
	}
	if e.MaxSide > 0 {
		resized, ok, err := e.downscale(data)
		if err != nil {
			return "", err
		}
		if ok {
			data = resized
			mimeType = "image/png"
		}
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (e ImageEncoder) downscale(data []byte) ([]byte, bool, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= e.MaxSide && cfg.Height <= e.MaxSide {
		return nil, false, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}
	resized := imaging.Fit(img, e.MaxSide, e.MaxSide, imaging.Lanczos)
	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, false, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), true, nil
}
