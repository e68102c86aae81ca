package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DataURL renders content as a QR PNG and returns it as a
// base64 data URL suitable for direct embedding in an <img> tag.
func DataURL(content string, size int) (string, error) {
	if size <= 0 {
		size = 320
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
