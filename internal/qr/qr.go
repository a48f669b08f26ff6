// Package qr renders the scannable handover-verification codes shown at
// the security office desk.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered PNG edge length in pixels.
const DefaultSize = 256

// VerificationURL builds the link a scanned code opens.
func VerificationURL(baseURL, itemID string) string {
	return fmt.Sprintf("%s/items/%s/verify", baseURL, itemID)
}

// PNG encodes the verification URL for an item as a QR code image.
func PNG(baseURL, itemID string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(VerificationURL(baseURL, itemID), qrcode.Medium, size)
}
