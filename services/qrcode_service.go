// services/qrcode_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QREncoder matches qrcode.Encode so tests can substitute it.
type QREncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// TeamShareURL is the public address of a team post.
func TeamShareURL(applicationURL string, postID int64) string {
	return fmt.Sprintf("%s/team/%d", strings.TrimRight(applicationURL, "/"), postID)
}

// GenerateQRCode encodes content as a square PNG of size pixels. A nil
// encoder uses qrcode.Encode.
func GenerateQRCode(content string, size int, encoder QREncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid size: must be positive")
	}
	if encoder == nil {
		encoder = qrcode.Encode
	}

	png, err := encoder(content, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
