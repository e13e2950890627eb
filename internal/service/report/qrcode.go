package report

import (
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

// QRCode returns a PNG encoding content. A size <= 0 uses DefaultQRSize.
func QRCode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qr code content is empty")
	}
	if size <= 0 {
		size = DefaultQRSize
	}

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, "encoding qr code")
	}
	return png, nil
}
