// Package qrcode renders PNG QR codes for deep links shown on site devices.
package qrcode

import (
	"errors"
	"net/url"
	"strings"

	qr "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 64
	MaxSize     = 1024
)

// ErrEmptyContent is returned when there is nothing to encode.
var ErrEmptyContent = errors.New("qrcode: content is empty")

// PNG encodes content as a PNG image with medium error correction. Sizes outside
// [MinSize, MaxSize] are clamped.
func PNG(content string, size int) ([]byte, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	return qr.Encode(content, qr.Medium, clampSize(size))
}

// LinkPNG encodes an absolute http(s) URL, rejecting anything else.
func LinkPNG(link string, size int) ([]byte, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("qrcode: only http(s) links can be encoded")
	}
	if parsed.Host == "" {
		return nil, errors.New("qrcode: link host is required")
	}
	return PNG(parsed.String(), size)
}

func clampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	default:
		return size
	}
}
