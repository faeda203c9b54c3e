// Package media stores user uploaded images on an S3 compatible host and
// returns their public URLs.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

const MaxImageSize = 5 << 20

var (
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image too large")
	ErrNotConfigured = errors.New("media storage is not configured")
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Uploader interface {
	Upload(ctx context.Context, folder, dataURI string) (string, error)
}

type Image struct {
	ContentType string
	Data        []byte
}

func (i Image) Extension() string {
	return extensions[i.ContentType]
}

// ParseDataURI decodes a base64 data URI such as
// "data:image/png;base64,iVBORw0...".
func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Image{}, ErrInvalidImage
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, ErrInvalidImage
	}

	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, ErrInvalidImage
	}

	contentType = strings.ToLower(contentType)
	if _, ok := extensions[contentType]; !ok {
		return Image{}, ErrInvalidImage
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return Image{}, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return Image{}, ErrInvalidImage
	}

	if len(data) > MaxImageSize {
		return Image{}, ErrImageTooLarge
	}

	return Image{ContentType: contentType, Data: data}, nil
}

// Disabled rejects every upload. It stands in when no media host is
// configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}
