// Package imaging confirms that uploaded bytes really are a decodable
// image in a supported format. Extension checks happen earlier in the
// pipeline; this guards against mislabeled files reaching the model.
package imaging

import (
	"bytes"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
)

var supportedFormats = map[string]struct{}{
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// DetectFormat decodes the image header and returns the format name
// (jpeg, png, webp). Anything else, or bytes that do not decode at all,
// is reported as domain.ErrUnsupportedFormat.
func DetectFormat(content []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "detect_format",
			fmt.Errorf("decode image: %w", err))
	}
	if _, ok := supportedFormats[format]; !ok {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "detect_format",
			fmt.Errorf("format %q is not supported", format))
	}
	return format, nil
}
