package classify

import (
	"bytes"
	"image"

	// Register the image encodings accepted at the decode stage.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// decode turns a request payload into pixels. Malformed payloads and
// unsupported encodings are rejected outright; the pipeline never
// substitutes a blank image.
func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, NewError(KindDecode, "empty image payload", nil)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, NewError(KindDecode, "unsupported or malformed image data", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return nil, NewError(KindDecode, "image has zero dimensions", nil)
	}
	return img, nil
}
