package storage

import (
	"bytes"
	"io"

	"github.com/disintegration/imaging"
)

const avatarSize = 256

// NormalizeAvatar decodes any supported image, crops it to a centered square
// at avatarSize and re-encodes it as JPEG, so every avatar lands at the same
// fixed path with a predictable format.
func NormalizeAvatar(r io.Reader) (io.Reader, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	square := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return &buf, nil
}
