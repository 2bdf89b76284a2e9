package artwork

import (
	"bytes"
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ErrNoSources means no usable source image was supplied for a collage.
var ErrNoSources = errors.New("no collage sources")

// Collage composites up to four source images into a single 2x2 grid
// of size x size pixels. Each quadrant is center-cropped to fill its
// cell; with fewer than four sources the available ones repeat. Sources
// that fail to decode are skipped.
func Collage(sources [][]byte, size int) ([]byte, error) {
	var imgs []image.Image
	for _, src := range sources {
		img, err := imaging.Decode(bytes.NewReader(src))
		if err != nil {
			continue
		}
		imgs = append(imgs, img)
		if len(imgs) == 4 {
			break
		}
	}
	if len(imgs) == 0 {
		return nil, ErrNoSources
	}

	cell := size / 2
	canvas := imaging.New(size, size, neutralFill)
	for i := 0; i < 4; i++ {
		tile := imaging.Fill(imgs[i%len(imgs)], cell, cell, imaging.Center, imaging.Lanczos)
		canvas = imaging.Paste(canvas, tile, image.Pt((i%2)*cell, (i/2)*cell))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
