package artwork

import (
	"bytes"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
)

// neutralFill is the background color used for placeholders and
// collage padding.
var neutralFill = color.NRGBA{R: 58, G: 58, B: 60, A: 255}

var (
	placeholderOnce  sync.Once
	placeholderBytes []byte
)

// Placeholder returns the fixed fallback image. It is generated once,
// never cached on disk, and always available.
func Placeholder() []byte {
	placeholderOnce.Do(func() {
		img := imaging.New(600, 600, neutralFill)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			panic(err)
		}
		placeholderBytes = buf.Bytes()
	})
	return placeholderBytes
}
