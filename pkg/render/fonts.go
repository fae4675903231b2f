package render

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/dmidlo/gslide2media/pkg/errors"
)

// The Go Regular face ships embedded with golang.org/x/image, so text
// rendering needs no font files on disk and stays identical across hosts.
var (
	fontOnce   sync.Once
	parsedFont *truetype.Font
	fontErr    error
)

func baseFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		parsedFont, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, fontErr, "parse embedded font")
	}
	return parsedFont, nil
}

// faceForSize returns a font face at the given pixel size. Faces are cheap
// to construct and hold no shared mutable state, so one per call keeps
// rendering reentrant.
func faceForSize(size float64) (font.Face, error) {
	f, err := baseFont()
	if err != nil {
		return nil, err
	}
	if size < 1 {
		size = 1
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72}), nil
}
