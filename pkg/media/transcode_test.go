package media

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/options"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 36))
	for y := 0; y < 36; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 4), uint8(y * 7), 128, 255})
		}
	}
	return img
}

func TestEncodePNGRoundtrip(t *testing.T) {
	tc := NewTranscoder()
	data, err := tc.EncodePNG(testImage())
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() != 64 || decoded.Bounds().Dy() != 36 {
		t.Errorf("bounds = %v", decoded.Bounds())
	}
}

func TestEncodeJPEG(t *testing.T) {
	tc := NewTranscoder(WithJPEGQuality(50))
	data, err := tc.EncodeJPEG(testImage())
	if err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Higher quality should not produce smaller output for the same image.
	hi := NewTranscoder(WithJPEGQuality(95))
	hiData, err := hi.EncodeJPEG(testImage())
	if err != nil {
		t.Fatalf("EncodeJPEG hi: %v", err)
	}
	if len(hiData) < len(data) {
		t.Errorf("quality 95 output (%d bytes) smaller than quality 50 (%d bytes)", len(hiData), len(data))
	}
}

func TestEncodeSVGPassthrough(t *testing.T) {
	raw := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect/></svg>`)
	doc := &slides.VectorDocument{Width: 100, Height: 100, Raw: raw}

	tc := NewTranscoder()
	out, err := tc.EncodeSVG(doc)
	if err != nil {
		t.Fatalf("EncodeSVG: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Error("SVG passthrough must emit the original bytes unchanged")
	}

	// The returned slice is a copy; mutating it must not touch the document.
	out[0] = 'X'
	if doc.Raw[0] != '<' {
		t.Error("EncodeSVG shares storage with the document")
	}
}

func TestEncodeSVGSynthesized(t *testing.T) {
	doc := &slides.VectorDocument{
		Width:  200,
		Height: 100,
		Elements: []slides.Element{
			{Kind: slides.ElementRect, X: 10, Y: 10, Width: 50, Height: 20, Fill: "#ff0000"},
			{Kind: slides.ElementText, X: 10, Y: 40, Width: 100, Height: 20, Text: "a<b", FontSize: 12},
		},
	}
	tc := NewTranscoder()
	out, err := tc.EncodeSVG(doc)
	if err != nil {
		t.Fatalf("EncodeSVG: %v", err)
	}
	s := string(out)
	for _, want := range []string{"<svg", `viewBox="0 0 200 100"`, "<rect", "a&lt;b"} {
		if !strings.Contains(s, want) {
			t.Errorf("synthesized SVG missing %q:\n%s", want, s)
		}
	}
}

func TestEncodeDispatch(t *testing.T) {
	tc := NewTranscoder()
	slide := &slides.Slide{Vector: &slides.VectorDocument{Width: 10, Height: 10}}

	if _, err := tc.Encode(testImage(), slide, options.FormatPNG); err != nil {
		t.Errorf("png: %v", err)
	}
	if _, err := tc.Encode(testImage(), slide, options.FormatJPEG); err != nil {
		t.Errorf("jpeg: %v", err)
	}
	if _, err := tc.Encode(nil, slide, options.FormatSVG); err != nil {
		t.Errorf("svg: %v", err)
	}

	_, err := tc.Encode(testImage(), slide, options.FormatMP4)
	if errors.GetCode(err) != errors.ErrCodeUnsupportedFormat {
		t.Errorf("mp4 via Encode: err = %v, want UNSUPPORTED_FORMAT", err)
	}
}

func TestEncodeMetadataOmitsImageBytes(t *testing.T) {
	p, err := slides.NewSourced("p1", "Deck", "team", []string{"s1", "s2"})
	if err != nil {
		t.Fatalf("NewSourced: %v", err)
	}
	fetched := []*slides.Slide{
		{PresentationID: "p1", ID: "s1", Index: 0, Duration: 3, Vector: &slides.VectorDocument{
			Width: 960, Height: 540,
			Raw:   []byte("SECRET_RAW_SVG"),
			Elements: []slides.Element{
				{Kind: slides.ElementImage, Width: 10, Height: 10, ImageData: []byte("SECRET_IMAGE")},
			},
		}},
	}

	data, err := EncodeMetadata(p, fetched)
	if err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "SECRET") {
		t.Error("metadata must not contain image bytes")
	}
	for _, want := range []string{`"presentation_id": "p1"`, `"slide_count": 2`, `"id": "s2"`, `"element_count": 1`} {
		if !strings.Contains(s, want) {
			t.Errorf("metadata missing %q:\n%s", want, s)
		}
	}
}

func TestEncodeMetadataSameSlideIDAcrossDecks(t *testing.T) {
	// A batch may pick the slide id "s1" from two different decks; each
	// entry must report its own slide's dimensions.
	p, err := slides.NewBatch("picks", []slides.SlideRef{
		{PresentationID: "pA", SlideID: "s1"},
		{PresentationID: "pB", SlideID: "s1"},
	})
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	fetched := []*slides.Slide{
		{PresentationID: "pA", ID: "s1", Index: 0, Vector: &slides.VectorDocument{Width: 400, Height: 300}},
		{PresentationID: "pB", ID: "s1", Index: 1, Vector: &slides.VectorDocument{Width: 1920, Height: 1080}},
	}

	data, err := EncodeMetadata(p, fetched)
	if err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	var out struct {
		Slides []struct {
			ID     string  `json:"id"`
			Index  int     `json:"index"`
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		} `json:"slides"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	if len(out.Slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(out.Slides))
	}
	if out.Slides[0].Width != 400 || out.Slides[0].Height != 300 {
		t.Errorf("slide 0 = %gx%g, want 400x300", out.Slides[0].Width, out.Slides[0].Height)
	}
	if out.Slides[1].Width != 1920 || out.Slides[1].Height != 1080 {
		t.Errorf("slide 1 = %gx%g, want 1920x1080", out.Slides[1].Width, out.Slides[1].Height)
	}
}
