package options

import (
	"testing"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

func testPresentation(t *testing.T) *slides.Presentation {
	t.Helper()
	p, err := slides.NewSourced("p1", "Deck", "", []string{"s1", "s2"})
	if err != nil {
		t.Fatalf("NewSourced: %v", err)
	}
	return p
}

func resolved(t *testing.T, formats ...Format) *Options {
	t.Helper()
	o := &Options{Formats: formats}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	return o
}

func TestComputeKeyDeterministic(t *testing.T) {
	p := testPresentation(t)
	k1, err := ComputeKey(p, resolved(t, FormatPNG, FormatMP4))
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	k2, err := ComputeKey(p, resolved(t, FormatPNG, FormatMP4))
	if err != nil {
		t.Fatalf("ComputeKey: %v", err)
	}
	if k1 != k2 {
		t.Errorf("same request produced different keys: %s vs %s", k1, k2)
	}
}

func TestComputeKeyFormatSetIndependent(t *testing.T) {
	p := testPresentation(t)
	k1, _ := ComputeKey(p, resolved(t, FormatPNG, FormatMP4, FormatSVG))
	k2, _ := ComputeKey(p, resolved(t, FormatSVG, FormatMP4, FormatPNG))
	if k1 != k2 {
		t.Errorf("format permutation changed the key: %s vs %s", k1, k2)
	}

	// The per-format key must not depend on which other formats were
	// requested, or a PNG cached by a {png} run would be unreachable
	// from a later {png,mp4} run.
	k3, _ := ComputeKey(p, resolved(t, FormatPNG))
	if k1.ForFormat(FormatPNG) != k3.ForFormat(FormatPNG) {
		t.Errorf("ForFormat(png) differs across format sets: %s vs %s",
			k1.ForFormat(FormatPNG), k3.ForFormat(FormatPNG))
	}
	if k1 != k3 {
		t.Errorf("request key differs across format sets: %s vs %s", k1, k3)
	}
}

func TestComputeKeySlideOrderSignificant(t *testing.T) {
	p1, _ := slides.NewSourced("p1", "Deck", "", []string{"s1", "s2"})
	p2, _ := slides.NewSourced("p1", "Deck", "", []string{"s2", "s1"})
	o := resolved(t, FormatPNG)
	k1, _ := ComputeKey(p1, o)
	k2, _ := ComputeKey(p2, o)
	if k1 == k2 {
		t.Error("slide reordering must change the key")
	}
}

func TestComputeKeySensitiveToOptions(t *testing.T) {
	p := testPresentation(t)
	base := resolved(t, FormatPNG)
	k1, _ := ComputeKey(p, base)

	hiRes := resolved(t, FormatPNG)
	hiRes.Width, hiRes.Height = 1280, 720
	k2, _ := ComputeKey(p, hiRes)
	if k1 == k2 {
		t.Error("resolution change must change the key")
	}

	fast := resolved(t, FormatPNG)
	fast.FPS = 24
	k3, _ := ComputeKey(p, fast)
	if k1 == k3 {
		t.Error("fps change must change the key")
	}
}

func TestComputeKeyBatchNamespacing(t *testing.T) {
	a, _ := slides.NewBatch("b", []slides.SlideRef{{PresentationID: "p1", SlideID: "s1"}})
	b, _ := slides.NewBatch("b", []slides.SlideRef{{PresentationID: "p2", SlideID: "s1"}})
	o := resolved(t, FormatPNG)
	k1, _ := ComputeKey(a, o)
	k2, _ := ComputeKey(b, o)
	if k1 == k2 {
		t.Error("same slide id from different source decks must differ")
	}
}

func TestComputeKeyRejectsUnknownFormat(t *testing.T) {
	p := testPresentation(t)
	o := resolved(t, FormatPNG)
	o.Formats = append(o.Formats, Format("gif"))
	_, err := ComputeKey(p, o)
	if errors.GetCode(err) != errors.ErrCodeInvalidRequest {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestForFormatDistinct(t *testing.T) {
	p := testPresentation(t)
	k, _ := ComputeKey(p, resolved(t, FormatPNG, FormatMP4))
	if k.ForFormat(FormatPNG) == k.ForFormat(FormatMP4) {
		t.Error("per-format keys must differ")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	o := &Options{}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("default formats = %v, want [svg]", o.Formats)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Errorf("default resolution = %dx%d", o.Width, o.Height)
	}
	if o.FPS != DefaultFPS || o.SlideDuration != DefaultSlideDuration {
		t.Errorf("default timing = %v fps, %v s", o.FPS, o.SlideDuration)
	}
	if o.JPEGQuality != DefaultJPEGQuality {
		t.Errorf("default jpeg quality = %d", o.JPEGQuality)
	}
	if o.RenderWorkers <= 0 || o.FetchWorkers <= 0 {
		t.Error("worker pools must default to positive sizes")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []Options{
		{Formats: []Format{"gif"}},
		{JPEGQuality: 101},
		{FPS: -1},
		{SlideDuration: -2},
		{Width: -10},
	}
	for i, o := range cases {
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		} else if errors.GetCode(err) != errors.ErrCodeInvalidRequest {
			t.Errorf("case %d: code = %v, want INVALID_REQUEST", i, errors.GetCode(err))
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("png, MP4 ,svg")
	if err != nil {
		t.Fatalf("ParseFormats: %v", err)
	}
	want := []Format{FormatPNG, FormatMP4, FormatSVG}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if _, err := ParseFormats("png,webm"); err == nil {
		t.Error("expected error for unknown format")
	}
}
