package media

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmidlo/gslide2media/pkg/slides"
)

// serializeSVG emits the normalized document as a standalone SVG.
// Element order is preserved; embedded images become data URIs.
func serializeSVG(doc *slides.VectorDocument) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		doc.Width, doc.Height, doc.Width, doc.Height)

	for _, el := range doc.Elements {
		writeElement(&b, el)
	}

	b.WriteString("</svg>\n")
	return []byte(b.String()), nil
}

func writeElement(b *strings.Builder, el slides.Element) {
	switch el.Kind {
	case slides.ElementRect:
		fmt.Fprintf(b, `  <rect x="%g" y="%g" width="%g" height="%g"%s/>`+"\n",
			el.X, el.Y, el.Width, el.Height, styleAttrs(el))

	case slides.ElementEllipse:
		fmt.Fprintf(b, `  <ellipse cx="%g" cy="%g" rx="%g" ry="%g"%s/>`+"\n",
			el.X+el.Width/2, el.Y+el.Height/2, el.Width/2, el.Height/2, styleAttrs(el))

	case slides.ElementLine:
		pts := make([]string, len(el.Points))
		for i, pt := range el.Points {
			pts[i] = fmt.Sprintf("%g,%g", pt.X, pt.Y)
		}
		fmt.Fprintf(b, `  <polyline points="%s" fill="none"%s/>`+"\n",
			strings.Join(pts, " "), strokeAttrs(el))

	case slides.ElementText:
		fill := el.Fill
		if fill == "" {
			fill = "#000000"
		}
		size := el.FontSize
		if size <= 0 {
			size = 14
		}
		fmt.Fprintf(b, `  <text x="%g" y="%g" font-size="%g" fill="%s">%s</text>`+"\n",
			el.X, el.Y+size, size, fill, escapeText(el.Text))

	case slides.ElementImage:
		fmt.Fprintf(b, `  <image x="%g" y="%g" width="%g" height="%g" href="data:image;base64,%s"/>`+"\n",
			el.X, el.Y, el.Width, el.Height,
			base64.StdEncoding.EncodeToString(el.ImageData))
	}
}

func styleAttrs(el slides.Element) string {
	var b strings.Builder
	if el.Fill != "" {
		fmt.Fprintf(&b, ` fill="%s"`, el.Fill)
	} else {
		b.WriteString(` fill="none"`)
	}
	b.WriteString(strokeAttrs(el))
	return b.String()
}

func strokeAttrs(el slides.Element) string {
	if el.Stroke == "" {
		return ""
	}
	w := el.StrokeWidth
	if w <= 0 {
		w = 1
	}
	return fmt.Sprintf(` stroke="%s" stroke-width="%g"`, el.Stroke, w)
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
