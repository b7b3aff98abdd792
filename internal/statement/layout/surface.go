package layout

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
)

// FontStyle selects a face of the document font.
type FontStyle string

const (
	FontRegular FontStyle = ""
	FontBold    FontStyle = "B"
	FontItalic  FontStyle = "I"
)

// Align is the horizontal alignment of text within a box.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Box is a rectangle in document units (millimetres).
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Surface is the drawing boundary the engine renders onto. Implementations
// own all document state; the engine only issues primitives.
type Surface interface {
	AddPage()
	SetPage(page int)
	PageCount() int
	SetFont(style FontStyle, size float64)
	TextWidth(text string) float64
	Text(box Box, text string, align Align)
	Line(x1, y1, x2, y2 float64)
	Rect(box Box, fill bool)
	Image(name string, data []byte, box Box) error
	Link(box Box, url string)
	Output(w io.Writer) error
}

// ErrEmptyImage is returned when an image asset has no bytes.
var ErrEmptyImage = errors.New("layout: empty image")

// DetectImageType validates raster bytes and returns the document image type
// ("PNG", "JPG" or "GIF").
func DetectImageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("layout: decode image: %w", err)
	}
	switch format {
	case "png":
		return "PNG", nil
	case "jpeg":
		return "JPG", nil
	case "gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("layout: unsupported image format %q", format)
	}
}
