package pdf2html

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ledongthuc/pdf"
	xdraw "golang.org/x/image/draw"
)

// extractImage decodes the stored pixel data of the named image
// XObject. It handles the common web-export shape: 8 bits per
// component, DeviceRGB or DeviceGray, with an optional gray soft
// mask. Anything else returns an error so the caller can fall back
// to clipping. The result is always fully opaque: soft-masked pixels
// are flattened over white.
func extractImage(p pdf.Page, name string) (img image.Image, err error) {
	defer func() {
		// The stream reader panics on filters it cannot decode,
		// DCTDecode included.
		if r := recover(); r != nil {
			img = nil
			err = recoveredError(r)
		}
	}()

	obj := p.Resources().Key("XObject").Key(name)
	if obj.Key("Subtype").Name() != "Image" {
		return nil, fmt.Errorf("xobject %q is not an image", name)
	}
	w := int(obj.Key("Width").Int64())
	h := int(obj.Key("Height").Int64())
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image %q has no pixels", name)
	}
	if bpc := obj.Key("BitsPerComponent").Int64(); bpc != 8 {
		return nil, fmt.Errorf("image %q: unsupported bit depth %d", name, bpc)
	}

	var ncomp int
	switch tag := colorSpaceTag(obj.Key("ColorSpace")); tag {
	case "DeviceRGB":
		ncomp = 3
	case "DeviceGray":
		ncomp = 1
	default:
		return nil, fmt.Errorf("image %q: unsupported colorspace %q", name, tag)
	}

	data, err := io.ReadAll(obj.Reader())
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", name, err)
	}
	if len(data) < w*h*ncomp {
		return nil, fmt.Errorf("image %q: short pixel data", name)
	}

	var alpha []byte
	if smask := obj.Key("SMask"); !smask.IsNull() {
		alpha, err = decodeSoftMask(smask, w, h)
		if err != nil {
			return nil, fmt.Errorf("image %q: %w", name, err)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * ncomp
			var r, g, b byte
			if ncomp == 3 {
				r, g, b = data[i], data[i+1], data[i+2]
			} else {
				r, g, b = data[i], data[i], data[i]
			}
			if alpha != nil {
				// Composite over white so the output carries no
				// transparency.
				a := uint32(alpha[y*w+x])
				r = byte((uint32(r)*a + 255*(255-a) + 127) / 255)
				g = byte((uint32(g)*a + 255*(255-a) + 127) / 255)
				b = byte((uint32(b)*a + 255*(255-a) + 127) / 255)
			}
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return out, nil
}

// decodeSoftMask reads an 8-bit gray soft mask and resamples it to
// the base image's dimensions when they differ.
func decodeSoftMask(smask pdf.Value, w, h int) ([]byte, error) {
	mw := int(smask.Key("Width").Int64())
	mh := int(smask.Key("Height").Int64())
	if mw <= 0 || mh <= 0 {
		return nil, fmt.Errorf("soft mask has no pixels")
	}
	if bpc := smask.Key("BitsPerComponent").Int64(); bpc != 8 {
		return nil, fmt.Errorf("soft mask: unsupported bit depth %d", bpc)
	}
	data, err := io.ReadAll(smask.Reader())
	if err != nil {
		return nil, fmt.Errorf("soft mask: %w", err)
	}
	if len(data) < mw*mh {
		return nil, fmt.Errorf("soft mask: short pixel data")
	}

	if mw == w && mh == h {
		return data[:w*h], nil
	}

	src := &image.Gray{Pix: data[:mw*mh], Stride: mw, Rect: image.Rect(0, 0, mw, mh)}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst.Pix, nil
}
