package pdf2html

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gen2brain/go-fitz"
)

// A PageRasterizer renders whole pages to bitmaps. Page indexes are
// zero-based. Implementations are not required to be safe for
// concurrent use; the renderer serializes calls per document.
type PageRasterizer interface {
	RasterizePage(pageIndex int, dpi float64) (image.Image, error)
}

type fitzRasterizer struct {
	doc *fitz.Document
}

func (r *fitzRasterizer) RasterizePage(pageIndex int, dpi float64) (image.Image, error) {
	img, err := r.doc.ImageDPI(pageIndex, dpi)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// clipRegion rasterizes the page at oversample times the native 72
// DPI and crops the region covering bbox. The crop is composited onto
// white so partially covered or out-of-page regions come out opaque.
func clipRegion(ras PageRasterizer, pageIndex int, bbox Rect, oversample float64) (image.Image, error) {
	page, err := ras.RasterizePage(pageIndex, 72*oversample)
	if err != nil {
		return nil, err
	}

	crop := image.Rect(
		int(bbox.X0*oversample),
		int(bbox.Y0*oversample),
		int(bbox.X1*oversample+0.5),
		int(bbox.Y1*oversample+0.5),
	)
	if crop.Dx() <= 0 || crop.Dy() <= 0 {
		return nil, fmt.Errorf("empty clip region")
	}

	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(out, out.Rect, image.NewUniform(color.White), image.Point{}, draw.Src)

	visible := crop.Intersect(page.Bounds())
	if !visible.Empty() {
		dst := visible.Sub(crop.Min)
		draw.Draw(out, dst, page, visible.Min, draw.Src)
	}
	return out, nil
}
