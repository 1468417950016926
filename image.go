package pdf2html

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// A Rect is a point-space rectangle with a top-left origin.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// An ImageRegion identifies one embedded image reference on a page.
// Name is the resource identifier under which the content stream
// references the XObject. A nil BBox means no source could position
// the image; such regions never reach the output.
type ImageRegion struct {
	Name       string
	ColorSpace string
	HasSMask   bool
	HasMask    bool
	BBox       *Rect
}

// resourceImage is the contribution of the resource-dictionary walk:
// identifier, soft-mask presence and colorspace tag, but no geometry.
type resourceImage struct {
	ColorSpace string
	HasSMask   bool
}

// placedImage is the contribution of the content-stream walk: the
// region the image was drawn into, and mask references seen on the
// image dictionary at draw time.
type placedImage struct {
	BBox     Rect
	HasMask  bool
	HasSMask bool
}

// collectResourceImages walks Resources/XObject and records every
// image XObject's colorspace tag and soft-mask presence.
func collectResourceImages(p pdf.Page) map[string]resourceImage {
	out := make(map[string]resourceImage)
	xobjs := p.Resources().Key("XObject")
	if xobjs.Kind() != pdf.Dict {
		return out
	}
	for _, name := range xobjs.Keys() {
		obj := xobjs.Key(name)
		if obj.Key("Subtype").Name() != "Image" {
			continue
		}
		out[name] = resourceImage{
			ColorSpace: colorSpaceTag(obj.Key("ColorSpace")),
			HasSMask:   !obj.Key("SMask").IsNull(),
		}
	}
	return out
}

// colorSpaceTag reduces a ColorSpace entry to a comparable tag:
// the name itself, or the family name of an array form such as
// [/ICCBased 12 0 R].
func colorSpaceTag(cs pdf.Value) string {
	switch cs.Kind() {
	case pdf.Name:
		return cs.Name()
	case pdf.Array:
		if cs.Len() > 0 {
			return cs.Index(0).Name()
		}
	}
	return ""
}

// collectPlacements interprets the content streams tracking only the
// transformation matrix, and records the page region each image
// XObject is drawn into. The first placement of an identifier wins.
// box converts the bottom-up drawing coordinates into the top-left
// origin used throughout.
func collectPlacements(p pdf.Page, box pageBox) (placed map[string]placedImage, err error) {
	placed = make(map[string]placedImage)
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()

	if p.V.IsNull() {
		return placed, nil
	}
	streams := contentStreams(p)
	if len(streams) == 0 {
		return placed, nil
	}
	xobjs := p.Resources().Key("XObject")

	ctm := ident
	var stack []matrix

	interp := func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		case "cm":
			if len(args) != 6 {
				panic("bad cm")
			}
			ctm = matrixFromArgs(args).mul(ctm)
		case "q":
			stack = append(stack, ctm)
		case "Q":
			if n := len(stack) - 1; n >= 0 {
				ctm = stack[n]
				stack = stack[:n]
			}
		case "Do":
			if len(args) != 1 {
				return
			}
			name := args[0].Name()
			obj := xobjs.Key(name)
			if obj.Key("Subtype").Name() != "Image" {
				return
			}
			if _, ok := placed[name]; ok {
				return
			}
			placed[name] = placedImage{
				BBox:     unitSquareBBox(ctm, box),
				HasMask:  !obj.Key("Mask").IsNull(),
				HasSMask: !obj.Key("SMask").IsNull(),
			}
		}
	}

	for _, strm := range streams {
		pdf.Interpret(strm, interp)
	}
	return placed, nil
}

// unitSquareBBox maps the image unit square through the CTM and
// returns the enclosing rectangle in top-left-origin point-space.
func unitSquareBBox(m matrix, box pageBox) Rect {
	xs := make([]float64, 0, 4)
	ys := make([]float64, 0, 4)
	for _, c := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, y := m.apply(c[0], c[1])
		xs = append(xs, x)
		ys = append(ys, y)
	}
	minX, maxX := minMax(xs)
	minY, maxY := minMax(ys)
	x0, y0 := box.toTopLeft(minX, maxY)
	x1, y1 := box.toTopLeft(maxX, minY)
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

func minMax(vs []float64) (lo, hi float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// collectIntrinsicBoxes derives a fallback box for each image XObject
// from its intrinsic Width/Height, anchored at the page origin. It is
// only consulted when the content-stream walk found no placement.
func collectIntrinsicBoxes(p pdf.Page, box pageBox) map[string]Rect {
	out := make(map[string]Rect)
	xobjs := p.Resources().Key("XObject")
	if xobjs.Kind() != pdf.Dict {
		return out
	}
	for _, name := range xobjs.Keys() {
		obj := xobjs.Key(name)
		if obj.Key("Subtype").Name() != "Image" {
			continue
		}
		w := obj.Key("Width").Float64()
		h := obj.Key("Height").Float64()
		if w <= 0 || h <= 0 {
			continue
		}
		out[name] = Rect{X0: 0, Y0: box.h - h, X1: w, Y1: box.h}
	}
	return out
}

// mergeImageSources folds the three metadata sources into one record
// per identifier. Bounding boxes come from the placement walk first,
// then the intrinsic fallback; mask flags are the union of what any
// source saw; the colorspace tag comes from the resource walk.
// Identifiers with no bounding box from any source are dropped — they
// cannot be positioned. Results are ordered by identifier.
func mergeImageSources(res map[string]resourceImage, placed map[string]placedImage, intrinsic map[string]Rect) []ImageRegion {
	names := make(map[string]struct{})
	for n := range res {
		names[n] = struct{}{}
	}
	for n := range placed {
		names[n] = struct{}{}
	}
	for n := range intrinsic {
		names[n] = struct{}{}
	}

	ordered := make([]string, 0, len(names))
	for n := range names {
		ordered = append(ordered, n)
	}
	sort.Strings(ordered)

	var regions []ImageRegion
	for _, n := range ordered {
		region := ImageRegion{Name: n}
		if r, ok := res[n]; ok {
			region.ColorSpace = r.ColorSpace
			region.HasSMask = r.HasSMask
		}
		if pl, ok := placed[n]; ok {
			bbox := pl.BBox
			region.BBox = &bbox
			region.HasMask = region.HasMask || pl.HasMask
			region.HasSMask = region.HasSMask || pl.HasSMask
		} else if box, ok := intrinsic[n]; ok {
			bbox := box
			region.BBox = &bbox
		}
		if region.BBox == nil {
			continue
		}
		regions = append(regions, region)
	}
	return regions
}

// resolveImageRegions runs the three collectors and merges their
// contributions. Collector failures degrade to whatever the other
// sources produced, mirroring the best-effort contract.
func resolveImageRegions(p pdf.Page, box pageBox) []ImageRegion {
	res := collectResourceImages(p)
	placed, _ := collectPlacements(p, box)
	intrinsic := collectIntrinsicBoxes(p, box)
	return mergeImageSources(res, placed, intrinsic)
}

// decideImageMode resolves the configured policy for one region into
// a concrete extract-or-clip decision. In auto mode, masked images and
// CMYK/ICC colorspaces clip: rasterizing them against opaque white
// sidesteps alpha and colorspace conversion entirely.
func decideImageMode(region ImageRegion, mode ImageMode) ImageMode {
	switch mode {
	case ImageModeClip:
		return ImageModeClip
	case ImageModeExtract:
		return ImageModeExtract
	}
	if region.HasSMask || region.HasMask {
		return ImageModeClip
	}
	cs := strings.ToUpper(region.ColorSpace)
	if strings.Contains(cs, "CMYK") || strings.Contains(cs, "ICC") {
		return ImageModeClip
	}
	return ImageModeExtract
}

// executeImage runs the decided path and falls back to clipping when
// extraction fails. Extraction must never lose an image that clipping
// could still render; only a clip failure drops the image.
func executeImage(decided ImageMode, extract, clip func() (image.Image, error)) (image.Image, ImageMode, error) {
	if decided == ImageModeExtract {
		img, err := extract()
		if err == nil && img != nil {
			return img, ImageModeExtract, nil
		}
	}
	img, err := clip()
	if err != nil {
		return nil, ImageModeClip, fmt.Errorf("clip: %w", err)
	}
	return img, ImageModeClip, nil
}
