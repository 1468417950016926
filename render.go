package pdf2html

import (
	"context"
	"fmt"
	"image"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/semaphore"

	"github.com/dangen-master/pdf2html/logger"
)

// A Renderer converts PDF documents into self-contained positioned
// HTML. It is safe for concurrent use; MaxConcurrentRenders bounds
// how many documents render at once.
type Renderer struct {
	opts Options
	sem  *semaphore.Weighted
	log  *logger.Log
}

// NewRenderer validates opts and builds a Renderer. A nil opts uses
// the defaults.
func NewRenderer(opts *Options) (*Renderer, error) {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Renderer{
		opts: *opts,
		sem:  semaphore.NewWeighted(int64(opts.MaxConcurrentRenders)),
		log:  logger.New(opts.Logger),
	}, nil
}

// Render converts the PDF at path and returns the HTML document.
func (r *Renderer) Render(ctx context.Context, path string) (string, error) {
	doc, err := OpenDocument(path)
	if err != nil {
		r.log.Error("failed to open document", "path", path, "error", err)
		return "", err
	}
	defer doc.Close()
	r.log.Debug("document opened", "path", path, "pages", doc.NumPage())
	return r.renderDocument(ctx, doc)
}

// RenderBytes converts an in-memory PDF. The title becomes the HTML
// document title.
func (r *Renderer) RenderBytes(ctx context.Context, data []byte, title string) (string, error) {
	doc, err := NewDocumentFromBytes(data, title)
	if err != nil {
		r.log.Error("failed to open document", "title", title, "error", err)
		return "", err
	}
	defer doc.Close()
	return r.renderDocument(ctx, doc)
}

// RenderFile converts src and writes the HTML to dst atomically. On
// any error dst keeps its previous contents.
func (r *Renderer) RenderFile(ctx context.Context, src, dst string) error {
	html, err := r.Render(ctx, src)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(dst, []byte(html)); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	r.log.Debug("output written", "path", dst, "bytes", len(html))
	return nil
}

func (r *Renderer) renderDocument(ctx context.Context, doc *Document) (string, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer r.sem.Release(1)

	n := doc.NumPage()
	pages := make([]string, 0, n)
	for num := 1; num <= n; num++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pages = append(pages, r.renderPage(doc, num))
	}
	return renderShell(doc.title, pages), nil
}

// renderPage produces one page section. Pages degrade instead of
// failing: extraction errors leave the text layer empty and image
// errors drop the affected image.
func (r *Renderer) renderPage(doc *Document, num int) string {
	p := doc.page(num)
	box := pageBounds(p)
	r.log.Debug("rendering page", "page", num, "width", box.w, "height", box.h)

	var spanTags []string
	glyphs, err := extractGlyphs(p)
	if err != nil {
		r.log.Error("text extraction failed", "page", num, "error", err)
	} else {
		for _, s := range groupSpans(glyphs, box) {
			spanTags = append(spanTags, renderSpan(s, r.opts.Scale))
		}
	}

	var imageTags []string
	for _, region := range resolveImageRegions(p, box) {
		if tag, ok := r.renderImage(doc, p, num, region); ok {
			imageTags = append(imageTags, tag)
		}
	}

	return renderPageSection(box.w, box.h, r.opts.Scale, spanTags, imageTags)
}

func (r *Renderer) renderImage(doc *Document, p pdf.Page, num int, region ImageRegion) (string, bool) {
	bbox := *region.BBox
	if bbox.Width() <= 0 || bbox.Height() <= 0 {
		return "", false
	}

	decided := decideImageMode(region, r.opts.ImageMode)
	r.log.Debug("image decision", "page", num, "image", region.Name,
		"mode", string(decided), "colorspace", region.ColorSpace,
		"smask", region.HasSMask, "mask", region.HasMask)

	extract := func() (image.Image, error) {
		return extractImage(p, region.Name)
	}
	clip := func() (image.Image, error) {
		ras, err := doc.rasterizer()
		if err != nil {
			return nil, err
		}
		return clipRegion(ras, num-1, bbox, r.opts.ClipOversample)
	}

	img, used, err := executeImage(decided, extract, clip)
	if err != nil {
		r.log.Error("image dropped", "page", num, "image", region.Name, "error", err)
		return "", false
	}
	if used != decided {
		r.log.Debug("image fell back to clip", "page", num, "image", region.Name)
	}

	dataURL, err := pngDataURI(img)
	if err != nil {
		r.log.Error("image dropped", "page", num, "image", region.Name, "error", err)
		return "", false
	}
	return renderImageTag(bbox, r.opts.Scale, dataURL), true
}
