package pdf2html

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// Letter-size fallback for pages without a resolvable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// A Document is an open PDF scoped to one render call. The structural
// reader is opened eagerly so that open errors surface before any
// output is produced; the rasterizer is opened lazily because it is
// only needed when some image takes the clip path.
type Document struct {
	title  string
	data   []byte
	reader *pdf.Reader
	fdoc   *fitz.Document
	ras    PageRasterizer
}

// OpenDocument reads and parses the PDF at path.
func OpenDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	d, err := NewDocumentFromBytes(data, stem)
	if err != nil {
		if oe, ok := err.(*DocumentOpenError); ok {
			oe.Path = path
		}
		return nil, err
	}
	return d, nil
}

// NewDocumentFromBytes parses an in-memory PDF. The title becomes the
// HTML document title.
func NewDocumentFromBytes(data []byte, title string) (d *Document, err error) {
	defer func() {
		// The reader panics on severely malformed xref structures.
		if r := recover(); r != nil {
			d = nil
			err = &DocumentOpenError{Err: recoveredError(r)}
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &DocumentOpenError{Err: err}
	}
	return &Document{title: title, data: data, reader: reader}, nil
}

// Close releases the rasterizer if one was opened. The structural
// reader holds no OS resources for in-memory documents.
func (d *Document) Close() error {
	if d.fdoc != nil {
		fdoc := d.fdoc
		d.fdoc = nil
		return fdoc.Close()
	}
	return nil
}

// NumPage returns the number of pages in the document.
func (d *Document) NumPage() int {
	return d.reader.NumPage()
}

// page returns the 1-indexed page. A null page is returned for
// out-of-range or broken page-tree entries.
func (d *Document) page(num int) pdf.Page {
	return d.reader.Page(num)
}

// rasterizer opens the MuPDF view of the document on first use.
func (d *Document) rasterizer() (PageRasterizer, error) {
	if d.ras != nil {
		return d.ras, nil
	}
	fdoc, err := fitz.NewFromMemory(d.data)
	if err != nil {
		return nil, err
	}
	d.fdoc = fdoc
	d.ras = &fitzRasterizer{doc: fdoc}
	return d.ras, nil
}

// pageBox is a page's resolved MediaBox: its point-space origin and
// dimensions. MediaBoxes need not start at (0, 0); all top-left
// conversions subtract the origin so content lands inside the page.
type pageBox struct {
	x0, y0 float64
	w, h   float64
}

// toTopLeft converts a PDF bottom-up coordinate into the page's
// top-left-origin point-space.
func (b pageBox) toTopLeft(x, y float64) (float64, float64) {
	return x - b.x0, b.y0 + b.h - y
}

// pageBounds resolves the page's MediaBox, walking Parent entries for
// inherited boxes.
func pageBounds(p pdf.Page) pageBox {
	box := findInherited(p.V, "MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return pageBox{w: defaultPageWidth, h: defaultPageHeight}
	}
	x0 := box.Index(0).Float64()
	y0 := box.Index(1).Float64()
	w := box.Index(2).Float64() - x0
	h := box.Index(3).Float64() - y0
	if w <= 0 || h <= 0 {
		return pageBox{w: defaultPageWidth, h: defaultPageHeight}
	}
	return pageBox{x0: x0, y0: y0, w: w, h: h}
}

// pageSize returns the page's point-space dimensions.
func pageSize(p pdf.Page) (w, h float64) {
	b := pageBounds(p)
	return b.w, b.h
}

// findInherited looks key up on the page dictionary, then on its
// ancestors in the page tree.
func findInherited(v pdf.Value, key string) pdf.Value {
	for ; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return pdf.Value{}
}
