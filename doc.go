// Package pdf2html converts PDF documents into self-contained HTML
// documents that reproduce each page's text and images at absolute
// pixel positions scaled from PDF point-space.
//
// # Overview
//
// A Renderer walks every page of a document and produces one
// <section class="page"> block per page. Text is emitted as absolutely
// positioned <div class="t"> elements carrying the span's font, size
// and fill color; images are emitted as absolutely positioned <img>
// elements inlined as PNG data URIs. A single Scale factor maps the
// PDF's point-space (72 points per inch) to CSS pixels uniformly for
// coordinates, font sizes and box dimensions.
//
// Per image the renderer decides between two paths: "extract" decodes
// the image's stored pixel data directly from the document, while
// "clip" rasterizes the corresponding rectangle of the rendered page.
// Extraction failures always fall back to clipping; an image is only
// dropped when both paths fail, and a single bad image never aborts
// the page or the document.
//
// File output is atomic: the HTML is written to a sibling temporary
// path and renamed over the destination, so a concurrent reader never
// observes a partially written file.
package pdf2html
