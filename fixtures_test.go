package pdf2html

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"
)

// pdfBuilder assembles a minimal but well-formed PDF: sequential
// objects, a correct xref table and a trailer.
type pdfBuilder struct {
	buf     bytes.Buffer
	offsets []int
}

func newPDFBuilder() *pdfBuilder {
	b := &pdfBuilder{}
	b.buf.WriteString("%PDF-1.4\n")
	return b
}

// add appends an indirect object and returns its object number.
func (b *pdfBuilder) add(body string) int {
	num := len(b.offsets) + 1
	b.offsets = append(b.offsets, b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
	return num
}

// addStream appends a stream object. extra holds the dictionary
// entries besides /Length, with a trailing space when non-empty.
func (b *pdfBuilder) addStream(extra string, data []byte) int {
	num := len(b.offsets) + 1
	b.offsets = append(b.offsets, b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n<< %s/Length %d >>\nstream\n", num, extra, len(data))
	b.buf.Write(data)
	b.buf.WriteString("\nendstream\nendobj\n")
	return num
}

// bytes finalizes the file. infoRef may be zero for no Info entry.
func (b *pdfBuilder) bytes(rootRef, infoRef int) []byte {
	start := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", len(b.offsets)+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for _, off := range b.offsets {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", off)
	}
	b.buf.WriteString("trailer\n")
	if infoRef > 0 {
		fmt.Fprintf(&b.buf, "<< /Size %d /Root %d 0 R /Info %d 0 R >>\n", len(b.offsets)+1, rootRef, infoRef)
	} else {
		fmt.Fprintf(&b.buf, "<< /Size %d /Root %d 0 R >>\n", len(b.offsets)+1, rootRef)
	}
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", start)
	return b.buf.Bytes()
}

// helloPDF is one letter-size page showing "Hello" in 12pt Helvetica
// at (72, 708).
func helloPDF() []byte {
	b := newPDFBuilder()
	b.add("<< /Type /Catalog /Pages 2 0 R >>")
	b.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.add("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	b.addStream("", []byte("BT /F1 12 Tf 72 708 Td (Hello) Tj ET"))
	return b.bytes(1, 0)
}

// rgbPixels is the 2x2 DeviceRGB payload of the image fixtures:
// red, green, blue, white.
var rgbPixels = []byte{
	255, 0, 0, 0, 255, 0,
	0, 0, 255, 255, 255, 255,
}

func flateCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("compress fixture: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("compress fixture: %v", err)
	}
	return buf.Bytes()
}

// imagePDF is one letter-size page drawing a 2x2 DeviceRGB image
// into the 100x50pt region at (20, 30) in PDF coordinates.
func imagePDF(t *testing.T) []byte {
	t.Helper()
	b := newPDFBuilder()
	b.add("<< /Type /Catalog /Pages 2 0 R >>")
	b.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.add("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /XObject << /Im1 4 0 R >> >> /Contents 5 0 R >>")
	b.addStream("/Type /XObject /Subtype /Image /Width 2 /Height 2 "+
		"/ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /FlateDecode ",
		flateCompress(t, rgbPixels))
	b.addStream("", []byte("q 100 0 0 50 20 30 cm /Im1 Do Q"))
	return b.bytes(1, 0)
}

// offsetHelloPDF matches helloPDF geometry but with a MediaBox whose
// origin sits at (20, 20) instead of (0, 0).
func offsetHelloPDF() []byte {
	b := newPDFBuilder()
	b.add("<< /Type /Catalog /Pages 2 0 R >>")
	b.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.add("<< /Type /Page /Parent 2 0 R /MediaBox [20 20 632 812] " +
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	b.addStream("", []byte("BT /F1 12 Tf 92 728 Td (Hello) Tj ET"))
	return b.bytes(1, 0)
}

// deepImagePDF draws the same region as imagePDF with a 16-bit image,
// which the extraction path does not decode.
func deepImagePDF(t *testing.T) []byte {
	t.Helper()
	b := newPDFBuilder()
	b.add("<< /Type /Catalog /Pages 2 0 R >>")
	b.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.add("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /XObject << /Im1 4 0 R >> >> /Contents 5 0 R >>")
	b.addStream("/Type /XObject /Subtype /Image /Width 2 /Height 2 "+
		"/ColorSpace /DeviceRGB /BitsPerComponent 16 ",
		make([]byte, 2*2*3*2))
	b.addStream("", []byte("q 100 0 0 50 20 30 cm /Im1 Do Q"))
	return b.bytes(1, 0)
}

// emptyPagePDF is one page with no content stream at all.
func emptyPagePDF() []byte {
	b := newPDFBuilder()
	b.add("<< /Type /Catalog /Pages 2 0 R >>")
	b.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.add("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	return b.bytes(1, 0)
}

// infoPDF is helloPDF plus an Info dictionary.
func infoPDF() []byte {
	b := newPDFBuilder()
	b.add("<< /Type /Catalog /Pages 2 0 R >>")
	b.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.add("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	b.addStream("", []byte("BT /F1 12 Tf 72 708 Td (Hello) Tj ET"))
	info := b.add("<< /Title (Sample Document) /Author (Jane Roe) /Producer (pdf2html test) >>")
	return b.bytes(1, info)
}
