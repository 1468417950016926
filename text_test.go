package pdf2html

import (
	"bytes"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFixture(t *testing.T, data []byte) *pdf.Reader {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return r
}

func TestExtractGlyphsHello(t *testing.T) {
	reader := openFixture(t, helloPDF())
	require.Equal(t, 1, reader.NumPage())

	glyphs, err := extractGlyphs(reader.Page(1))
	require.NoError(t, err)
	require.Len(t, glyphs, 5)

	var got string
	for _, g := range glyphs {
		got += string(g.r)
		assert.Equal(t, "Helvetica", g.font)
		assert.InDelta(t, 12.0, g.size, 1e-9)
		assert.InDelta(t, 708.0, g.y, 1e-9)
		assert.Equal(t, 0, g.color)
	}
	assert.Equal(t, "Hello", got)
	assert.InDelta(t, 72.0, glyphs[0].x, 1e-9)
}

func TestExtractGlyphsEmptyPage(t *testing.T) {
	reader := openFixture(t, emptyPagePDF())
	glyphs, err := extractGlyphs(reader.Page(1))
	require.NoError(t, err)
	assert.Empty(t, glyphs)
}

func TestGroupSpansMergesRun(t *testing.T) {
	glyphs := []glyph{
		{font: "Helvetica", size: 12, x: 72, y: 708, w: 6, r: 'H'},
		{font: "Helvetica", size: 12, x: 78, y: 708, w: 6, r: 'i'},
	}
	spans := groupSpans(glyphs, pageBox{w: 612, h: 792})
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "Hi", s.Text)
	assert.InDelta(t, 72.0, s.X0, 1e-9)
	assert.InDelta(t, 84.0, s.X1, 1e-9)
	assert.InDelta(t, 792-(708+12*0.8), s.Y0, 1e-9)
	assert.InDelta(t, 792-(708-12*0.2), s.Y1, 1e-9)
}

func TestGroupSpansOffsetOrigin(t *testing.T) {
	glyphs := []glyph{
		{font: "Helvetica", size: 12, x: 92, y: 728, w: 6, r: 'H'},
	}
	spans := groupSpans(glyphs, pageBox{x0: 20, y0: 20, w: 612, h: 792})
	require.Len(t, spans, 1)
	s := spans[0]
	assert.InDelta(t, 72.0, s.X0, 1e-9)
	assert.InDelta(t, 78.0, s.X1, 1e-9)
	assert.InDelta(t, 812-(728+12*0.8), s.Y0, 1e-9)
	assert.InDelta(t, 812-(728-12*0.2), s.Y1, 1e-9)
}

func TestGroupSpansBreaks(t *testing.T) {
	tests := []struct {
		name   string
		second glyph
	}{
		{
			name:   "large horizontal gap",
			second: glyph{font: "Helvetica", size: 12, x: 200, y: 708, w: 6, r: 'b'},
		},
		{
			name:   "different baseline",
			second: glyph{font: "Helvetica", size: 12, x: 78, y: 690, w: 6, r: 'b'},
		},
		{
			name:   "different font",
			second: glyph{font: "Courier", size: 12, x: 78, y: 708, w: 6, r: 'b'},
		},
		{
			name:   "different size",
			second: glyph{font: "Helvetica", size: 9, x: 78, y: 708, w: 6, r: 'b'},
		},
		{
			name:   "different color",
			second: glyph{font: "Helvetica", size: 12, x: 78, y: 708, w: 6, color: 0xff0000, r: 'b'},
		},
	}

	first := glyph{font: "Helvetica", size: 12, x: 72, y: 708, w: 6, r: 'a'}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := groupSpans([]glyph{first, tt.second}, pageBox{w: 612, h: 792})
			require.Len(t, spans, 2)
			assert.Equal(t, "a", spans[0].Text)
			assert.Equal(t, "b", spans[1].Text)
		})
	}
}

func TestGroupSpansEmpty(t *testing.T) {
	assert.Empty(t, groupSpans(nil, pageBox{w: 612, h: 792}))
}

func TestFontFlags(t *testing.T) {
	tests := []struct {
		font   string
		bold   bool
		italic bool
	}{
		{"Helvetica", false, false},
		{"Helvetica-Bold", true, false},
		{"Times-BoldItalic", true, true},
		{"Courier-Oblique", false, true},
		{"OpenSans-SemiBold", true, false},
		{"Roboto-Black", true, false},
		{"", false, false},
	}
	for _, tt := range tests {
		bold, italic := fontFlags(tt.font)
		assert.Equal(t, tt.bold, bold, tt.font)
		assert.Equal(t, tt.italic, italic, tt.font)
	}
}

func TestPackColor(t *testing.T) {
	assert.Equal(t, 0x000000, packColor(0, 0, 0))
	assert.Equal(t, 0xffffff, packColor(1, 1, 1))
	assert.Equal(t, 0xff0000, packColor(1, 0, 0))
	assert.Equal(t, 0xffffff, packColor(2, 2, 2))
	assert.Equal(t, 0x000000, packColor(-1, -1, -1))
}

func TestCMYKColor(t *testing.T) {
	assert.Equal(t, 0x000000, cmykColor(0, 0, 0, 1))
	assert.Equal(t, 0xffffff, cmykColor(0, 0, 0, 0))
	assert.Equal(t, 0x00ffff, cmykColor(1, 0, 0, 0))
}
