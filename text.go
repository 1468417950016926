package pdf2html

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// A TextSpan is a run of text sharing one font, size and fill color.
// Its bounding box is in point-space with a top-left origin.
type TextSpan struct {
	Text  string
	Font  string
	Size  float64
	Color int // packed 0xRRGGBB
	X0    float64
	Y0    float64
	X1    float64
	Y1    float64
}

// Span boxes are derived from baseline positions; the object model
// does not expose per-glyph boxes, so ascent and descent are
// approximated as fractions of the font size.
const (
	ascentRatio  = 0.8
	descentRatio = 0.2
)

// glyph is one positioned character produced by the content-stream
// walk, in PDF-native bottom-up coordinates.
type glyph struct {
	font  string
	size  float64
	x, y  float64
	w     float64
	color int
	r     rune
}

type matrix [3][3]float64

var ident = matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func (x matrix) mul(y matrix) matrix {
	var z matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				z[i][j] += x[i][k] * y[k][j]
			}
		}
	}
	return z
}

// apply transforms the point (x, y) by m.
func (m matrix) apply(x, y float64) (float64, float64) {
	return x*m[0][0] + y*m[1][0] + m[2][0], x*m[0][1] + y*m[1][1] + m[2][1]
}

func matrixFromArgs(args []pdf.Value) matrix {
	var m matrix
	for i := 0; i < 6; i++ {
		m[i/2][i%2] = args[i].Float64()
	}
	m[2][2] = 1
	return m
}

// textState is the graphics state tracked by the glyph walk: the text
// parameters of the PDF imaging model plus the non-stroking fill color.
type textState struct {
	Tc     float64
	Tw     float64
	Th     float64
	Tl     float64
	Tf     pdf.Font
	Tfname string
	Tfs    float64
	Trise  float64
	Tm     matrix
	Tlm    matrix
	CTM    matrix
	fill   int
}

func packColor(r, g, b float64) int {
	return clampByte(r)<<16 | clampByte(g)<<8 | clampByte(b)
}

func clampByte(v float64) int {
	c := int(math.Round(v * 255))
	if c < 0 {
		return 0
	}
	if c > 255 {
		return 255
	}
	return c
}

// cmykColor approximates a CMYK fill as packed RGB.
func cmykColor(c, m, y, k float64) int {
	return packColor(1-math.Min(1, c+k), 1-math.Min(1, m+k), 1-math.Min(1, y+k))
}

// contentStreams returns the page's content as a list of stream
// values. Contents may be a single stream or an array of streams.
func contentStreams(p pdf.Page) []pdf.Value {
	contents := p.V.Key("Contents")
	switch contents.Kind() {
	case pdf.Stream:
		return []pdf.Value{contents}
	case pdf.Array:
		var streams []pdf.Value
		for i := 0; i < contents.Len(); i++ {
			if s := contents.Index(i); s.Kind() == pdf.Stream {
				streams = append(streams, s)
			}
		}
		return streams
	}
	return nil
}

// extractGlyphs interprets the page's content streams and returns the
// positioned glyphs in drawing order. The interpreter panics on
// malformed streams; the panic is converted into an error so a broken
// page degrades instead of aborting the document.
func extractGlyphs(p pdf.Page) (glyphs []glyph, err error) {
	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = recoveredError(r)
		}
	}()

	if p.V.IsNull() {
		return nil, nil
	}
	streams := contentStreams(p)
	if len(streams) == 0 {
		return nil, nil
	}

	fonts := make(map[string]*pdf.Font)
	for _, name := range p.Fonts() {
		if _, ok := fonts[name]; !ok {
			f := p.Font(name)
			fonts[name] = &f
		}
	}

	var enc pdf.TextEncoding = noDecode{}
	g := textState{Th: 1, Tm: ident, Tlm: ident, CTM: ident}
	var gstack []textState

	showText := func(s string) {
		n := 0
		for _, ch := range enc.Decode(s) {
			var w0 float64
			if n < len(s) {
				w0 = g.Tf.Width(int(s[n]))
			}
			n++

			f := g.Tf.BaseFont()
			if i := strings.Index(f, "+"); i >= 0 {
				f = f[i+1:]
			}
			if f == "" {
				f = g.Tfname
			}

			Trm := matrix{{g.Tfs * g.Th, 0, 0}, {0, g.Tfs, 0}, {0, g.Trise, 1}}.mul(g.Tm).mul(g.CTM)
			if ch != '\n' && ch != '\r' {
				glyphs = append(glyphs, glyph{
					font:  f,
					size:  Trm[0][0],
					x:     Trm[2][0],
					y:     Trm[2][1],
					w:     w0 / 1000 * Trm[0][0],
					color: g.fill,
					r:     ch,
				})
			}

			tx := w0/1000*g.Tfs + g.Tc
			tx *= g.Th
			g.Tm = matrix{{1, 0, 0}, {0, 1, 0}, {tx, 0, 1}}.mul(g.Tm)
		}
	}

	interp := func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		default:
			return

		case "cm":
			if len(args) != 6 {
				panic("bad cm")
			}
			g.CTM = matrixFromArgs(args).mul(g.CTM)

		case "q":
			gstack = append(gstack, g)

		case "Q":
			if n := len(gstack) - 1; n >= 0 {
				g = gstack[n]
				gstack = gstack[:n]
			}

		case "BT":
			g.Tm = ident
			g.Tlm = g.Tm

		case "ET":

		case "T*":
			x := matrix{{1, 0, 0}, {0, 1, 0}, {0, -g.Tl, 1}}
			g.Tlm = x.mul(g.Tlm)
			g.Tm = g.Tlm

		case "Tc":
			if len(args) != 1 {
				panic("bad Tc")
			}
			g.Tc = args[0].Float64()

		case "TD":
			if len(args) != 2 {
				panic("bad TD")
			}
			g.Tl = -args[1].Float64()
			fallthrough
		case "Td":
			if len(args) != 2 {
				panic("bad Td")
			}
			x := matrix{{1, 0, 0}, {0, 1, 0}, {args[0].Float64(), args[1].Float64(), 1}}
			g.Tlm = x.mul(g.Tlm)
			g.Tm = g.Tlm

		case "Tf":
			if len(args) != 2 {
				panic("bad Tf")
			}
			name := args[0].Name()
			g.Tfname = name
			if font, ok := fonts[name]; ok {
				g.Tf = *font
				enc = font.Encoder()
			} else {
				g.Tf = pdf.Font{}
				enc = noDecode{}
			}
			if enc == nil {
				enc = noDecode{}
			}
			g.Tfs = args[1].Float64()

		case "\"":
			if len(args) != 3 {
				panic("bad \" operator")
			}
			g.Tw = args[0].Float64()
			g.Tc = args[1].Float64()
			args = args[2:]
			fallthrough
		case "'":
			if len(args) != 1 {
				panic("bad ' operator")
			}
			x := matrix{{1, 0, 0}, {0, 1, 0}, {0, -g.Tl, 1}}
			g.Tlm = x.mul(g.Tlm)
			g.Tm = g.Tlm
			fallthrough
		case "Tj":
			if len(args) != 1 {
				panic("bad Tj operator")
			}
			showText(args[0].RawString())

		case "TJ":
			v := args[0]
			for i := 0; i < v.Len(); i++ {
				x := v.Index(i)
				if x.Kind() == pdf.String {
					showText(x.RawString())
				} else {
					tx := -x.Float64() / 1000 * g.Tfs * g.Th
					g.Tm = matrix{{1, 0, 0}, {0, 1, 0}, {tx, 0, 1}}.mul(g.Tm)
				}
			}

		case "TL":
			if len(args) != 1 {
				panic("bad TL")
			}
			g.Tl = args[0].Float64()

		case "Tm":
			if len(args) != 6 {
				panic("bad Tm")
			}
			m := matrixFromArgs(args)
			g.Tm = m
			g.Tlm = m

		case "Tr":
			if len(args) != 1 {
				panic("bad Tr")
			}

		case "Ts":
			if len(args) != 1 {
				panic("bad Ts")
			}
			g.Trise = args[0].Float64()

		case "Tw":
			if len(args) != 1 {
				panic("bad Tw")
			}
			g.Tw = args[0].Float64()

		case "Tz":
			if len(args) != 1 {
				panic("bad Tz")
			}
			g.Th = args[0].Float64() / 100

		// Non-stroking fill color. The packed value travels with every
		// glyph so that spans keep the color active when they were drawn.
		case "g":
			if len(args) == 1 {
				v := args[0].Float64()
				g.fill = packColor(v, v, v)
			}
		case "rg":
			if len(args) == 3 {
				g.fill = packColor(args[0].Float64(), args[1].Float64(), args[2].Float64())
			}
		case "k":
			if len(args) == 4 {
				g.fill = cmykColor(args[0].Float64(), args[1].Float64(), args[2].Float64(), args[3].Float64())
			}
		case "sc", "scn":
			// Component count decides the colorspace; pattern names are
			// ignored.
			if len(args) > 0 && args[len(args)-1].Kind() == pdf.Name {
				return
			}
			switch len(args) {
			case 1:
				v := args[0].Float64()
				g.fill = packColor(v, v, v)
			case 3:
				g.fill = packColor(args[0].Float64(), args[1].Float64(), args[2].Float64())
			case 4:
				g.fill = cmykColor(args[0].Float64(), args[1].Float64(), args[2].Float64(), args[3].Float64())
			}
		}
	}

	for _, strm := range streams {
		pdf.Interpret(strm, interp)
	}
	return glyphs, nil
}

// noDecode passes raw bytes through unchanged, for fonts without a
// usable encoding.
type noDecode struct{}

func (noDecode) Decode(raw string) string { return raw }

// Span grouping tolerances, in fractions of the font size (gap) and
// points (baseline jitter).
const (
	spanMaxGapRatio   = 0.3
	spanBaselineSlack = 0.1
)

// groupSpans folds consecutive glyphs into TextSpans. Glyphs merge
// while they share font, size and color, sit on the same baseline and
// continue without a large horizontal gap. box converts the
// PDF-native bottom-up baselines into top-left-origin boxes.
func groupSpans(glyphs []glyph, box pageBox) []TextSpan {
	var spans []TextSpan
	var cur *TextSpan
	var text strings.Builder
	var lastX, lastW, baseline float64

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = text.String()
		if cur.Text != "" {
			spans = append(spans, *cur)
		}
		cur = nil
		text.Reset()
	}

	for _, gl := range glyphs {
		joins := cur != nil &&
			gl.font == cur.Font &&
			math.Abs(gl.size-cur.Size) < 0.01 &&
			gl.color == cur.Color &&
			math.Abs(gl.y-baseline) <= spanBaselineSlack &&
			gl.x-(lastX+lastW) <= math.Max(gl.size*spanMaxGapRatio, 0.5) &&
			gl.x-(lastX+lastW) >= -0.5

		if !joins {
			flush()
			x0, y0 := box.toTopLeft(gl.x, gl.y+gl.size*ascentRatio)
			_, y1 := box.toTopLeft(gl.x, gl.y-gl.size*descentRatio)
			cur = &TextSpan{
				Font:  gl.font,
				Size:  gl.size,
				Color: gl.color,
				X0:    x0,
				Y0:    y0,
				Y1:    y1,
			}
			baseline = gl.y
		}
		text.WriteRune(gl.r)
		lastX, lastW = gl.x, gl.w
		if end := gl.x + gl.w - box.x0; end > cur.X1 {
			cur.X1 = end
		}
		if cur.X1 < cur.X0 {
			cur.X1 = cur.X0
		}
	}
	flush()
	return spans
}

// Font-name markers for inferred weight and style, matched
// case-insensitively as substrings.
var (
	boldMarkers   = []string{"bold", "semibold", "demi", "black", "heavy"}
	italicMarkers = []string{"italic", "oblique", "ital"}
)

// fontFlags infers boldness and italics from the font name.
func fontFlags(fontName string) (bold, italic bool) {
	name := strings.ToLower(fontName)
	for _, m := range boldMarkers {
		if strings.Contains(name, m) {
			bold = true
			break
		}
	}
	for _, m := range italicMarkers {
		if strings.Contains(name, m) {
			italic = true
			break
		}
	}
	return bold, italic
}
