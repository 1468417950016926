package pdf2html

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
)

const htmlShell = `<!doctype html>
<html lang="ru">
<head>
  <meta charset="utf-8">
  <title>%s</title>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <style>
    :root { --bg:#fff; --fg:#111; }
    html,body { margin:0; padding:0; background:var(--bg); color:var(--fg); }
    body {
      font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,Helvetica,Arial,"Apple Color Emoji","Segoe UI Emoji";
      -webkit-font-smoothing:antialiased; -moz-osx-font-smoothing:grayscale;
    }
    .doc { display:flex; flex-direction:column; align-items:center; gap:24px; padding:24px 12px 48px; }
    .page { position:relative; box-shadow:0 2px 12px rgba(0,0,0,.12); background:#fff; overflow:hidden; }
    .text-layer, .image-layer { position:absolute; inset:0; transform-origin:top left; }
    .text-layer { z-index:2; pointer-events:none; }
    .image-layer { z-index:1; pointer-events:none; }
    .t { position:absolute; white-space:pre; line-height:1; }
  </style>
</head>
<body>
  <div class="doc">%s</div>
</body>
</html>
`

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#x27;")
)

// sanitizeText prepares span text for element content: carriage
// returns are dropped, markup characters are escaped, quotes are
// left intact.
func sanitizeText(t string) string {
	return textEscaper.Replace(strings.ReplaceAll(t, "\r", ""))
}

// escapeAttr escapes a string for use inside a quoted attribute.
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// cssColor formats a packed 0xRRGGBB value as a CSS rgb() literal.
func cssColor(c int) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", (c>>16)&255, (c>>8)&255, c&255)
}

// pngDataURI encodes img as PNG wrapped in a base64 data URL.
func pngDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// renderSpan emits one absolutely positioned text div. Positions use
// two decimals, font sizes three, matching the rest of the output.
func renderSpan(s TextSpan, scale float64) string {
	bold, italic := fontFlags(s.Font)
	font := s.Font
	if font == "" {
		font = "sans-serif"
	}
	styles := []string{
		fmt.Sprintf("left:%.2fpx", s.X0*scale),
		fmt.Sprintf("top:%.2fpx", s.Y0*scale),
		fmt.Sprintf("font-size:%.3fpx", s.Size*scale),
		"color:" + cssColor(s.Color),
		"font-family:" + escapeAttr(font),
	}
	if bold {
		styles = append(styles, "font-weight:700")
	}
	if italic {
		styles = append(styles, "font-style:italic")
	}
	return fmt.Sprintf(`<div class="t" style="%s">%s</div>`,
		strings.Join(styles, ";"), sanitizeText(s.Text))
}

// renderImageTag emits one absolutely positioned img element.
func renderImageTag(bbox Rect, scale float64, dataURL string) string {
	styles := []string{
		"position:absolute",
		fmt.Sprintf("left:%.2fpx", bbox.X0*scale),
		fmt.Sprintf("top:%.2fpx", bbox.Y0*scale),
		fmt.Sprintf("width:%.2fpx", bbox.Width()*scale),
		fmt.Sprintf("height:%.2fpx", bbox.Height()*scale),
		"object-fit:contain",
	}
	return fmt.Sprintf(`<img class="img" src="%s" alt="" style="%s" />`,
		dataURL, strings.Join(styles, ";"))
}

// renderPageSection wraps a page's span and image markup in the
// two-layer section element.
func renderPageSection(pageW, pageH, scale float64, spans, images []string) string {
	return fmt.Sprintf(
		`<section class="page" style="width:%.2fpx;height:%.2fpx">`+
			`<div class="text-layer">%s</div>`+
			`<div class="image-layer">%s</div>`+
			`</section>`,
		pageW*scale, pageH*scale,
		strings.Join(spans, ""), strings.Join(images, ""))
}

// renderShell assembles the final document around the page sections.
func renderShell(title string, pages []string) string {
	return fmt.Sprintf(htmlShell, escapeAttr(title), strings.Join(pages, "\n"))
}
