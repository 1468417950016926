package pdf2html

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ledongthuc/pdf"
)

// Meta carries the document information dictionary. Empty fields are
// omitted from the JSON form.
type Meta struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creationDate,omitempty"`
	ModDate      string `json:"modDate,omitempty"`
	Pages        int    `json:"pages"`
}

// Metadata reads the Info dictionary of the PDF at path and writes it
// to w as one JSON object.
func (r *Renderer) Metadata(ctx context.Context, path string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := OpenDocument(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	meta := readInfo(doc.reader)
	meta.Pages = doc.NumPage()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func readInfo(reader *pdf.Reader) (meta Meta) {
	defer func() {
		// A broken Info reference should not fail the whole call.
		recover()
	}()
	info := reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return meta
	}
	meta.Title = info.Key("Title").Text()
	meta.Author = info.Key("Author").Text()
	meta.Subject = info.Key("Subject").Text()
	meta.Keywords = info.Key("Keywords").Text()
	meta.Creator = info.Key("Creator").Text()
	meta.Producer = info.Key("Producer").Text()
	meta.CreationDate = info.Key("CreationDate").Text()
	meta.ModDate = info.Key("ModDate").Text()
	return meta
}
