package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	pdf2html "github.com/dangen-master/pdf2html"
	"github.com/dangen-master/pdf2html/logger"
	"github.com/dangen-master/pdf2html/tracer"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] input.pdf [output.html]\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "Output defaults to the input name with an .html extension.\n")
	fmt.Fprintf(os.Stderr, "Pass - as the output to write to stdout.\n\n")
	flag.PrintDefaults()
}

func main() {
	scale := flag.Float64("scale", 96.0/72.0, "point to CSS pixel scale factor")
	mode := flag.String("mode", "auto", "image handling: auto, extract or clip")
	oversample := flag.Float64("oversample", 2.0, "rasterization factor for clipped images")
	meta := flag.Bool("meta", false, "print document metadata as JSON and exit")
	quiet := flag.Bool("q", false, "suppress log output")
	debug := flag.Bool("d", false, "log per-page and per-image detail")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		usage()
		os.Exit(2)
	}
	input := flag.Arg(0)
	output := flag.Arg(1)
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".html"
	}

	opts := pdf2html.NewDefaultOptions()
	opts.Scale = *scale
	opts.ImageMode = pdf2html.ImageMode(*mode)
	opts.ClipOversample = *oversample
	if !*quiet {
		opts.Logger = func(level logger.LogLevel, msg string, keyvals ...interface{}) {
			if level == logger.DebugLevel && !*debug {
				return
			}
			log.Println(append([]interface{}{level, msg}, keyvals...)...)
		}
	}

	r, err := pdf2html.NewRenderer(opts)
	if err != nil {
		fail(err)
	}
	ctx := context.Background()

	switch {
	case *meta:
		err = r.Metadata(ctx, input, os.Stdout)
	case output == "-":
		var html string
		html, err = r.Render(ctx, input)
		if err == nil {
			_, err = os.Stdout.WriteString(html)
		}
	default:
		err = r.RenderFile(ctx, input, output)
	}
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	tracer.Flush()
	fmt.Fprintln(os.Stderr, "pdf2html:", err)
	os.Exit(1)
}
