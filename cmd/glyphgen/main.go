// Command glyphgen rasterises SVG digit artwork into a Go glyph table.
//
//	glyphgen -o digits.go art/0.svg art/1.svg ... art/9.svg
package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/fkcurrie/ws2818-matrix/pkg/glyph"
)

func main() {
	var (
		out     = pflag.StringP("output", "o", "", "output file, stdout when empty")
		pkg     = pflag.String("package", "glyph", "package name")
		name    = pflag.String("var", "Digits", "variable name")
		preview = pflag.Bool("preview", false, "print each glyph as text to stderr")
	)
	pflag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	files := pflag.Args()
	if len(files) == 0 {
		log.Fatal().Msg("no svg files given")
	}

	glyphs := make([]glyph.Bitmap, 0, len(files))
	for _, path := range files {
		b, err := readGlyph(path)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("failed to rasterise")
		}
		if *preview {
			fmt.Fprintf(os.Stderr, "%s\n%s\n", path, b)
		}
		glyphs = append(glyphs, b)
	}

	src, err := generate(*pkg, *name, files, glyphs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to generate source")
	}

	if *out == "" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(*out, src, 0644); err != nil {
		log.Fatal().Err(err).Msg("failed to write output")
	}
	log.Info().Str("file", *out).Int("glyphs", len(glyphs)).Msg("written")
}

func readGlyph(path string) (glyph.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return glyph.Bitmap{}, err
	}
	defer f.Close()
	return glyph.FromSVG(f)
}

func generate(pkg, name string, files []string, glyphs []glyph.Bitmap) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by glyphgen. DO NOT EDIT.\n\npackage %s\n\n", pkg)
	fmt.Fprintf(&buf, "var %s = [%d]Bitmap{\n", name, len(glyphs))
	for i, g := range glyphs {
		fmt.Fprintf(&buf, "\t%#v, // %s\n", g, files[i])
	}
	buf.WriteString("}\n")
	return format.Source(buf.Bytes())
}
