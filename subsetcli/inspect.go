package main

import (
	"strings"

	"github.com/chzyer/readline"
	"github.com/ebassi/harfbuzz/ot"
	"github.com/ebassi/harfbuzz/otsubset"
	"github.com/pterm/pterm"
)

// A small REPL to poke at the planned layout after subsetting. Commands:
//
//	sections   print the planned section layout
//	glyphs     print the subset glyph list (new ID → old ID)
//	fdmap      print the font dictionary of every subset glyph
//	summary    print source/output sizes
//	help       list commands
//	quit       leave the REPL (also <ctrl>D)
func inspectREPL(cff2 *ot.CFF2Table, glyphs []ot.GlyphIndex,
	sections []otsubset.Section, blob *otsubset.Blob) {

	repl, err := readline.New("subset > ")
	if err != nil {
		tracer().Errorf(err.Error())
		return
	}
	defer repl.Close()
	pterm.Info.Println("Inspecting subset layout; quit with <ctrl>D")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF on <ctrl>D
			return
		}
		switch strings.TrimSpace(line) {
		case "", "help":
			pterm.Println("commands: sections | glyphs | fdmap | summary | quit")
		case "sections":
			printSections(sections, blob.Len())
		case "glyphs":
			for newGid, gid := range glyphs {
				pterm.Printf("  glyph %4d <- %4d\n", newGid, gid)
			}
		case "fdmap":
			for newGid, gid := range glyphs {
				fd, err := cff2.FDForGlyph(gid)
				if err != nil {
					pterm.Error.Println(err.Error())
					break
				}
				pterm.Printf("  glyph %4d -> font dict %d\n", newGid, fd)
			}
		case "summary":
			_, srcSize := cff2.Extent()
			pterm.Printf("source table: %d bytes, %d glyphs, %d font dicts\n",
				srcSize, cff2.NumGlyphs(), cff2.FDCount())
			pterm.Printf("subset table: %d bytes, %d glyphs\n", blob.Len(), len(glyphs))
		case "quit", "exit":
			return
		default:
			pterm.Error.Printf("unknown command %q\n", line)
		}
	}
}
