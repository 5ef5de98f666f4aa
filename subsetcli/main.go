package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ebassi/harfbuzz"
	"github.com/ebassi/harfbuzz/internal/fontload"
	"github.com/ebassi/harfbuzz/ot"
	"github.com/ebassi/harfbuzz/otsubset"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'font.subsetcli'
func tracer() tracing.Trace {
	return tracing.Select("font.subsetcli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":      "go",
		"trace.font.subsetcli": "Info",
		"trace.font.ot":        "Error",
		"trace.font.otsubset":  "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font file to load (OTF or standalone CFF2 table)")
	glyphlist := flag.String("glyphs", "", "Glyph IDs to retain, e.g. '0,2,4-7'")
	outname := flag.String("out", "cff2-subset.bin", "Output file for the subset table")
	inspect := flag.Bool("i", false, "Inspect the planned layout interactively")
	flag.Parse()
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	if *fontname == "" || *glyphlist == "" {
		pterm.Error.Println("need both -font and -glyphs")
		flag.Usage()
		os.Exit(2)
	}

	glyphs, err := parseGlyphList(*glyphlist)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	data, err := os.ReadFile(*fontname)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	describeFont(*fontname, data)

	cff2, err := harfbuzz.CFF2From(data)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	pterm.Info.Printf("CFF2 table: %d glyphs, %d font dictionaries\n",
		cff2.NumGlyphs(), cff2.FDCount())

	sections, err := otsubset.Sections(cff2, glyphs)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(4)
	}
	blob, err := otsubset.CFF2(cff2, glyphs)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(4)
	}
	printSections(sections, blob.Len())
	if err := os.WriteFile(*outname, blob.Bytes(), 0644); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(4)
	}
	pterm.Info.Printf("wrote %d bytes to %s\n", blob.Len(), *outname)

	if *inspect {
		inspectREPL(cff2, glyphs, sections, blob)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// describeFont reports name and glyph count for complete font files.
// Standalone CFF2 tables have no name table; they are skipped silently.
func describeFont(path string, data []byte) {
	f, err := fontload.ParseOpenTypeFont(data)
	if err != nil {
		tracer().Debugf("not a complete font container: %v", err)
		return
	}
	pterm.Info.Printf("font %q (%s), %d glyphs\n", f.Fontname, path, f.NumGlyphs())
}

func printSections(sections []otsubset.Section, total int) {
	pterm.Printf("planned layout (%d bytes):\n", total)
	for _, s := range sections {
		pterm.Printf("  %6d  %6d  %s\n", s.Offset, s.Size, s.Name)
	}
}

// parseGlyphList reads an ordered glyph ID list like "0,2,4-7". Order
// defines the new glyph IDs; duplicates are dropped.
func parseGlyphList(arg string) ([]ot.GlyphIndex, error) {
	var glyphs []ot.GlyphIndex
	seen := make(map[ot.GlyphIndex]bool)
	push := func(gid int) {
		g := ot.GlyphIndex(gid)
		if !seen[g] {
			seen[g] = true
			glyphs = append(glyphs, g)
		}
	}
	for _, item := range strings.Split(arg, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if from, to, ok := strings.Cut(item, "-"); ok {
			lo, err1 := strconv.Atoi(from)
			hi, err2 := strconv.Atoi(to)
			if err1 != nil || err2 != nil || lo > hi || lo < 0 {
				return nil, fmt.Errorf("invalid glyph range %q", item)
			}
			for gid := lo; gid <= hi; gid++ {
				push(gid)
			}
			continue
		}
		gid, err := strconv.Atoi(item)
		if err != nil || gid < 0 {
			return nil, fmt.Errorf("invalid glyph ID %q", item)
		}
		push(gid)
	}
	if len(glyphs) == 0 {
		return nil, fmt.Errorf("empty glyph list")
	}
	return glyphs, nil
}
