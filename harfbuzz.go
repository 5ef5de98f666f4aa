/*
Package harfbuzz provides font table handling, currently centered on
subsetting the CFF2 outline table of OpenType fonts.

The heavy lifting is done by two sister packages: `ot` parses font binaries
into read-only structural views, `otsubset` plans and writes reduced tables.
This package wires the two together for the common use-cases.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package harfbuzz

import (
	"fmt"

	"github.com/ebassi/harfbuzz/ot"
	"github.com/ebassi/harfbuzz/otsubset"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.harfbuzz'
func tracer() tracing.Trace {
	return tracing.Select("font.harfbuzz")
}

// CFF2From builds a CFF2 structural view from font data. The input may be a
// complete single-font OpenType file (the CFF2 table is located through the
// table directory) or a standalone CFF2 table.
//
// The data must not change while the view is in use; views reference the
// input bytes instead of copying them.
func CFF2From(data []byte) (*ot.CFF2Table, error) {
	if len(data) >= 4 && isFontContainer(data) {
		otf, err := ot.Parse(data)
		if err != nil {
			return nil, err
		}
		table := otf.Table(ot.T("CFF2"))
		if table == nil {
			return nil, fmt.Errorf("font has no CFF2 table")
		}
		cff2 := table.Self().AsCFF2()
		if cff2 == nil {
			return nil, fmt.Errorf("font has no CFF2 table")
		}
		return cff2, nil
	}
	return ot.ParseCFF2(data)
}

// SubsetCFF2 computes a reduced CFF2 table containing only the glyphs in the
// given ordered, deduplicated list. Position i in the list becomes new glyph
// ID i. The result is a complete, standalone CFF2 table.
func SubsetCFF2(data []byte, glyphs []ot.GlyphIndex) ([]byte, error) {
	cff2, err := CFF2From(data)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("subsetting CFF2 table: %d of %d glyphs", len(glyphs), cff2.NumGlyphs())
	blob, err := otsubset.CFF2(cff2, glyphs)
	if err != nil {
		return nil, err
	}
	return blob.Bytes(), nil
}

// isFontContainer checks for an sfnt table-directory wrapper.
func isFontContainer(data []byte) bool {
	tag := ot.MakeTag(data[:4])
	return tag == ot.T("OTTO") || tag == ot.Tag(0x00010000) || tag == ot.T("true")
}
