package otsubset

import (
	"github.com/ebassi/harfbuzz/ot"
)

// CFF2 computes a subset of a CFF2 table.
//
// glyphs is the ordered, deduplicated list of original glyph IDs to retain;
// position i in the list becomes new glyph ID i. The source view is only
// read, never modified, and the returned blob owns its buffer exclusively.
//
// Subsetting is a one-shot, deterministic function of (source view, glyph
// list): it either returns a complete, self-consistent table or an error,
// never a partial buffer.
func CFF2(acc *ot.CFF2Table, glyphs []ot.GlyphIndex) (*Blob, error) {
	plan, err := newCFF2Plan(acc, glyphs)
	if err != nil {
		tracer().Errorf("failed to generate a CFF2 subsetting plan: %v", err)
		return nil, err
	}
	buf := make([]byte, plan.finalSize)
	if err := writeCFF2(plan, buf); err != nil {
		tracer().Errorf("failed to write a subset CFF2 table: %v", err)
		return nil, err
	}
	return NewBlob(buf, nil), nil
}

// Section is one planned top-level section of a subset table.
type Section struct {
	Name   string
	Offset int
	Size   int
}

// Sections reports the layout a subset of the given source and glyph list
// would have, without producing the table. Sections are contiguous, in
// output order; the total size is the last section's offset plus size.
func Sections(acc *ot.CFF2Table, glyphs []ot.GlyphIndex) ([]Section, error) {
	plan, err := newCFF2Plan(acc, glyphs)
	if err != nil {
		return nil, err
	}
	return plan.sections(), nil
}
