package otsubset

import (
	"fmt"

	"github.com/ebassi/harfbuzz/ot"
)

// The layout planner. It walks the source view and the glyph subset list and
// computes the total output size plus the byte offset of every section,
// without emitting a single byte. Sections are laid out contiguously in the
// fixed CFF2 order:
//
//	header | top DICT | global subrs | variation store? | FDSelect? |
//	FDArray | CharStrings | private DICTs + local subrs
//
// A running size accumulator becomes the next section's offset. The writer
// later checks every section start against the planned offset.

// sectionInfo locates one section within the planned output.
type sectionInfo struct {
	offset int
	size   int
}

// cff2Plan is the complete layout plan for one subsetting invocation.
// It lives for the duration of the invocation only.
type cff2Plan struct {
	acc    *ot.CFF2Table
	glyphs []ot.GlyphIndex

	finalSize   int
	topDictSize int

	varStore ot.Option[sectionInfo]
	fdSelect ot.Option[sectionInfo]

	fdArrayOffset     int
	fdArrayOffSize    int
	fdArrayEntrySizes []int // per surviving font DICT, in new-index order

	charStringsOffset  int
	charStringsOffSize int
	charstrings        []ot.NavLocation // verbatim spans, one per subset glyph

	privateDictsOffset int
	privDictInfos      []sectionInfo // per ORIGINAL font DICT index

	fds fdSelectPlan
}

// newCFF2Plan plans the subset layout for the given source view and glyph
// list. No partial plan is ever returned: on any failure the plan is nil.
func newCFF2Plan(acc *ot.CFF2Table, glyphs []ot.GlyphIndex) (*cff2Plan, error) {
	p := &cff2Plan{
		acc:      acc,
		glyphs:   glyphs,
		varStore: ot.None[sectionInfo](),
		fdSelect: ot.None[sectionInfo](),
	}
	if err := p.create(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *cff2Plan) create() error {
	acc := p.acc
	// font-DICT subsetting first: its outcome decides whether an FDSelect
	// section (and its top DICT operator) survives at all
	fds, err := planFDSelect(acc, p.glyphs)
	if err != nil {
		return err
	}
	p.fds = fds

	size := ot.CFF2HeaderSize

	// top DICT, with the four section-offset operators at forced width
	for _, e := range acc.TopDict {
		p.topDictSize += p.topDictEntrySize(e)
	}
	size += p.topDictSize

	// global subr index, copied verbatim
	size += acc.GlobalSubrs.Size()

	// variation store, copied verbatim if present
	if vs, ok := acc.VarStore.Unwrap(); ok {
		p.varStore = ot.Some(sectionInfo{offset: size, size: vs.Size()})
		size += vs.Size()
	}

	// glyph → font DICT association
	if p.fds.tableNeeded() {
		p.fdSelect = ot.Some(sectionInfo{offset: size, size: p.fds.size})
		size += p.fds.size
	}

	// font DICT array, surviving DICTs only, in new-index order
	p.fdArrayOffset = size
	fdDataSize := 0
	p.fdArrayEntrySizes = make([]int, p.fds.subsetCount)
	for newIdx, origIdx := range p.fds.inverse {
		entrySize := 0
		for _, e := range acc.FontDicts[origIdx].Dict {
			entrySize += fontDictEntrySize(e)
		}
		p.fdArrayEntrySizes[newIdx] = entrySize
		fdDataSize += entrySize
	}
	p.fdArrayOffSize = calcOffSize(fdDataSize + 1)
	size += indexSerializedSize(p.fds.subsetCount, p.fdArrayOffSize, fdDataSize)

	// charstring index: verbatim spans in subset-list order
	p.charStringsOffset = size
	p.charstrings = make([]ot.NavLocation, 0, len(p.glyphs))
	csDataSize := 0
	for _, gid := range p.glyphs {
		span, err := acc.CharStrings.Get(int(gid))
		if err != nil {
			return fmt.Errorf("glyph ID %d has no charstring: %w", gid, err)
		}
		p.charstrings = append(p.charstrings, span)
		if csDataSize, err = checkedAdd(csDataSize, span.Size()); err != nil {
			return err
		}
	}
	p.charStringsOffSize = calcOffSize(csDataSize + 1)
	size += indexSerializedSize(len(p.glyphs), p.charStringsOffSize, csDataSize)

	// private DICTs with their local subr indexes, one per ORIGINAL font
	// DICT index, each subr index directly following its DICT
	p.privateDictsOffset = size
	p.privDictInfos = make([]sectionInfo, 0, len(acc.PrivDicts))
	for i := range acc.PrivDicts {
		pdSize := 0
		for _, e := range acc.PrivDicts[i].Dict {
			pdSize += privateDictEntrySize(e)
		}
		p.privDictInfos = append(p.privDictInfos, sectionInfo{offset: size, size: pdSize})
		size += pdSize
		if subrs, ok := acc.PrivDicts[i].LocalSubrs.Unwrap(); ok {
			size += subrs.Size()
		}
	}

	p.finalSize = size
	tracer().Debugf("planned CFF2 subset: %d glyphs, %d font DICTs, %d bytes",
		len(p.glyphs), p.fds.subsetCount, p.finalSize)
	return nil
}

// topDictEntrySize returns the planned size of one top DICT entry. The four
// section-offset operators are forced to a 4-byte operand because their
// values are not known during planning; a dropped FDSelect section takes its
// operator with it.
func (p *cff2Plan) topDictEntrySize(e ot.DictEntry) int {
	switch e.Op {
	case ot.OpVStore, ot.OpCharStrings, ot.OpFDArray:
		return forcedOffsetEntrySize(e.Op)
	case ot.OpFDSelect:
		if !p.fds.tableNeeded() {
			return 0
		}
		return forcedOffsetEntrySize(e.Op)
	}
	return len(e.Bytes())
}

// writeTopDictEntry emits one top DICT entry, patching the forced-width
// operators with the plan's real offsets.
func (p *cff2Plan) writeTopDictEntry(w *tableWriter, e ot.DictEntry) error {
	switch e.Op {
	case ot.OpVStore:
		vs, ok := p.varStore.Unwrap()
		if !ok {
			return fmt.Errorf("top DICT has a vstore operator but no variation store was planned")
		}
		return writeOffset4Entry(w, e.Op, vs.offset)
	case ot.OpCharStrings:
		return writeOffset4Entry(w, e.Op, p.charStringsOffset)
	case ot.OpFDArray:
		return writeOffset4Entry(w, e.Op, p.fdArrayOffset)
	case ot.OpFDSelect:
		if fs, ok := p.fdSelect.Unwrap(); ok {
			return writeOffset4Entry(w, e.Op, fs.offset)
		}
		return nil // section omitted, operator dropped
	}
	return w.putBytes(e.Bytes())
}

// sections reports the planned layout in output order, for diagnostics and
// for checking the writer against the plan.
func (p *cff2Plan) sections() []Section {
	s := []Section{
		{Name: "header", Offset: 0, Size: ot.CFF2HeaderSize},
		{Name: "top DICT", Offset: ot.CFF2HeaderSize, Size: p.topDictSize},
		{Name: "global subrs", Offset: ot.CFF2HeaderSize + p.topDictSize, Size: p.acc.GlobalSubrs.Size()},
	}
	if vs, ok := p.varStore.Unwrap(); ok {
		s = append(s, Section{Name: "variation store", Offset: vs.offset, Size: vs.size})
	}
	if fs, ok := p.fdSelect.Unwrap(); ok {
		s = append(s, Section{Name: "FDSelect", Offset: fs.offset, Size: fs.size})
	}
	s = append(s,
		Section{Name: "FDArray", Offset: p.fdArrayOffset, Size: p.charStringsOffset - p.fdArrayOffset},
		Section{Name: "CharStrings", Offset: p.charStringsOffset, Size: p.privateDictsOffset - p.charStringsOffset},
		Section{Name: "private DICTs", Offset: p.privateDictsOffset, Size: p.finalSize - p.privateDictsOffset},
	)
	return s
}

// checkedAdd guards the size accumulator against overflow; an overflowing
// size computation is a planning failure, not a panic.
func checkedAdd(a, b int) (int, error) {
	if b > 0 && a > int(^uint(0)>>1)-b {
		return 0, fmt.Errorf("size overflow: %d + %d", a, b)
	}
	return a + b, nil
}
