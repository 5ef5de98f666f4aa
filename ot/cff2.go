package ot

import "fmt"

// Structural view on table 'CFF2', the Compact Font Format 2 outline table:
// https://docs.microsoft.com/en-us/typography/opentype/spec/cff2
//
// CFF2 is organized as nested dictionaries and length-prefixed index
// structures. The view exposes the table's sections as read-only byte spans
// plus just enough decoded structure (dictionary entries, index counts,
// glyph-to-font-dict association) for clients like the subsetter in package
// otsubset. Charstring bytecode is never interpreted.

// CFF2HeaderSize is the size of the fixed CFF2 table header: major and minor
// version, header size, and a uint16 top DICT length.
const CFF2HeaderSize = 5

// CFF2Table is a read-only structural view over a validated CFF2 table.
// It is immutable after parsing; concurrent readers need no coordination.
type CFF2Table struct {
	tableBase
	Major, Minor int                  // format version, 2.0
	HeaderSize   int                  // offset of the top DICT
	TopDict      CFF2Dict             // root dictionary, operators link to the other sections
	GlobalSubrs  CFF2Index            // table-wide subroutine index, copied verbatim by subsetters
	VarStore     Option[NavLocation]  // item variation store span, present in variable fonts only
	FDSelect     Option[CFF2FDSelect] // glyph → font DICT association, absent means all glyphs use FD 0
	FontDicts    []CFF2FontDict       // font DICT array entries
	PrivDicts    []CFF2PrivateDict    // private DICTs, parallel to FontDicts
	CharStrings  CFF2Index            // one opaque charstring per glyph
}

// NumGlyphs returns the number of glyphs in the table. CFF2 has no charset;
// the glyph count is the charstring count.
func (t *CFF2Table) NumGlyphs() int {
	return t.CharStrings.Count()
}

// FDCount returns the number of font DICTs in the FDArray.
func (t *CFF2Table) FDCount() int {
	return len(t.FontDicts)
}

// FDForGlyph returns the font DICT index associated with a glyph. Glyphs of
// a table without an FDSelect section all belong to font DICT 0.
func (t *CFF2Table) FDForGlyph(g GlyphIndex) (int, error) {
	if int(g) >= t.NumGlyphs() {
		return 0, fmt.Errorf("glyph ID %d out of range [0…%d)", g, t.NumGlyphs())
	}
	fds, ok := t.FDSelect.Unwrap()
	if !ok {
		return 0, nil
	}
	return fds.FDForGlyph(g)
}

// CFF2FontDict is one entry of the font DICT array. Its Private operator
// links to the corresponding private DICT by {size, offset}.
type CFF2FontDict struct {
	Dict           CFF2Dict
	PrivDictOffset int // table-relative offset of the private DICT
	PrivDictSize   int
}

// CFF2PrivateDict is a private DICT together with its optional local
// subroutine index. The local subr offset is relative to the start of the
// private DICT.
type CFF2PrivateDict struct {
	Dict        CFF2Dict
	SubrsOffset int               // 0 if the DICT declares no local subrs
	LocalSubrs  Option[CFF2Index] // present iff SubrsOffset > 0
	span        binarySegm
}

// Location returns the verbatim bytes of the private DICT (without the local
// subr index that may follow it).
func (pd CFF2PrivateDict) Location() NavLocation {
	return pd.span
}

// --- FDSelect --------------------------------------------------------------

// CFF2FDSelect maps each glyph to the font DICT that applies to it. Two
// on-disk encodings exist: format 0 is a plain per-glyph byte array, format 3
// a range list with a terminal sentinel.
type CFF2FDSelect struct {
	format    int
	numGlyphs int
	nRanges   int        // format 3 only
	data      binarySegm // the complete FDSelect structure
}

// Format returns the on-disk encoding, 0 or 3.
func (fds CFF2FDSelect) Format() int {
	return fds.format
}

// Size returns the byte size of the FDSelect structure.
func (fds CFF2FDSelect) Size() int {
	return len(fds.data)
}

// Location returns the complete FDSelect structure as a byte location.
func (fds CFF2FDSelect) Location() NavLocation {
	return fds.data
}

// FDForGlyph returns the font DICT index for glyph g.
func (fds CFF2FDSelect) FDForGlyph(g GlyphIndex) (int, error) {
	if int(g) >= fds.numGlyphs {
		return 0, fmt.Errorf("glyph ID %d out of range [0…%d)", g, fds.numGlyphs)
	}
	switch fds.format {
	case 0:
		fd, err := fds.data.u8(1 + int(g))
		return int(fd), err
	case 3:
		// ranges are sorted by first glyph ID; find the one containing g
		for i := 0; i < fds.nRanges; i++ {
			first, err := fds.data.u16(3 + i*3)
			if err != nil {
				return 0, err
			}
			var next uint16
			if i+1 < fds.nRanges {
				next, err = fds.data.u16(3 + (i+1)*3)
			} else {
				next, err = fds.data.u16(3 + fds.nRanges*3) // sentinel
			}
			if err != nil {
				return 0, err
			}
			if uint16(g) >= first && uint16(g) < next {
				fd, err := fds.data.u8(3 + i*3 + 2)
				return int(fd), err
			}
		}
		return 0, fmt.Errorf("glyph ID %d not covered by FDSelect ranges", g)
	}
	return 0, fmt.Errorf("unsupported FDSelect format %d", fds.format)
}

// parseFDSelect reads an FDSelect structure from the beginning of b.
func parseFDSelect(b binarySegm, numGlyphs int) (CFF2FDSelect, error) {
	format, err := b.u8(0)
	if err != nil {
		return CFF2FDSelect{}, errFontFormat("FDSelect: empty structure")
	}
	switch format {
	case 0:
		span, err := b.view(0, 1+numGlyphs)
		if err != nil {
			return CFF2FDSelect{}, errFontFormat("FDSelect format 0 truncated")
		}
		return CFF2FDSelect{format: 0, numGlyphs: numGlyphs, data: span}, nil
	case 3:
		n, err := b.u16(1)
		if err != nil || n == 0 {
			return CFF2FDSelect{}, errFontFormat("FDSelect format 3: bad range count")
		}
		nRanges := int(n)
		span, err := b.view(0, 3+nRanges*3+2)
		if err != nil {
			return CFF2FDSelect{}, errFontFormat("FDSelect format 3 truncated")
		}
		prev := -1
		for i := 0; i < nRanges; i++ {
			first, _ := span.u16(3 + i*3)
			if int(first) <= prev {
				return CFF2FDSelect{}, errFontFormat("FDSelect format 3: ranges not ascending")
			}
			prev = int(first)
		}
		// subsetters carrying over an unmodified FDSelect may leave a sentinel
		// larger than the glyph count; only a too-small sentinel is an error
		sentinel, _ := span.u16(3 + nRanges*3)
		if int(sentinel) < numGlyphs {
			return CFF2FDSelect{}, errFontFormat("FDSelect format 3: sentinel below glyph count")
		}
		return CFF2FDSelect{format: 3, numGlyphs: numGlyphs, nRanges: nRanges, data: span}, nil
	}
	return CFF2FDSelect{}, errFontFormat(fmt.Sprintf("unsupported FDSelect format %d", format))
}

// --- Parsing ---------------------------------------------------------------

// ParseCFF2 builds a structural view over a standalone CFF2 table. The input
// bytes must not change while the view is in use; the view keeps read-only
// sub-slices of b instead of copying.
func ParseCFF2(b []byte) (*CFF2Table, error) {
	return newCFF2Table(T("CFF2"), b, 0, uint32(len(b)))
}

func newCFF2Table(tag Tag, b binarySegm, offset, size uint32) (*CFF2Table, error) {
	t := &CFF2Table{}
	t.tableBase = tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.self = t
	if err := t.parse(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *CFF2Table) parse() error {
	b := t.data
	if len(b) < CFF2HeaderSize {
		return errFontFormat("CFF2 table shorter than header")
	}
	t.Major, t.Minor = int(b[0]), int(b[1])
	if t.Major != 2 {
		return errFontFormat(fmt.Sprintf("CFF2 major version %d, expected 2", t.Major))
	}
	t.HeaderSize = int(b[2])
	topDictLength := int(b.U16(3))
	if t.HeaderSize < CFF2HeaderSize {
		return errFontFormat("CFF2 header size too small")
	}
	topSpan, err := b.view(t.HeaderSize, topDictLength)
	if err != nil {
		return errFontFormat("CFF2 top DICT exceeds table")
	}
	if t.TopDict, err = parseDict(topSpan, "top DICT"); err != nil {
		return err
	}
	// the global subr index immediately follows the top DICT
	gsOffset := t.HeaderSize + topDictLength
	if t.GlobalSubrs, err = parseCFF2Index(b[min(gsOffset, len(b)):], "global subr"); err != nil {
		return err
	}
	// CharStrings index, linked from the top DICT; defines the glyph count
	csOffset, ok := t.TopDict.IntArg(OpCharStrings, 0)
	if !ok {
		return errFontFormat("CFF2 top DICT has no CharStrings operator")
	}
	if csOffset < CFF2HeaderSize || csOffset >= len(b) {
		return errFontFormat("CFF2 CharStrings offset out of bounds")
	}
	if t.CharStrings, err = parseCFF2Index(b[csOffset:], "CharStrings"); err != nil {
		return err
	}
	if t.CharStrings.Count() == 0 {
		return errFontFormat("CFF2 table contains no charstrings")
	}
	tracer().Debugf("CFF2 table has %d glyphs", t.NumGlyphs())
	// font DICT array, mandatory in CFF2
	if err = t.parseFontDicts(); err != nil {
		return err
	}
	// FDSelect, optional; absent means all glyphs use font DICT 0
	t.FDSelect = None[CFF2FDSelect]()
	if fdsOffset, ok := t.TopDict.IntArg(OpFDSelect, 0); ok {
		if fdsOffset < CFF2HeaderSize || fdsOffset >= len(b) {
			return errFontFormat("CFF2 FDSelect offset out of bounds")
		}
		fds, err := parseFDSelect(b[fdsOffset:], t.NumGlyphs())
		if err != nil {
			return err
		}
		t.FDSelect = Some(fds)
	}
	// variation store, optional; a uint16 length prefix plus the item
	// variation store of the given length
	t.VarStore = None[NavLocation]()
	if vsOffset, ok := t.TopDict.IntArg(OpVStore, 0); ok {
		if vsOffset < CFF2HeaderSize || vsOffset+2 > len(b) {
			return errFontFormat("CFF2 variation store offset out of bounds")
		}
		vsLen := int(b.U16(vsOffset))
		span, err := b.view(vsOffset, 2+vsLen)
		if err != nil {
			return errFontFormat("CFF2 variation store exceeds table")
		}
		t.VarStore = Some[NavLocation](span)
	}
	return nil
}

func (t *CFF2Table) parseFontDicts() error {
	b := t.data
	fdaOffset, ok := t.TopDict.IntArg(OpFDArray, 0)
	if !ok {
		return errFontFormat("CFF2 top DICT has no FDArray operator")
	}
	if fdaOffset < CFF2HeaderSize || fdaOffset >= len(b) {
		return errFontFormat("CFF2 FDArray offset out of bounds")
	}
	fdaIndex, err := parseCFF2Index(b[fdaOffset:], "FDArray")
	if err != nil {
		return err
	}
	if fdaIndex.Count() == 0 {
		return errFontFormat("CFF2 FDArray is empty")
	}
	t.FontDicts = make([]CFF2FontDict, 0, fdaIndex.Count())
	t.PrivDicts = make([]CFF2PrivateDict, 0, fdaIndex.Count())
	for i := 0; i < fdaIndex.Count(); i++ {
		entry, err := fdaIndex.Get(i)
		if err != nil {
			return err
		}
		dict, err := parseDict(binarySegm(entry.Bytes()), fmt.Sprintf("font DICT %d", i))
		if err != nil {
			return err
		}
		fd := CFF2FontDict{Dict: dict}
		priv, ok := dict.Entry(OpPrivate)
		if !ok || len(priv.Args) < 2 {
			return errFontFormat(fmt.Sprintf("font DICT %d has no private DICT", i))
		}
		fd.PrivDictSize, fd.PrivDictOffset = priv.Args[0], priv.Args[1]
		pd, err := t.parsePrivateDict(fd.PrivDictOffset, fd.PrivDictSize, i)
		if err != nil {
			return err
		}
		t.FontDicts = append(t.FontDicts, fd)
		t.PrivDicts = append(t.PrivDicts, pd)
	}
	tracer().Debugf("CFF2 FDArray has %d font DICTs", len(t.FontDicts))
	return nil
}

func (t *CFF2Table) parsePrivateDict(offset, size, fdIndex int) (CFF2PrivateDict, error) {
	span, err := t.data.view(offset, size)
	if err != nil {
		return CFF2PrivateDict{}, errFontFormat(
			fmt.Sprintf("private DICT %d exceeds table", fdIndex))
	}
	dict, err := parseDict(span, fmt.Sprintf("private DICT %d", fdIndex))
	if err != nil {
		return CFF2PrivateDict{}, err
	}
	pd := CFF2PrivateDict{Dict: dict, span: span}
	pd.LocalSubrs = None[CFF2Index]()
	if subrsOffset, ok := dict.IntArg(OpSubrs, 0); ok {
		// the subr offset is relative to the start of the private DICT
		if subrsOffset <= 0 || offset+subrsOffset >= len(t.data) {
			return CFF2PrivateDict{}, errFontFormat(
				fmt.Sprintf("local subr offset of private DICT %d out of bounds", fdIndex))
		}
		subrs, err := parseCFF2Index(t.data[offset+subrsOffset:], "local subr")
		if err != nil {
			return CFF2PrivateDict{}, err
		}
		pd.SubrsOffset = subrsOffset
		pd.LocalSubrs = Some(subrs)
	}
	return pd, nil
}
