package otsubset

import (
	"errors"
	"fmt"

	"github.com/ebassi/harfbuzz/ot"
)

// Font-dictionary subsetting: decide which font DICTs survive a glyph
// subset, build the old→new index remap, and choose the cheaper of the two
// FDSelect encodings for the subset.

// errNoSurvivingFontDict reports a glyph subset whose association data
// references no valid font DICT. This is a source-data inconsistency, not a
// caller error.
var errNoSurvivingFontDict = errors.New("no font dictionary survives the glyph subset")

// fdAbsent marks a font DICT that no retained glyph references.
const fdAbsent = -1

// fdRange is one run of consecutive new glyph IDs sharing a font DICT.
// fd is the ORIGINAL dictionary index; it is remapped during writing.
type fdRange struct {
	first ot.GlyphIndex // new glyph ID of the first glyph in the run
	fd    int
}

// fdSelectPlan is the outcome of font-dictionary subsetting.
type fdSelectPlan struct {
	origCount   int
	subsetCount int       // number of surviving font DICTs
	fdmap       []int     // original index to new index, fdAbsent if dropped
	inverse     []int     // new index to original index
	hasTable    bool      // source carries an FDSelect section
	subsetted   bool      // subsetCount < origCount
	format      int       // chosen encoding for a re-encoded table, 0 or 3
	size        int       // planned byte size of the association section
	ranges      []fdRange // runs for format 3
}

// Sizes of the two FDSelect encodings. Format 0 is a format byte plus one
// byte per glyph; format 3 is a format byte, a uint16 range count, 3 bytes
// per range (uint16 first glyph + uint8 FD) and a uint16 sentinel.
const (
	fdSelect0HeaderSize = 1
	fdSelect3HeaderSize = 3
	fdSelect3RangeSize  = 3
	fdSelect3FooterSize = 2
)

// tableNeeded reports whether the output carries an association section at
// all. A subset that collapses onto a single font DICT needs none; a source
// without one stays without one.
func (fp fdSelectPlan) tableNeeded() bool {
	return fp.hasTable && !(fp.subsetted && fp.subsetCount == 1)
}

// planFDSelect scans the subset list against the source's glyph→font-DICT
// association and produces the remap plus the association-table plan.
//
// New indices are assigned in order of first occurrence in the subset list,
// so the remap is an order-preserving compaction. If subsetting eliminates
// no font DICT, the original table is carried over byte-for-byte, keeping
// the original glyph-count-based size (legacy behavior, relied upon by
// consumers that expect byte-identical output in that case).
func planFDSelect(acc *ot.CFF2Table, glyphs []ot.GlyphIndex) (fdSelectPlan, error) {
	fp := fdSelectPlan{origCount: acc.FDCount()}
	if len(glyphs) == 0 {
		return fp, errNoSurvivingFontDict
	}
	if acc.FDSelect.IsNone() {
		// every glyph is associated with font DICT 0, so only DICT 0
		// survives; any further DICTs in the source are unreferenced
		fp.subsetCount = 1
		fp.fdmap = make([]int, fp.origCount)
		for i := range fp.fdmap {
			fp.fdmap[i] = fdAbsent
		}
		fp.fdmap[0] = 0
		fp.inverse = []int{0}
		fp.subsetted = fp.subsetCount < fp.origCount
		return fp, nil
	}
	fds, _ := acc.FDSelect.Unwrap()
	fp.hasTable = true
	fp.fdmap = make([]int, fp.origCount)
	for i := range fp.fdmap {
		fp.fdmap[i] = fdAbsent
	}
	prevFD := -1
	for newGid, gid := range glyphs {
		fd, err := fds.FDForGlyph(gid)
		if err != nil {
			return fp, err
		}
		if fd >= fp.origCount {
			return fp, fmt.Errorf("FDSelect references font DICT %d of %d", fd, fp.origCount)
		}
		if fp.fdmap[fd] == fdAbsent {
			fp.fdmap[fd] = fp.subsetCount
			fp.subsetCount++
		}
		if fd != prevFD {
			fp.ranges = append(fp.ranges, fdRange{first: ot.GlyphIndex(newGid), fd: fd})
			prevFD = fd
		}
	}
	if fp.subsetCount == 0 {
		return fp, errNoSurvivingFontDict
	}
	fp.inverse = make([]int, fp.subsetCount)
	for orig, n := range fp.fdmap {
		if n != fdAbsent {
			fp.inverse[n] = orig
		}
	}
	fp.subsetted = fp.subsetCount < fp.origCount
	if !fp.subsetted {
		// legacy carry-over: no DICT eliminated, reuse the original table
		fp.format = fds.Format()
		fp.size = fds.Size()
		return fp, nil
	}
	if fp.subsetCount == 1 {
		// single surviving DICT, no association section needed
		fp.size = 0
		return fp, nil
	}
	sizeArray := fdSelect0HeaderSize + len(glyphs)
	sizeRanges := fdSelect3HeaderSize + len(fp.ranges)*fdSelect3RangeSize + fdSelect3FooterSize
	if sizeArray <= sizeRanges {
		fp.format, fp.size = 0, sizeArray
	} else {
		fp.format, fp.size = 3, sizeRanges
	}
	tracer().Debugf("FDSelect subset: %d of %d DICTs survive, format %d (%d bytes)",
		fp.subsetCount, fp.origCount, fp.format, fp.size)
	return fp, nil
}

// writeFDSelect emits the re-encoded association section for a subsetted
// plan. Carried-over tables are copied verbatim by the caller instead.
func (fp fdSelectPlan) write(w *tableWriter, acc *ot.CFF2Table, glyphs []ot.GlyphIndex) error {
	switch fp.format {
	case 0:
		if err := w.putU8(0); err != nil {
			return err
		}
		fds, _ := acc.FDSelect.Unwrap()
		for _, gid := range glyphs {
			fd, err := fds.FDForGlyph(gid)
			if err != nil {
				return err
			}
			if err := w.putU8(byte(fp.fdmap[fd])); err != nil {
				return err
			}
		}
		return nil
	case 3:
		if err := w.putU8(3); err != nil {
			return err
		}
		if err := w.putU16(uint16(len(fp.ranges))); err != nil {
			return err
		}
		for _, r := range fp.ranges {
			if err := w.putU16(uint16(r.first)); err != nil {
				return err
			}
			if err := w.putU8(byte(fp.fdmap[r.fd])); err != nil {
				return err
			}
		}
		return w.putU16(uint16(len(glyphs))) // sentinel: end of glyphs
	}
	return fmt.Errorf("cannot serialize FDSelect format %d", fp.format)
}
