package otsubset

import (
	"errors"
	"fmt"

	"github.com/ebassi/harfbuzz/ot"
)

// The write phase. Given a plan and a destination buffer of exactly the
// planned size, every section is emitted at its planned offset, in the fixed
// section order. A section starting anywhere else means planner and writer
// have drifted apart; that is an internal-consistency fault, not a
// recoverable runtime condition. The write aborts and no buffer is handed out.

var (
	// errLayoutDrift reports a section starting at an offset other than the
	// planned one.
	errLayoutDrift = errors.New("internal inconsistency: section offset differs from plan")
	// errWriteBounds reports an emit beyond the planned buffer size.
	errWriteBounds = errors.New("internal inconsistency: write beyond planned size")
)

// tableWriter emits big-endian values into a preallocated buffer, tracking
// the write cursor.
type tableWriter struct {
	buf []byte
	pos int
}

// checkpoint verifies that the write cursor sits exactly at the planned
// offset of the named section.
func (w *tableWriter) checkpoint(section string, planned int) error {
	if w.pos != planned {
		tracer().Errorf("section %s starts at %d, planned %d", section, w.pos, planned)
		return fmt.Errorf("section %s: %w", section, errLayoutDrift)
	}
	return nil
}

func (w *tableWriter) grow(n int) ([]byte, error) {
	if w.pos+n > len(w.buf) {
		return nil, errWriteBounds
	}
	b := w.buf[w.pos : w.pos+n]
	w.pos += n
	return b, nil
}

func (w *tableWriter) putU8(v byte) error {
	b, err := w.grow(1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func (w *tableWriter) putU16(v uint16) error {
	b, err := w.grow(2)
	if err != nil {
		return err
	}
	b[0], b[1] = byte(v>>8), byte(v)
	return nil
}

func (w *tableWriter) putU32(v uint32) error {
	b, err := w.grow(4)
	if err != nil {
		return err
	}
	b[0], b[1], b[2], b[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
	return nil
}

// putUint emits v with the given byte width (1…4), big-endian.
func (w *tableWriter) putUint(v uint32, width int) error {
	b, err := w.grow(width)
	if err != nil {
		return err
	}
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return nil
}

func (w *tableWriter) putBytes(data []byte) error {
	b, err := w.grow(len(data))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

// writeCFF2 emits the planned subset table into dest, which must have
// exactly the planned size.
func writeCFF2(p *cff2Plan, dest []byte) error {
	if len(dest) != p.finalSize {
		return fmt.Errorf("destination buffer has %d bytes, plan needs %d: %w",
			len(dest), p.finalSize, errWriteBounds)
	}
	acc := p.acc
	w := &tableWriter{buf: dest}

	// header: major 2, minor 0, header size, uint16 top DICT length; the top
	// DICT starts immediately after the header
	if err := w.putU8(2); err != nil {
		return err
	}
	if err := w.putU8(0); err != nil {
		return err
	}
	if err := w.putU8(ot.CFF2HeaderSize); err != nil {
		return err
	}
	if err := w.putU16(uint16(p.topDictSize)); err != nil {
		return err
	}

	// top DICT
	if err := w.checkpoint("top DICT", ot.CFF2HeaderSize); err != nil {
		return err
	}
	for _, e := range acc.TopDict {
		if err := p.writeTopDictEntry(w, e); err != nil {
			tracer().Errorf("failed to serialize CFF2 top DICT: %v", err)
			return err
		}
	}

	// global subr index, verbatim
	if err := w.checkpoint("global subrs", ot.CFF2HeaderSize+p.topDictSize); err != nil {
		return err
	}
	if err := w.putBytes(acc.GlobalSubrs.Location().Bytes()); err != nil {
		return err
	}

	// variation store, verbatim
	if vs, ok := p.varStore.Unwrap(); ok {
		if err := w.checkpoint("variation store", vs.offset); err != nil {
			return err
		}
		src, _ := acc.VarStore.Unwrap()
		if err := w.putBytes(src.Bytes()); err != nil {
			return err
		}
	}

	// FDSelect: re-encoded if subsetting eliminated font DICTs, otherwise
	// the original bytes are carried over unchanged
	if fs, ok := p.fdSelect.Unwrap(); ok {
		if err := w.checkpoint("FDSelect", fs.offset); err != nil {
			return err
		}
		if p.fds.subsetted {
			if err := p.fds.write(w, acc, p.glyphs); err != nil {
				tracer().Errorf("failed to serialize subset FDSelect: %v", err)
				return err
			}
		} else {
			src, _ := acc.FDSelect.Unwrap()
			if err := w.putBytes(src.Location().Bytes()); err != nil {
				return err
			}
		}
	}

	// font DICT array: surviving DICTs in new-index order, private-DICT
	// references patched via the remap's inverse
	if err := w.checkpoint("FDArray", p.fdArrayOffset); err != nil {
		return err
	}
	if err := writeIndexHeader(w, p.fdArrayOffSize, p.fdArrayEntrySizes); err != nil {
		return err
	}
	for _, origIdx := range p.fds.inverse {
		for _, e := range acc.FontDicts[origIdx].Dict {
			if err := writeFontDictEntry(w, e, p.privDictInfos[origIdx]); err != nil {
				tracer().Errorf("failed to serialize font DICT %d: %v", origIdx, err)
				return err
			}
		}
	}

	// charstring index: 1-based cumulative offsets, then the verbatim spans
	// in subset-list order
	if err := w.checkpoint("CharStrings", p.charStringsOffset); err != nil {
		return err
	}
	csSizes := make([]int, len(p.charstrings))
	for i, cs := range p.charstrings {
		csSizes[i] = cs.Size()
	}
	if err := writeIndexHeader(w, p.charStringsOffSize, csSizes); err != nil {
		return err
	}
	for _, cs := range p.charstrings {
		if err := w.putBytes(cs.Bytes()); err != nil {
			return err
		}
	}

	// private DICTs and local subr indexes, original index order; each subr
	// index directly follows its DICT, so the patched subr offset equals the
	// DICT's serialized size
	for i := range acc.PrivDicts {
		info := p.privDictInfos[i]
		if err := w.checkpoint(fmt.Sprintf("private DICT %d", i), info.offset); err != nil {
			return err
		}
		for _, e := range acc.PrivDicts[i].Dict {
			if err := writePrivateDictEntry(w, e, info.size); err != nil {
				tracer().Errorf("failed to serialize private DICT %d: %v", i, err)
				return err
			}
		}
		if acc.PrivDicts[i].SubrsOffset != 0 {
			subrs, ok := acc.PrivDicts[i].LocalSubrs.Unwrap()
			if !ok {
				return fmt.Errorf("private DICT %d declares local subrs but the index is missing", i)
			}
			if err := w.putBytes(subrs.Location().Bytes()); err != nil {
				return err
			}
		}
	}

	if w.pos != p.finalSize {
		tracer().Errorf("wrote %d bytes, planned %d", w.pos, p.finalSize)
		return fmt.Errorf("table end: %w", errLayoutDrift)
	}
	return nil
}
