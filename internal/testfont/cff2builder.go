// Package testfont builds small synthetic font binaries for tests.
//
// The CFF2 tables produced here are complete and self-consistent: header,
// top DICT with fixed-width offset operands, global subr index, optional
// variation store, optional FDSelect, font DICT array, charstring index and
// private DICTs with the first font DICT carrying a local subr index.
package testfont

// CFF2Spec describes the synthetic table to build.
type CFF2Spec struct {
	Associations   []int // font DICT index per glyph; glyph count = len
	NumFDs         int   // number of font DICTs
	FDSelectFormat int   // 0 or 3; < 0 for no FDSelect section
	WithVarStore   bool
}

// Charstring returns the synthetic charstring bytes for glyph gid.
func Charstring(gid int) []byte {
	return []byte{byte(100 + gid), 11}
}

// BuildCFF2 assembles the table bytes for spec.
func BuildCFF2(spec CFF2Spec) []byte {
	n := len(spec.Associations)
	hasFDSelect := spec.FDSelectFormat >= 0

	// on-disk sizes of every section; forced-width top DICT operands make
	// the top DICT size independent of the offsets it will carry
	topDictSize := 6 + 7 // CharStrings (29 x4 17), FDArray (29 x4 12 36)
	if hasFDSelect {
		topDictSize += 7 // FDSelect (29 x4 12 37)
	}
	if spec.WithVarStore {
		topDictSize += 6 // vstore (29 x4 24)
	}
	var ranges [][2]int // {first glyph, fd}
	for gid, fd := range spec.Associations {
		if gid == 0 || fd != spec.Associations[gid-1] {
			ranges = append(ranges, [2]int{gid, fd})
		}
	}
	fdSelectSize := 0
	if hasFDSelect {
		if spec.FDSelectFormat == 0 {
			fdSelectSize = 1 + n
		} else {
			fdSelectSize = 3 + 3*len(ranges) + 2
		}
	}
	fdArraySize := 4 + 1 + (spec.NumFDs + 1) + 9*spec.NumFDs
	charStringsSize := 4 + 1 + (n + 1) + 2*n

	// layout
	off := 5 + topDictSize
	off += 4 // empty global subr index
	vsOff := 0
	if spec.WithVarStore {
		vsOff = off
		off += 6
	}
	fdsOff := 0
	if hasFDSelect {
		fdsOff = off
		off += fdSelectSize
	}
	fdaOff := off
	off += fdArraySize
	csOff := off
	off += charStringsSize
	privOff := make([]int, spec.NumFDs)
	privSize := make([]int, spec.NumFDs)
	for i := 0; i < spec.NumFDs; i++ {
		privOff[i] = off
		if i == 0 {
			privSize[i] = 6 // BlueValues + Subrs entry
			off += 6 + 8    // plus local subr index
		} else {
			privSize[i] = 2 // BlueValues only
			off += 2
		}
	}
	total := off

	b := make([]byte, 0, total)
	put8 := func(v int) { b = append(b, byte(v)) }
	put16 := func(v int) { b = append(b, byte(v>>8), byte(v)) }
	put32 := func(v int) { b = append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }
	putOff4 := func(v int, op ...int) { // 29 x4 <op>
		put8(29)
		put32(v)
		for _, o := range op {
			put8(o)
		}
	}

	// header
	put8(2)
	put8(0)
	put8(5)
	put16(topDictSize)
	// top DICT
	if spec.WithVarStore {
		putOff4(vsOff, 24)
	}
	putOff4(csOff, 17)
	putOff4(fdaOff, 12, 36)
	if hasFDSelect {
		putOff4(fdsOff, 12, 37)
	}
	// global subrs: empty index
	put32(0)
	// variation store: uint16 length + payload
	if spec.WithVarStore {
		put16(4)
		b = append(b, 1, 2, 3, 4)
	}
	// FDSelect
	if hasFDSelect {
		if spec.FDSelectFormat == 0 {
			put8(0)
			for _, fd := range spec.Associations {
				put8(fd)
			}
		} else {
			put8(3)
			put16(len(ranges))
			for _, r := range ranges {
				put16(r[0])
				put8(r[1])
			}
			put16(n) // sentinel
		}
	}
	// FDArray: 9-byte font DICTs, offSize 1
	put32(spec.NumFDs)
	put8(1)
	for i := 0; i <= spec.NumFDs; i++ {
		put8(1 + 9*i)
	}
	for i := 0; i < spec.NumFDs; i++ {
		put8(28)
		put16(privSize[i])
		put8(29)
		put32(privOff[i])
		put8(18) // Private
	}
	// CharStrings: 2-byte charstrings, offSize 1
	put32(n)
	put8(1)
	for i := 0; i <= n; i++ {
		put8(1 + 2*i)
	}
	for gid := 0; gid < n; gid++ {
		b = append(b, Charstring(gid)...)
	}
	// private DICTs
	for i := 0; i < spec.NumFDs; i++ {
		b = append(b, 159, 6) // BlueValues 20
		if i == 0 {
			put8(28)
			put16(6) // local subrs directly follow the 6-byte DICT
			put8(19) // Subrs
			// local subr index: one 1-byte entry
			put32(1)
			put8(1)
			put8(1)
			put8(2)
			put8(11)
		}
	}
	if len(b) != total {
		panic("testfont: CFF2 fixture size drifted")
	}
	return b
}

// WrapSFNT wraps a single CFF2 table in a minimal OpenType container.
func WrapSFNT(table []byte) []byte {
	b := make([]byte, 0, 28+len(table))
	b = append(b, 'O', 'T', 'T', 'O', 0, 1) // font type + table count
	b = append(b, 0, 16, 0, 0, 0, 0)        // searchRange, entrySelector, rangeShift
	b = append(b, 'C', 'F', 'F', '2')
	b = append(b, 0, 0, 0, 0) // checksum, ignored
	b = append(b, 0, 0, 0, 28)
	b = append(b, byte(len(table)>>24), byte(len(table)>>16), byte(len(table)>>8), byte(len(table)))
	return append(b, table...)
}
