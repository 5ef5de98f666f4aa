package ot

import "fmt"

// CFF2 DICT structures, see
// https://docs.microsoft.com/en-us/typography/opentype/spec/cff2#table-9-top-dict-operator-entries
//
// A DICT is a sequence of entries, each consisting of zero or more operands
// followed by a one- or two-byte operator. We keep the verbatim byte span of
// every entry: the subsetter re-emits most entries untouched and only patches
// the handful of offset operators it has to.

// DictOp identifies a DICT operator. Two-byte operators (escape 12 followed
// by a second byte) are encoded as 0x0c00 | b1.
type DictOp uint16

// Operators of interest in CFF2 top, font and private DICTs. The scanner
// accepts arbitrary operators; these are the ones the subsetter patches or
// resolves.
const (
	OpCharStrings DictOp = 17     // top DICT: offset to CharStrings index
	OpPrivate     DictOp = 18     // font DICT: private DICT size and offset
	OpSubrs       DictOp = 19     // private DICT: offset to local subr index
	OpVSIndex     DictOp = 22     // private DICT: variation store index
	OpBlend       DictOp = 23     // private DICT: blended operands
	OpVStore      DictOp = 24     // top DICT: offset to variation store
	OpFontMatrix  DictOp = 0x0c07 // top DICT: font matrix
	OpFDArray     DictOp = 0x0c24 // top DICT: offset to font DICT index
	OpFDSelect    DictOp = 0x0c25 // top DICT: offset to FDSelect
)

const opEscape = 12 // first byte of two-byte operators

// OpSize returns the encoded size of the operator itself: 1 for single-byte
// operators, 2 for escaped ones.
func (op DictOp) OpSize() int {
	if op >= 0x0c00 {
		return 2
	}
	return 1
}

func (op DictOp) String() string {
	if op >= 0x0c00 {
		return fmt.Sprintf("op(12 %d)", uint16(op)&0xff)
	}
	return fmt.Sprintf("op(%d)", uint16(op))
}

// DictEntry is one operator with its preceding operands.
type DictEntry struct {
	Op   DictOp
	Args []int      // integer operand values; real-number operands are recorded as 0
	span binarySegm // verbatim bytes of the entry: operands followed by the operator
}

// Bytes returns the verbatim encoding of the entry (operands + operator).
// Read-only view into the source table.
func (e DictEntry) Bytes() []byte {
	return e.span
}

// CFF2Dict is a parsed DICT: a sequence of operator entries in table order.
type CFF2Dict []DictEntry

// Entry returns the first entry with the given operator, or ok=false.
func (d CFF2Dict) Entry(op DictOp) (DictEntry, bool) {
	for _, e := range d {
		if e.Op == op {
			return e, true
		}
	}
	return DictEntry{}, false
}

// IntArg returns operand position i of the first entry for op.
func (d CFF2Dict) IntArg(op DictOp, i int) (int, bool) {
	e, ok := d.Entry(op)
	if !ok || i < 0 || i >= len(e.Args) {
		return 0, false
	}
	return e.Args[i], true
}

// parseDict scans the DICT in b and splits it into operator entries.
// b must cover the DICT exactly.
func parseDict(b binarySegm, name string) (CFF2Dict, error) {
	var dict CFF2Dict
	var args []int
	start := 0
	pos := 0
	for pos < len(b) {
		b0 := b[pos]
		switch {
		case b0 <= 24: // operator, possibly escaped
			op := DictOp(b0)
			sz := 1
			if b0 == opEscape {
				if pos+1 >= len(b) {
					return nil, fmt.Errorf("CFF2 %s: truncated two-byte operator", name)
				}
				op = DictOp(0x0c00 | uint16(b[pos+1]))
				sz = 2
			}
			dict = append(dict, DictEntry{
				Op:   op,
				Args: args,
				span: b[start : pos+sz],
			})
			args = nil
			pos += sz
			start = pos
		case b0 == 28: // 2-byte integer
			v, err := b.u16(pos + 1)
			if err != nil {
				return nil, fmt.Errorf("CFF2 %s: truncated operand", name)
			}
			args = append(args, int(int16(v)))
			pos += 3
		case b0 == 29: // 4-byte integer
			v, err := b.u32(pos + 1)
			if err != nil {
				return nil, fmt.Errorf("CFF2 %s: truncated operand", name)
			}
			args = append(args, int(int32(v)))
			pos += 5
		case b0 == 30: // real number, nibble-encoded, 0xf-terminated
			n, err := skipRealOperand(b, pos+1)
			if err != nil {
				return nil, fmt.Errorf("CFF2 %s: %w", name, err)
			}
			args = append(args, 0)
			pos = n
		case b0 >= 32 && b0 <= 246: // 1-byte integer
			args = append(args, int(b0)-139)
			pos++
		case b0 >= 247 && b0 <= 250: // 2-byte positive integer
			if pos+1 >= len(b) {
				return nil, fmt.Errorf("CFF2 %s: truncated operand", name)
			}
			args = append(args, (int(b0)-247)*256+int(b[pos+1])+108)
			pos += 2
		case b0 >= 251 && b0 <= 254: // 2-byte negative integer
			if pos+1 >= len(b) {
				return nil, fmt.Errorf("CFF2 %s: truncated operand", name)
			}
			args = append(args, -(int(b0)-251)*256-int(b[pos+1])-108)
			pos += 2
		default: // 25, 26, 27, 31, 255
			return nil, fmt.Errorf("CFF2 %s: reserved byte value %d in DICT", name, b0)
		}
	}
	if start != pos {
		return nil, fmt.Errorf("CFF2 %s: trailing operands without operator", name)
	}
	return dict, nil
}

// skipRealOperand advances over a nibble-encoded real number starting at pos
// (after the 30 prefix byte) and returns the position after its terminator.
func skipRealOperand(b binarySegm, pos int) (int, error) {
	for pos < len(b) {
		hi := b[pos] >> 4
		lo := b[pos] & 0x0f
		pos++
		if hi == 0xf || lo == 0xf {
			return pos, nil
		}
	}
	return 0, fmt.Errorf("unterminated real-number operand")
}
