package otsubset

import (
	"github.com/ebassi/harfbuzz/ot"
)

// DICT entry serializers. Most entries of the source dictionaries are copied
// verbatim; the exceptions are the operators whose operand values depend on
// the new layout. Those are re-emitted at a fixed width so that their size
// is known before their value is: a forward-referencing offset cannot shrink
// below the width reserved for it during planning.
//
// Fixed-width encodings used:
//
//	29 b3 b2 b1 b0 <op>          4-byte offset operand
//	28 b1 b0 <op>                2-byte operand (local subr offset)
//	28 s1 s0 29 b3 b2 b1 b0 18   private DICT {size, offset} pair

// forcedOffsetEntrySize is the serialized size of a DICT entry whose operand
// is re-emitted as a fixed 4-byte integer.
func forcedOffsetEntrySize(op ot.DictOp) int {
	return 1 + 4 + op.OpSize()
}

// Serialized sizes of the re-encoded private-DICT reference inside a font
// DICT, and of the local-subr reference inside a private DICT.
const (
	privateEntrySize = 1 + 2 + 1 + 4 + 1
	subrsEntrySize   = 1 + 2 + 1
)

// putOp emits a one- or two-byte DICT operator.
func putOp(w *tableWriter, op ot.DictOp) error {
	if op.OpSize() == 2 {
		if err := w.putU8(12); err != nil {
			return err
		}
		return w.putU8(byte(op & 0xff))
	}
	return w.putU8(byte(op))
}

// putInt2 emits a 2-byte integer operand (prefix 28).
func putInt2(w *tableWriter, v int) error {
	if err := w.putU8(28); err != nil {
		return err
	}
	return w.putU16(uint16(v))
}

// putInt4 emits a 4-byte integer operand (prefix 29).
func putInt4(w *tableWriter, v int) error {
	if err := w.putU8(29); err != nil {
		return err
	}
	return w.putU32(uint32(v))
}

// writeOffset4Entry emits an operator with a single forced 4-byte operand.
func writeOffset4Entry(w *tableWriter, op ot.DictOp, offset int) error {
	if err := putInt4(w, offset); err != nil {
		return err
	}
	return putOp(w, op)
}

// fontDictEntrySize returns the serialized size of one font DICT entry.
// The private-DICT reference is forced to fixed width; everything else is
// copied verbatim.
func fontDictEntrySize(e ot.DictEntry) int {
	if e.Op == ot.OpPrivate {
		return privateEntrySize
	}
	return len(e.Bytes())
}

// writeFontDictEntry emits one font DICT entry, patching the private-DICT
// {size, offset} pair from the layout plan.
func writeFontDictEntry(w *tableWriter, e ot.DictEntry, priv sectionInfo) error {
	if e.Op != ot.OpPrivate {
		return w.putBytes(e.Bytes())
	}
	if err := putInt2(w, priv.size); err != nil {
		return err
	}
	if err := putInt4(w, priv.offset); err != nil {
		return err
	}
	return putOp(w, ot.OpPrivate)
}

// privateDictEntrySize returns the serialized size of one private DICT
// entry. The local-subr reference gets a fixed 2-byte operand.
func privateDictEntrySize(e ot.DictEntry) int {
	if e.Op == ot.OpSubrs {
		return subrsEntrySize
	}
	return len(e.Bytes())
}

// writePrivateDictEntry emits one private DICT entry. The local subr index
// is always placed immediately after its private DICT, so the subr offset
// operand equals the private DICT's own serialized size.
func writePrivateDictEntry(w *tableWriter, e ot.DictEntry, privDictSize int) error {
	if e.Op != ot.OpSubrs {
		return w.putBytes(e.Bytes())
	}
	if err := putInt2(w, privDictSize); err != nil {
		return err
	}
	return putOp(w, ot.OpSubrs)
}
