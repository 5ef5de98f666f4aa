package otsubset

// Serialization of CFF2 INDEX structures: count (uint32), offSize (uint8),
// count+1 offsets of offSize bytes each, then the concatenated data blocks.
// Offsets are 1-based; the final offset equals the data size plus one.

// calcOffSize returns the minimal offset-field width w ∈ {1,2,3,4} such that
// the unsigned value v fits in w bytes. Index call sites pass dataSize+1,
// the largest value the offsets array has to hold.
//
// The width must be computed once per index and reused for both sizing and
// writing; planner and writer drift apart otherwise.
func calcOffSize(v int) int {
	switch {
	case v <= 0xff:
		return 1
	case v <= 0xffff:
		return 2
	case v <= 0xffffff:
		return 3
	default:
		return 4
	}
}

// indexSerializedSize returns the byte size of an index with the given entry
// count, offset width and total data size. An empty index is the 4-byte
// count field only.
func indexSerializedSize(count, offSize, dataSize int) int {
	if count == 0 {
		return 4
	}
	return 4 + 1 + (count+1)*offSize + dataSize
}

// writeIndexHeader emits count, offSize and the cumulative 1-based offsets
// array for entries of the given sizes. The caller emits the data blocks.
func writeIndexHeader(w *tableWriter, offSize int, entrySizes []int) error {
	if err := w.putU32(uint32(len(entrySizes))); err != nil {
		return err
	}
	if len(entrySizes) == 0 {
		return nil
	}
	if err := w.putU8(byte(offSize)); err != nil {
		return err
	}
	offset := 1
	for _, sz := range entrySizes {
		if err := w.putUint(uint32(offset), offSize); err != nil {
			return err
		}
		offset += sz
	}
	return w.putUint(uint32(offset), offSize)
}
