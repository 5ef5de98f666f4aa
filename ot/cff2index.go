package ot

import "fmt"

// CFF2 INDEX structures, see
// https://docs.microsoft.com/en-us/typography/opentype/spec/cff2#5-index-data
//
// An INDEX is a length-prefixed array of variable-sized byte blocks:
//
// | Type     | Name                  | Descr.                          |
// |----------|-----------------------|---------------------------------|
// | uint32   | count                 | Number of data blocks           |
// | uint8    | offSize               | Byte width of offsets (1…4)     |
// | offset[] | offsets[count+1]      | 1-based offsets into data       |
// | uint8[]  | data                  | Concatenated data blocks        |
//
// An empty INDEX (count = 0) consists of the count field only. Offsets are
// 1-based: offsets[0] is always 1, offsets[count] equals len(data)+1.

// CFF2Index is a read-only view on an INDEX inside a CFF2 table.
// The zero value is a valid empty index.
type CFF2Index struct {
	count   int
	offSize int
	offsets binarySegm // (count+1) offsets of offSize bytes each
	payload binarySegm // concatenated data blocks
	data    binarySegm // the complete index, header through data
}

// parseCFF2Index reads an INDEX from the beginning of b. The segment may
// extend beyond the index; the view records the exact extent.
func parseCFF2Index(b binarySegm, name string) (CFF2Index, error) {
	n, err := b.u32(0)
	if err != nil {
		return CFF2Index{}, fmt.Errorf("CFF2 %s index: %w", name, err)
	}
	count := int(n)
	if count == 0 {
		ix := CFF2Index{data: b[:4]}
		return ix, nil
	}
	offSize, err := b.u8(4)
	if err != nil {
		return CFF2Index{}, fmt.Errorf("CFF2 %s index: %w", name, err)
	}
	if offSize < 1 || offSize > 4 {
		return CFF2Index{}, fmt.Errorf("CFF2 %s index: invalid offSize %d", name, offSize)
	}
	w := int(offSize)
	offsets, err := b.view(5, (count+1)*w)
	if err != nil {
		return CFF2Index{}, fmt.Errorf("CFF2 %s index: offsets array: %w", name, err)
	}
	last, err := offsets.uint(count*w, w)
	if err != nil || last < 1 {
		return CFF2Index{}, fmt.Errorf("CFF2 %s index: invalid final offset", name)
	}
	dataStart := 5 + (count+1)*w
	payload, err := b.view(dataStart, int(last)-1)
	if err != nil {
		return CFF2Index{}, fmt.Errorf("CFF2 %s index: data: %w", name, err)
	}
	ix := CFF2Index{
		count:   count,
		offSize: w,
		offsets: offsets,
		payload: payload,
		data:    b[:dataStart+int(last)-1],
	}
	tracer().Debugf("CFF2 %s index: %d entries, offSize %d, %d data bytes",
		name, count, w, len(payload))
	return ix, nil
}

// Count returns the number of data blocks in the index.
func (ix CFF2Index) Count() int {
	return ix.count
}

// OffSize returns the byte width of the index's internal offsets.
// It is 0 for an empty index.
func (ix CFF2Index) OffSize() int {
	return ix.offSize
}

// Size returns the byte size of the complete index structure.
// An empty index occupies 4 bytes (the count field).
func (ix CFF2Index) Size() int {
	if len(ix.data) == 0 {
		return 4 // zero value: empty index
	}
	return len(ix.data)
}

// DataSize returns the total byte size of the concatenated data blocks.
func (ix CFF2Index) DataSize() int {
	return len(ix.payload)
}

// Location returns the complete index structure as a byte location.
func (ix CFF2Index) Location() NavLocation {
	if len(ix.data) == 0 {
		return binarySegm{0, 0, 0, 0}
	}
	return ix.data
}

// Get returns the data block at index i.
func (ix CFF2Index) Get(i int) (NavLocation, error) {
	if i < 0 || i >= ix.count {
		return nil, fmt.Errorf("CFF2 index entry %d out of range [0…%d): %w",
			i, ix.count, errBufferBounds)
	}
	w := ix.offSize
	from, err := ix.offsets.uint(i*w, w)
	if err != nil {
		return nil, err
	}
	to, err := ix.offsets.uint((i+1)*w, w)
	if err != nil {
		return nil, err
	}
	if from < 1 || to < from {
		return nil, fmt.Errorf("CFF2 index: unordered offsets at entry %d", i)
	}
	// offsets are 1-based
	return ix.payload.view(int(from)-1, int(to-from))
}
