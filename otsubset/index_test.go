package otsubset

import (
	"bytes"
	"testing"
)

// Offset widths must flip exactly at the byte-range boundaries.
func TestCalcOffSizeBoundaries(t *testing.T) {
	tests := []struct {
		v    int
		want int
	}{
		{0, 1},
		{254, 1},
		{255, 1},
		{256, 2},
		{65534, 2},
		{65535, 2},
		{65536, 3},
		{16777214, 3},
		{16777215, 3},
		{16777216, 4},
	}
	for _, tt := range tests {
		if w := calcOffSize(tt.v); w != tt.want {
			t.Errorf("calcOffSize(%d) = %d, want %d", tt.v, w, tt.want)
		}
	}
}

func TestIndexSerializedSize(t *testing.T) {
	if sz := indexSerializedSize(0, 0, 0); sz != 4 {
		t.Errorf("empty index size = %d, want 4", sz)
	}
	// count 3, offSize 1, 6 data bytes: 4 + 1 + 4 offsets + 6
	if sz := indexSerializedSize(3, 1, 6); sz != 15 {
		t.Errorf("index size = %d, want 15", sz)
	}
	// count 2, offSize 2, 300 data bytes: 4 + 1 + 3*2 + 300
	if sz := indexSerializedSize(2, 2, 300); sz != 311 {
		t.Errorf("index size = %d, want 311", sz)
	}
}

func TestWriteIndexHeader(t *testing.T) {
	buf := make([]byte, 8)
	w := &tableWriter{buf: buf}
	if err := writeIndexHeader(w, 1, []int{1, 2}); err != nil {
		t.Fatalf("cannot write index header: %v", err)
	}
	want := []byte{0, 0, 0, 2, 1, 1, 2, 4}
	if !bytes.Equal(buf, want) {
		t.Errorf("index header = % x, want % x", buf, want)
	}
}

func TestWriteIndexHeaderWide(t *testing.T) {
	buf := make([]byte, 4+1+2*2)
	w := &tableWriter{buf: buf}
	if err := writeIndexHeader(w, 2, []int{300}); err != nil {
		t.Fatalf("cannot write index header: %v", err)
	}
	want := []byte{0, 0, 0, 1, 2, 0, 1, 1, 45} // offsets 1 and 301
	if !bytes.Equal(buf, want) {
		t.Errorf("index header = % x, want % x", buf, want)
	}
}

func TestWriteIndexHeaderEmpty(t *testing.T) {
	buf := make([]byte, 4)
	w := &tableWriter{buf: buf}
	if err := writeIndexHeader(w, 1, nil); err != nil {
		t.Fatalf("cannot write empty index: %v", err)
	}
	if !bytes.Equal(buf, []byte{0, 0, 0, 0}) {
		t.Errorf("empty index = % x", buf)
	}
}
