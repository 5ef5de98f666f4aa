package ot

import (
	"bytes"
	"errors"
	"testing"
)

// index with three entries "a", "bc", "def", offSize 1
func smallIndex() []byte {
	return []byte{
		0, 0, 0, 3, // count
		1,          // offSize
		1, 2, 4, 7, // 1-based offsets
		'a', 'b', 'c', 'd', 'e', 'f',
	}
}

func TestCFF2IndexParse(t *testing.T) {
	ix, err := parseCFF2Index(smallIndex(), "test")
	if err != nil {
		t.Fatalf("cannot parse index: %v", err)
	}
	if ix.Count() != 3 {
		t.Errorf("expected 3 index entries, have %d", ix.Count())
	}
	if ix.OffSize() != 1 {
		t.Errorf("expected offSize 1, have %d", ix.OffSize())
	}
	if ix.Size() != 15 {
		t.Errorf("expected index size 15, have %d", ix.Size())
	}
	if ix.DataSize() != 6 {
		t.Errorf("expected 6 data bytes, have %d", ix.DataSize())
	}
	want := []string{"a", "bc", "def"}
	for i, s := range want {
		entry, err := ix.Get(i)
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}
		if string(entry.Bytes()) != s {
			t.Errorf("entry %d = %q, want %q", i, entry.Bytes(), s)
		}
	}
}

func TestCFF2IndexTrailingBytesIgnored(t *testing.T) {
	b := append(smallIndex(), 0xde, 0xad)
	ix, err := parseCFF2Index(b, "test")
	if err != nil {
		t.Fatalf("cannot parse index: %v", err)
	}
	if ix.Size() != 15 {
		t.Errorf("index extent must stop before trailing bytes, size = %d", ix.Size())
	}
}

func TestCFF2IndexEmpty(t *testing.T) {
	ix, err := parseCFF2Index([]byte{0, 0, 0, 0, 99}, "test")
	if err != nil {
		t.Fatalf("cannot parse empty index: %v", err)
	}
	if ix.Count() != 0 || ix.Size() != 4 {
		t.Errorf("empty index: count %d, size %d; want 0 and 4", ix.Count(), ix.Size())
	}
	if !bytes.Equal(ix.Location().Bytes(), []byte{0, 0, 0, 0}) {
		t.Errorf("empty index location = % x", ix.Location().Bytes())
	}
}

func TestCFF2IndexZeroValue(t *testing.T) {
	var ix CFF2Index
	if ix.Count() != 0 || ix.Size() != 4 {
		t.Errorf("zero value: count %d, size %d; want 0 and 4", ix.Count(), ix.Size())
	}
	if !bytes.Equal(ix.Location().Bytes(), []byte{0, 0, 0, 0}) {
		t.Errorf("zero value location = % x", ix.Location().Bytes())
	}
}

func TestCFF2IndexOffSize2(t *testing.T) {
	b := []byte{
		0, 0, 0, 2, // count
		2,                // offSize
		0, 1, 0, 3, 0, 4, // offsets 1, 3, 4
		'x', 'y', 'z',
	}
	ix, err := parseCFF2Index(b, "test")
	if err != nil {
		t.Fatalf("cannot parse index: %v", err)
	}
	entry, err := ix.Get(1)
	if err != nil {
		t.Fatalf("entry 1: %v", err)
	}
	if string(entry.Bytes()) != "z" {
		t.Errorf("entry 1 = %q, want %q", entry.Bytes(), "z")
	}
}

func TestCFF2IndexGetOutOfRange(t *testing.T) {
	ix, err := parseCFF2Index(smallIndex(), "test")
	if err != nil {
		t.Fatalf("cannot parse index: %v", err)
	}
	if _, err = ix.Get(3); !errors.Is(err, errBufferBounds) {
		t.Errorf("expected bounds error for entry 3, have %v", err)
	}
	if _, err = ix.Get(-1); !errors.Is(err, errBufferBounds) {
		t.Errorf("expected bounds error for entry -1, have %v", err)
	}
}

func TestCFF2IndexMalformed(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
	}{
		{"truncated count", []byte{0, 0, 0}},
		{"missing offSize", []byte{0, 0, 0, 1}},
		{"invalid offSize", []byte{0, 0, 0, 1, 5, 1, 2, 'a'}},
		{"truncated offsets", []byte{0, 0, 0, 2, 1, 1, 2}},
		{"zero final offset", []byte{0, 0, 0, 1, 1, 1, 0}},
		{"data exceeds segment", []byte{0, 0, 0, 1, 1, 1, 9, 'a'}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseCFF2Index(tc.b, "test"); err == nil {
				t.Errorf("expected parse error for %s", tc.name)
			}
		})
	}
}
