package otsubset

import (
	"errors"
	"testing"

	"github.com/ebassi/harfbuzz/internal/testfont"
)

func TestWriterBufferSizeMismatch(t *testing.T) {
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0},
		NumFDs:         1,
		FDSelectFormat: -1,
	})
	plan, err := newCFF2Plan(cff2, glyphList(0, 1))
	if err != nil {
		t.Fatalf("cannot plan subset: %v", err)
	}
	buf := make([]byte, plan.finalSize-1)
	if err = writeCFF2(plan, buf); !errors.Is(err, errWriteBounds) {
		t.Errorf("expected errWriteBounds for a short buffer, have %v", err)
	}
}

func TestWriterDetectsLayoutDrift(t *testing.T) {
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0, 1, 1, 0},
		NumFDs:         2,
		FDSelectFormat: 0,
	})
	plan, err := newCFF2Plan(cff2, glyphList(0, 2, 4))
	if err != nil {
		t.Fatalf("cannot plan subset: %v", err)
	}
	plan.fdArrayOffset++ // corrupt the plan
	buf := make([]byte, plan.finalSize)
	if err = writeCFF2(plan, buf); !errors.Is(err, errLayoutDrift) {
		t.Errorf("expected errLayoutDrift for a corrupted plan, have %v", err)
	}
}

func TestTableWriterPrimitives(t *testing.T) {
	buf := make([]byte, 10)
	w := &tableWriter{buf: buf}
	if err := w.putU8(0x01); err != nil {
		t.Fatal(err)
	}
	if err := w.putU16(0x0203); err != nil {
		t.Fatal(err)
	}
	if err := w.putU32(0x04050607); err != nil {
		t.Fatal(err)
	}
	if err := w.putUint(0x0809, 2); err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	for i, b := range want {
		if buf[i] != b {
			t.Fatalf("buffer = % x, want % x…", buf, want)
		}
	}
	if err := w.putU16(0); !errors.Is(err, errWriteBounds) {
		t.Errorf("expected errWriteBounds past the buffer end, have %v", err)
	}
	if err := w.checkpoint("test", 9); err != nil {
		t.Errorf("checkpoint at the planned offset must pass: %v", err)
	}
	if err := w.checkpoint("test", 5); !errors.Is(err, errLayoutDrift) {
		t.Errorf("expected errLayoutDrift, have %v", err)
	}
}
