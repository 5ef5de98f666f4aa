package ot

import (
	"bytes"
	"testing"

	"github.com/ebassi/harfbuzz/internal/testfont"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func parseFixture(t *testing.T, spec testfont.CFF2Spec) *CFF2Table {
	t.Helper()
	cff2, err := ParseCFF2(testfont.BuildCFF2(spec))
	if err != nil {
		t.Fatalf("cannot parse synthetic CFF2 table: %v", err)
	}
	return cff2
}

func TestCFF2Parse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ot")
	defer teardown()
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0, 1, 1, 0},
		NumFDs:         2,
		FDSelectFormat: 0,
	})
	if cff2.Major != 2 || cff2.Minor != 0 {
		t.Errorf("version = %d.%d, want 2.0", cff2.Major, cff2.Minor)
	}
	if cff2.NumGlyphs() != 5 {
		t.Errorf("glyph count = %d, want 5", cff2.NumGlyphs())
	}
	if cff2.FDCount() != 2 {
		t.Errorf("font DICT count = %d, want 2", cff2.FDCount())
	}
	if cff2.GlobalSubrs.Count() != 0 || cff2.GlobalSubrs.Size() != 4 {
		t.Errorf("global subr index: count %d, size %d; want an empty index",
			cff2.GlobalSubrs.Count(), cff2.GlobalSubrs.Size())
	}
	if cff2.VarStore.IsSome() {
		t.Errorf("table without a variation store reports one")
	}
	for gid := 0; gid < 5; gid++ {
		cs, err := cff2.CharStrings.Get(gid)
		if err != nil {
			t.Fatalf("charstring %d: %v", gid, err)
		}
		if !bytes.Equal(cs.Bytes(), testfont.Charstring(gid)) {
			t.Errorf("charstring %d = % x", gid, cs.Bytes())
		}
	}
}

func TestCFF2FDSelectFormat0(t *testing.T) {
	assoc := []int{0, 0, 1, 1, 0}
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   assoc,
		NumFDs:         2,
		FDSelectFormat: 0,
	})
	fds, ok := cff2.FDSelect.Unwrap()
	if !ok {
		t.Fatalf("no FDSelect parsed")
	}
	if fds.Format() != 0 || fds.Size() != 6 {
		t.Errorf("FDSelect format %d, size %d; want format 0 with 6 bytes", fds.Format(), fds.Size())
	}
	for gid, want := range assoc {
		fd, err := cff2.FDForGlyph(GlyphIndex(gid))
		if err != nil {
			t.Fatalf("glyph %d: %v", gid, err)
		}
		if fd != want {
			t.Errorf("glyph %d maps to font DICT %d, want %d", gid, fd, want)
		}
	}
	if _, err := cff2.FDForGlyph(5); err == nil {
		t.Errorf("expected an error for out-of-range glyph ID")
	}
}

func TestCFF2FDSelectFormat3(t *testing.T) {
	assoc := []int{0, 0, 1, 1, 0}
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   assoc,
		NumFDs:         2,
		FDSelectFormat: 3,
	})
	fds, ok := cff2.FDSelect.Unwrap()
	if !ok {
		t.Fatalf("no FDSelect parsed")
	}
	if fds.Format() != 3 {
		t.Errorf("FDSelect format = %d, want 3", fds.Format())
	}
	if fds.Size() != 3+3*3+2 {
		t.Errorf("FDSelect size = %d, want %d", fds.Size(), 3+3*3+2)
	}
	for gid, want := range assoc {
		fd, err := cff2.FDForGlyph(GlyphIndex(gid))
		if err != nil {
			t.Fatalf("glyph %d: %v", gid, err)
		}
		if fd != want {
			t.Errorf("glyph %d maps to font DICT %d, want %d", gid, fd, want)
		}
	}
}

func TestCFF2NoFDSelect(t *testing.T) {
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0, 0},
		NumFDs:         1,
		FDSelectFormat: -1,
	})
	if cff2.FDSelect.IsSome() {
		t.Fatalf("table without an FDSelect section reports one")
	}
	fd, err := cff2.FDForGlyph(2)
	if err != nil || fd != 0 {
		t.Errorf("glyph 2 maps to font DICT %d (%v), want 0", fd, err)
	}
}

func TestCFF2PrivateDicts(t *testing.T) {
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0, 1, 1, 0},
		NumFDs:         2,
		FDSelectFormat: 0,
	})
	if len(cff2.PrivDicts) != 2 {
		t.Fatalf("expected 2 private DICTs, have %d", len(cff2.PrivDicts))
	}
	pd := cff2.PrivDicts[0]
	if pd.SubrsOffset != 6 {
		t.Errorf("private DICT 0 subr offset = %d, want 6", pd.SubrsOffset)
	}
	subrs, ok := pd.LocalSubrs.Unwrap()
	if !ok {
		t.Fatalf("private DICT 0 has no local subr index")
	}
	if subrs.Count() != 1 {
		t.Errorf("local subr count = %d, want 1", subrs.Count())
	}
	if cff2.PrivDicts[1].LocalSubrs.IsSome() {
		t.Errorf("private DICT 1 must not have local subrs")
	}
	fd := cff2.FontDicts[0]
	if fd.PrivDictSize != 6 || fd.PrivDictSize != pd.Location().Size() {
		t.Errorf("font DICT 0 references a private DICT of %d bytes, span has %d",
			fd.PrivDictSize, pd.Location().Size())
	}
}

func TestCFF2VarStore(t *testing.T) {
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0},
		NumFDs:         1,
		FDSelectFormat: 0,
		WithVarStore:   true,
	})
	vs, ok := cff2.VarStore.Unwrap()
	if !ok {
		t.Fatalf("no variation store parsed")
	}
	if !bytes.Equal(vs.Bytes(), []byte{0, 4, 1, 2, 3, 4}) {
		t.Errorf("variation store span = % x", vs.Bytes())
	}
}

func TestCFF2HeaderValidation(t *testing.T) {
	good := testfont.BuildCFF2(testfont.CFF2Spec{
		Associations:   []int{0},
		NumFDs:         1,
		FDSelectFormat: -1,
	})
	t.Run("truncated header", func(t *testing.T) {
		if _, err := ParseCFF2(good[:4]); err == nil {
			t.Errorf("expected an error for a truncated header")
		}
	})
	t.Run("wrong major version", func(t *testing.T) {
		bad := append([]byte{}, good...)
		bad[0] = 1
		if _, err := ParseCFF2(bad); err == nil {
			t.Errorf("expected an error for major version 1")
		}
	})
	t.Run("top DICT exceeds table", func(t *testing.T) {
		bad := append([]byte{}, good...)
		bad[3], bad[4] = 0xff, 0xff
		if _, err := ParseCFF2(bad); err == nil {
			t.Errorf("expected an error for an oversized top DICT")
		}
	})
	t.Run("no CharStrings", func(t *testing.T) {
		// header + top DICT with an FDArray operator only + empty index
		b := []byte{2, 0, 5, 0, 7, 29, 0, 0, 0, 12, 12, 0x24, 0, 0, 0, 0}
		if _, err := ParseCFF2(b); err == nil {
			t.Errorf("expected an error for a top DICT without CharStrings")
		}
	})
}

func TestCFF2SentinelTolerance(t *testing.T) {
	// a carried-over FDSelect may keep a sentinel larger than the glyph
	// count; build a table whose format 3 sentinel exceeds numGlyphs
	b := testfont.BuildCFF2(testfont.CFF2Spec{
		Associations:   []int{0, 0, 1},
		NumFDs:         2,
		FDSelectFormat: 3,
	})
	cff2, err := ParseCFF2(b)
	if err != nil {
		t.Fatalf("cannot parse synthetic CFF2 table: %v", err)
	}
	fds, _ := cff2.FDSelect.Unwrap()
	loc := fds.Location().Bytes()
	// bump the sentinel beyond the glyph count in place
	loc[len(loc)-1] = 9
	if _, err = ParseCFF2(b); err != nil {
		t.Errorf("sentinel above glyph count must parse: %v", err)
	}
	loc[len(loc)-1] = 2 // below the glyph count
	if _, err = ParseCFF2(b); err == nil {
		t.Errorf("expected an error for a sentinel below the glyph count")
	}
}
