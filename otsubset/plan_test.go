package otsubset

import (
	"errors"
	"testing"

	"github.com/ebassi/harfbuzz/internal/testfont"
)

func TestPlanSectionsContiguous(t *testing.T) {
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0, 1, 1, 0},
		NumFDs:         2,
		FDSelectFormat: 0,
		WithVarStore:   true,
	})
	plan, err := newCFF2Plan(cff2, glyphList(0, 2, 4))
	if err != nil {
		t.Fatalf("cannot plan subset: %v", err)
	}
	sections := plan.sections()
	pos := 0
	for _, s := range sections {
		if s.Offset != pos {
			t.Errorf("section %q starts at %d, previous section ended at %d", s.Name, s.Offset, pos)
		}
		pos += s.Size
	}
	if pos != plan.finalSize {
		t.Errorf("sections cover %d bytes, plan totals %d", pos, plan.finalSize)
	}
}

func TestPlanDropsFDSelectOperator(t *testing.T) {
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0, 1, 1, 0},
		NumFDs:         2,
		FDSelectFormat: 0,
	})
	full, err := newCFF2Plan(cff2, glyphList(0, 2, 4))
	if err != nil {
		t.Fatalf("cannot plan subset: %v", err)
	}
	collapsed, err := newCFF2Plan(cff2, glyphList(0, 1))
	if err != nil {
		t.Fatalf("cannot plan subset: %v", err)
	}
	if collapsed.fdSelect.IsSome() {
		t.Errorf("single-DICT subset must not plan an association section")
	}
	// the dropped operator is 7 bytes (29 + 4-byte operand + escaped op)
	if full.topDictSize-collapsed.topDictSize != 7 {
		t.Errorf("top DICT sizes %d and %d; dropping FDSelect must save 7 bytes",
			full.topDictSize, collapsed.topDictSize)
	}
}

func TestPlanPrivateDictsKeepOriginalIndices(t *testing.T) {
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0, 1, 1, 0},
		NumFDs:         2,
		FDSelectFormat: 0,
	})
	// only DICT 0 survives, but private DICTs are planned for both
	plan, err := newCFF2Plan(cff2, glyphList(0, 1))
	if err != nil {
		t.Fatalf("cannot plan subset: %v", err)
	}
	if len(plan.privDictInfos) != 2 {
		t.Fatalf("planned %d private DICTs, want 2", len(plan.privDictInfos))
	}
	// DICT 0 carries a local subr reference (re-encoded to 4 bytes) plus the
	// 2-byte BlueValues entry; DICT 1 is the BlueValues entry only
	if plan.privDictInfos[0].size != 6 {
		t.Errorf("private DICT 0 planned with %d bytes, want 6", plan.privDictInfos[0].size)
	}
	if plan.privDictInfos[1].size != 2 {
		t.Errorf("private DICT 1 planned with %d bytes, want 2", plan.privDictInfos[1].size)
	}
	if plan.privDictInfos[1].offset-plan.privDictInfos[0].offset != 6+8 {
		t.Errorf("private DICT 1 must follow DICT 0's local subr index")
	}
}

func TestPlanInvalidGlyph(t *testing.T) {
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0},
		NumFDs:         1,
		FDSelectFormat: -1,
	})
	if _, err := newCFF2Plan(cff2, glyphList(0, 7)); err == nil {
		t.Errorf("expected an error for a glyph ID beyond the source glyph count")
	}
}

func TestPlanEmptyGlyphList(t *testing.T) {
	cff2 := parseFixture(t, testfont.CFF2Spec{
		Associations:   []int{0, 0},
		NumFDs:         1,
		FDSelectFormat: -1,
	})
	if _, err := newCFF2Plan(cff2, nil); !errors.Is(err, errNoSurvivingFontDict) {
		t.Errorf("expected errNoSurvivingFontDict, have %v", err)
	}
}

func TestCheckedAdd(t *testing.T) {
	if _, err := checkedAdd(int(^uint(0)>>1), 1); err == nil {
		t.Errorf("expected an overflow error")
	}
	if v, err := checkedAdd(40, 2); err != nil || v != 42 {
		t.Errorf("checkedAdd(40, 2) = %d, %v", v, err)
	}
}
