/*
Package otsubset computes reduced variants of font outline tables that
contain only a caller-selected subset of glyphs.

Currently the package handles table 'CFF2'. Given a structural view over a
source table (see package ot) and an ordered list of glyph IDs to retain, it
produces a complete, self-consistent CFF2 table with all offsets, dictionary
tables and index tables recomputed. The position of a glyph ID in the subset
list becomes its new glyph ID.

Subsetting is a two-phase, single-threaded operation: a planning pass walks
the source view and computes the byte offset and size of every output
section; a write pass then emits all sections into a buffer of exactly the
planned size. CFF2's offsets are forward references, so nothing is written
before every size is known. Charstrings and subroutine indexes are copied
verbatim; no bytecode is interpreted.

One subsetting invocation owns all of its transient state exclusively;
the only shared object is the read-only source view, which concurrent
invocations may use without coordination.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package otsubset

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.otsubset'
func tracer() tracing.Trace {
	return tracing.Select("font.otsubset")
}
