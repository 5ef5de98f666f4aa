/*
Package ot provides read-only access to binary OpenType font tables,
with a focus on the CFF2 (Compact Font Format 2) outline table.

Package `ot` will not interpret glyph outlines or charstring bytecode, but
rather expose the structure of a table to the client: dictionaries, index
structures, byte spans. From this point of view, `ot` is a low-level package.
Charstrings are treated as opaque byte spans throughout.

The main entry points are `Parse`, which reads the table directory of a
complete font file, and `ParseCFF2`, which builds a structural view over a
single CFF2 table. The view is immutable after parsing and may be read by
multiple goroutines concurrently. Subsetting of CFF2 tables is homed in a
sister package.

# Status

Work in progress. Handling fonts is fiddly and fonts have become complex
software applications in their own right. Font collections and the CFF
version 1 table are not supported yet.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.ot'
func tracer() tracing.Trace {
	return tracing.Select("font.ot")
}
