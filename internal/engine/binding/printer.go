package binding

import (
	"io"
	"strings"
)

// Printer writes prefixed lines. Copies share the underlying writer, so an
// indented copy can be handed to a nested emitter.
type Printer struct {
	out    *stickyWriter
	prefix string
}

// stickyWriter remembers the first write error and drops later writes.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) write(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}

func NewPrinter(w io.Writer) Printer {
	return Printer{out: &stickyWriter{w: w}}
}

// Indent returns a printer whose lines carry an extra prefix.
func (p Printer) Indent(s string) Printer {
	return Printer{out: p.out, prefix: p.prefix + s}
}

// Commented returns a printer that turns every line into a C++ comment.
func (p Printer) Commented() Printer {
	return p.Indent("// ")
}

func (p Printer) Line(s string) {
	p.out.write(p.prefix + s + "\n")
}

// Blank writes an empty line. Inside a commented block the marker is kept so
// the block stays visually contiguous.
func (p Printer) Blank() {
	p.out.write(strings.TrimRight(p.prefix, " ") + "\n")
}

func (p Printer) Err() error { return p.out.err }
