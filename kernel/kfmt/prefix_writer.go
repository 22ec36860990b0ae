package kfmt

import "io"

// PrefixWriter is an io.Writer that wraps another io.Writer and injects a
// prefix at the beginning of each line. It is used to tag driver and
// subsystem output (e.g. "[pic] ") without formatting the prefix into every
// Printf call.
type PrefixWriter struct {
	// A writer where all writes get sent to. If nil, writes go to the
	// early print buffer just like Printf output.
	Sink io.Writer

	// The prefix injected at the beginning of each line.
	Prefix []byte

	// midLine is set when the last write did not end with a line feed.
	midLine bool
}

// Write writes len(p) bytes from p to the underlying sink and returns back the
// number of bytes written. The injected prefix is not included in the
// returned byte count.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var written int

	for len(p) != 0 {
		if !w.midLine {
			w.sinkWrite(w.Prefix)
			w.midLine = true
		}

		// Emit everything up to and including the next line feed
		lineLen := len(p)
		for i, b := range p {
			if b == '\n' {
				lineLen = i + 1
				w.midLine = false
				break
			}
		}

		n, err := w.sinkWrite(p[:lineLen])
		written += n
		if err != nil {
			return written, err
		}

		p = p[lineLen:]
	}

	return written, nil
}

func (w *PrefixWriter) sinkWrite(p []byte) (int, error) {
	if w.Sink == nil {
		return earlyPrintBuffer.Write(p)
	}
	return w.Sink.Write(p)
}
