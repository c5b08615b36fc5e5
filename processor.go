/**
 * streaming RTF search-and-replace processor
 *
 * The processor pulls the input one byte at a time, reconstructs the
 * rendered text (scope stack, control words, Unicode and code-page escapes,
 * font table, skippable groups), matches the registered replacement keys
 * against that text, and writes the output so that markup outside a matched
 * span is preserved byte-for-byte.
 */

package rtfproc

import (
	"bufio"
	"errors"
	"io"
	"log"
)

var (
	ErrInvalidCommand = errors.New("rtfproc: invalid command format")
	ErrCmdOverflow    = errors.New("rtfproc: command buffer overflow")
)

// diagf reports soft diagnostics (unknown code page, full font table);
// overridable so embedders can route or silence them
var diagf = func(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// ProcessEvent tells a RunProcess callback where in the run it is invoked
type ProcessEvent int

const (
	ProcStart ProcessEvent = -1
	ProcStep  ProcessEvent = 0
	ProcEnd   ProcessEvent = 1
)

type ProcessFunc func(p *RtfProcessor, passthru interface{}, event ProcessEvent)

type RtfProcessor struct {
	fin  *bufio.Reader
	fout *bufio.Writer
	ftxt *bufio.Writer

	ri  int
	ti  int
	ci  int
	raw [rawBufferSize]byte
	txt [txtBufferSize]byte
	cmd [cmdBufferSize]byte

	// smallest raw position of the bytes that produced each txt byte
	txtrawmap [txtBufferSize]int

	// a text position has been reserved but not yet filled
	deferred bool

	fonts            rtfFontTable
	defaultFont      int
	documentCodepage int

	highSurrogate int

	srch      []Replacement
	srchMatch int

	attrStack []rtfAttr

	fatalErr error
}

/**
 * create a new processor over the given streams
 *
 * fout receives the transformed document and ftxt the extracted rendered
 * text; either may be nil. The streams are borrowed for the lifetime of a
 * run and wrapped in fully-buffered readers/writers.
 */
func NewProcessor(fin io.Reader, fout io.Writer, ftxt io.Writer) *RtfProcessor {
	p := &RtfProcessor{
		fin:              bufio.NewReaderSize(fin, 1<<16),
		defaultFont:      -1,
		documentCodepage: 1252,
	}

	if fout != nil {
		p.fout = bufio.NewWriterSize(fout, 1<<16)
	}
	if ftxt != nil {
		p.ftxt = bufio.NewWriterSize(ftxt, 1<<16)
	}

	// permanent base frame; a default of 1 should be assumed if no \uc
	// keyword has been seen in the current or outer scopes
	p.attrStack = make([]rtfAttr, 1, 16)
	p.attrStack[0].uc = 1
	p.attrStack[0].fonttblDefnIdx = -1

	return p
}

// fail latches the first fatal error; the main loop observes it after the
// current iteration finishes
func (p *RtfProcessor) fail(err error) {
	if p.fatalErr == nil {
		p.fatalErr = err
	}
}

// Text exposes the in-flight rendered-text buffer to RunProcess callbacks.
// The slice aliases processor state and is only valid within the callback.
func (p *RtfProcessor) Text() []byte { return p.txt[:p.ti] }

// Raw exposes the uncommitted raw buffer to RunProcess callbacks.
func (p *RtfProcessor) Raw() []byte { return p.raw[:p.ri] }

/**
 * run the replacement pipeline to end-of-input
 */
func (p *RtfProcessor) RunReplace() error {
	for {
		c, err := p.fin.ReadByte()
		if err != nil {
			if err != io.EOF {
				p.fail(err)
			}
			break
		}

		switch c {
		case '{', '}':
			p.dispatchScope(c)
		case '\\':
			p.dispatchCommand()
		default:
			p.dispatchText(c)
		}

		p.patternMatch()

		if p.fatalErr != nil {
			p.outputRaw()
			p.flushStreams()
			return p.fatalErr
		}
	}

	p.outputRaw()

	if err := p.flushStreams(); err != nil {
		return err
	}
	return p.fatalErr
}

/**
 * run the same dispatch loop without pattern matching, invoking fn after
 * every iteration; the END event fires on every exit path
 */
func (p *RtfProcessor) RunProcess(fn ProcessFunc, passthru interface{}) error {
	fn(p, passthru, ProcStart)

	for {
		c, err := p.fin.ReadByte()
		if err != nil {
			if err != io.EOF {
				p.fail(err)
			}
			break
		}

		switch c {
		case '{', '}':
			p.dispatchScope(c)
		case '\\':
			p.dispatchCommand()
		default:
			p.dispatchText(c)
		}

		fn(p, passthru, ProcStep)

		if p.fatalErr != nil {
			fn(p, passthru, ProcEnd)
			p.flushStreams()
			return p.fatalErr
		}
	}

	fn(p, passthru, ProcEnd)

	if err := p.flushStreams(); err != nil {
		return err
	}
	return p.fatalErr
}

func (p *RtfProcessor) flushStreams() error {
	var first error
	if p.fout != nil {
		if err := p.fout.Flush(); err != nil {
			first = err
		}
	}
	if p.ftxt != nil {
		if err := p.ftxt.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (p *RtfProcessor) dispatchScope(c byte) {
	p.addToRaw(c)
	if c == '{' {
		p.pushAttr()
	} else {
		p.popAttr()
	}
}

func (p *RtfProcessor) dispatchCommand() {
	p.readCommand()

	if !p.attr().nocmd {
		p.procCommand()
	}

	// ----- RAW/TXT BUFFER COORDINATION -----
	// The command's bytes reach the raw buffer only after its effect on the
	// text is known; that way the raw flush triggered by the first text byte
	// never leaks the RTF code that produced the text itself.
	p.addCmdToRaw()
}

func (p *RtfProcessor) dispatchText(c byte) {
	if p.attr().notxt {
		p.addToRaw(c)
		return
	}

	// newlines and carriage returns are RTF code formatting, not document
	// text; tabs pass through, vertical tabs read as spaces
	switch c {
	case '\r', '\n':
	case '\t':
		p.addToTxt(0x09)
	case '\v':
		p.addToTxt(' ')
	default:
		p.addToTxt(c)
	}
	p.addToRaw(c)
}
