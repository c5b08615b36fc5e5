/**
 * tokenize one RTF control word or control symbol
 */

package rtfproc

import "io"

/**
 * read the command that follows a backslash into the cmd buffer
 *
 * Control symbols are one of { } \ ~ _ - *; \' is followed by exactly two
 * hex digits; a bare LF, a bare CR or a CRLF pair is a newline command. Any
 * other non-alphanumeric byte after the backslash is an invalid command.
 * Control words are a run of [A-Za-z0-9-]: a whitespace terminator belongs
 * to the command and is kept in cmd, anything else is pushed back for the
 * next read. Running out of input in the middle of any of these forms is a
 * fatal I/O error.
 */
func (p *RtfProcessor) readCommand() {
	p.resetCmdBuffer()
	p.addToCmd('\\')

	c, err := p.fin.ReadByte()
	if err != nil {
		p.fail(io.ErrUnexpectedEOF)
		return
	}

	switch c {
	case '{', '}', '\\', '~', '_', '-', '*', '\n':
		p.addToCmd(c)

	case '\r':
		p.addToCmd(c)

		// absorb an immediately following LF so CRLF platforms don't
		// produce a double newline
		c, err = p.fin.ReadByte()
		if err != nil {
			p.fail(io.ErrUnexpectedEOF)
			return
		}
		if c == '\n' {
			p.addToCmd(c)
		} else {
			p.fin.UnreadByte()
		}

	case '\'':
		p.addToCmd(c)

		c, err = p.fin.ReadByte()
		if err != nil {
			p.fail(io.ErrUnexpectedEOF)
			return
		}
		p.addToCmd(c)

		c, err = p.fin.ReadByte()
		if err != nil {
			p.fail(io.ErrUnexpectedEOF)
			return
		}
		p.addToCmd(c)

	default:
		if !ByteIsAlnum(c) {
			p.fail(ErrInvalidCommand)
			return
		}
		p.addToCmd(c)

		// greedily consume valid command bytes
		for {
			c, err = p.fin.ReadByte()
			if err != nil {
				p.fail(io.ErrUnexpectedEOF)
				return
			}
			if ByteIsAlnum(c) || c == '-' {
				p.addToCmd(c)
				continue
			}
			break
		}

		// Stopped getting valid command bytes. A whitespace terminator is
		// part of the command; anything else is probably the backslash of
		// the next command and goes back on the input stream.
		if ByteIsSpace(c) {
			p.addToCmd(c)
		} else {
			p.fin.UnreadByte()
		}
	}
}
