/**
 * scan the rendered-text buffer for the registered replacement keys
 */

package rtfproc

const (
	matchNone    = -1
	matchPartial = 0
	matchFull    = 1
)

/**
 * find the smallest text offset at which a key matches: offsets are scanned
 * ascending, keys in registry order, and the first success wins - a full
 * match reports MATCH, a key that ran out of buffered text while still
 * matching reports PARTIAL. Reporting PARTIAL eagerly, even when a shorter
 * key at a later offset could already complete, keeps a longer key that is
 * still in flight alive.
 *
 * When the success begins at offset > 0, the text before it can no longer
 * participate in any match: the corresponding raw bytes (located through
 * txtrawmap) are committed to the output and both prefixes are dropped so a
 * late candidate is not permanently blocked behind a dead one. That covers
 * the portmanteau case - with keys ATTORNEY and TORTLOCATION and input
 * ATTORTLOCATION, the byte that kills ATTOR leaves TORT... live at offset 2.
 */
func (p *RtfProcessor) patternMatch() int {
	if p.ti < 1 || p.attr().notxt {
		return matchPartial
	}

	for offset := 0; offset < p.ti; offset++ {
		for curkey := range p.srch {
			key := p.srch[curkey].Key
			if len(key) == 0 {
				continue
			}

			i := 0
			for i < len(key) && offset+i < p.ti && p.txt[offset+i] == key[i] {
				i++
			}

			if i == len(key) {
				// the entirety of the key matches at this offset
				if offset > 0 {
					p.releasePrefix(offset)
				}
				p.srchMatch = curkey
				p.outputMatch()
				p.resetRawBuffer()
				p.resetTxtBuffer()
				return matchFull
			}

			if offset+i == p.ti {
				// ran out of buffered text without a mismatch: the key could
				// still complete with more input
				if offset > 0 {
					p.releasePrefix(offset)
				}
				return matchPartial
			}
		}
	}

	p.outputRaw()
	p.resetRawBuffer()
	p.resetTxtBuffer()

	return matchNone
}

/**
 * commit everything before the text offset a late candidate begins at and
 * drop it from both buffers; the surviving txtrawmap entries are shifted so
 * they keep anchoring the surviving text to the surviving raw
 */
func (p *RtfProcessor) releasePrefix(offset int) {
	ramt := p.txtrawmap[offset]

	p.outputRawBy(ramt)
	p.resetRawBufferBy(ramt)
	p.resetTxtBufferBy(offset)

	for i := 0; i <= p.ti && i+offset < txtBufferSize; i++ {
		p.txtrawmap[i] = p.txtrawmap[i+offset] - ramt
	}
}
