/**
 * translate code-page encoded bytes to UTF-8
 *
 * RTF carries legacy 8-bit text as \'hh escapes whose meaning depends on the
 * character set of the active font (\fcharsetN), on an explicit \cchsN, or on
 * the document default. Single-byte pages map one escape to one code point;
 * the CJK pages are double-byte, so a lead byte has to be carried in the
 * attribute scope until the trail byte arrives.
 */

package rtfproc

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

type decodeStatus int

const (
	decodeOk decodeStatus = iota
	decodePartial
	decodeNone
	decodeUnsupported
)

/**
 * map \fcharsetN / \cchsN character set numbers to Windows code page numbers
 */
var rtfCharsetCodepageMap map[int]int = map[int]int{
	0:   1252,  // ANSI: Western Europe
	1:   1252,  //*Default
	2:   1252,  //*Symbol
	77:  10000, //*also [MacRoman]: Macintosh
	128: 932,   //*or [Shift_JIS]?: Japanese
	129: 949,   //*also [UHC]: Korean (Hangul)
	130: 1361,  //*also [JOHAB]: Korean (Johab)
	134: 936,   //*or [GB2312]?: Simplified Chinese
	136: 950,   //*or [BIG5]?: Traditional Chinese
	161: 1253,  // Greek
	162: 1254,  // Turkish (latin 5)
	163: 1258,  // Vietnamese
	177: 1255,  // Hebrew
	178: 1256,  // Simplified Arabic
	179: 1256,  //*Traditional Arabic
	180: 1256,  //*Arabic User
	181: 1255,  //*Hebrew User
	186: 1257,  // Baltic
	204: 1251,  // Russian (Cyrillic)
	222: 874,   // Thai
	238: 1250,  // Eastern European (latin 2)
	254: 437,   //*also [IBM437][437]: PC437
	255: 437,   //*OEM still PC437
}

func codepageFromCharset(charset int) int {
	if cp, ok := rtfCharsetCodepageMap[charset]; ok {
		return cp
	}
	return 0
}

func codepageDecoder(cp int) *encoding.Decoder {
	switch cp {
	case 437: // United States IBM
		return charmap.CodePage437.NewDecoder()
	case 708: // also [ISO-8859-6][ARABIC] Arabic
		return charmap.ISO8859_6.NewDecoder()
	case 819: // Windows 3.1 (US and Western Europe)
		return charmap.ISO8859_1.NewDecoder()
	case 850: // IBM multilingual
		return charmap.CodePage850.NewDecoder()
	case 852: // Eastern European
		return charmap.CodePage852.NewDecoder()
	case 860: // Portuguese
		return charmap.CodePage860.NewDecoder()
	case 862: // Hebrew
		return charmap.CodePage862.NewDecoder()
	case 863: // French Canadian
		return charmap.CodePage863.NewDecoder()
	case 865: // Norwegian
		return charmap.CodePage865.NewDecoder()
	case 866: // Soviet Union
		return charmap.CodePage866.NewDecoder()
	case 874: // Thai
		return charmap.Windows874.NewDecoder()
	case 932: // Japanese
		return japanese.ShiftJIS.NewDecoder()
	case 936: // Simplified Chinese
		return simplifiedchinese.GBK.NewDecoder()
	case 949: // Korean
		return korean.EUCKR.NewDecoder()
	case 950: // Traditional Chinese
		return traditionalchinese.Big5.NewDecoder()
	case 1250: // Windows 3.1 (Eastern European)
		return charmap.Windows1250.NewDecoder()
	case 1251: // Windows 3.1 (Cyrillic)
		return charmap.Windows1251.NewDecoder()
	case 1252: // Western European
		return charmap.Windows1252.NewDecoder()
	case 1253: // Greek
		return charmap.Windows1253.NewDecoder()
	case 1254: // Turkish
		return charmap.Windows1254.NewDecoder()
	case 1255: // Hebrew
		return charmap.Windows1255.NewDecoder()
	case 1256: // Arabic
		return charmap.Windows1256.NewDecoder()
	case 1257: // Baltic
		return charmap.Windows1257.NewDecoder()
	case 1258: // Vietnamese
		return charmap.Windows1258.NewDecoder()
	case 1361: // Johab
		return korean.EUCKR.NewDecoder()
	case 10000: // [MacRoman]: Macintosh
		return charmap.Macintosh.NewDecoder()
	}
	return nil
}

/**
 * double-byte code pages need their lead byte held back until the trail
 * byte shows up in the next \'hh escape
 */
func codepageIsDoubleByte(cp int) bool {
	switch cp {
	case 932, 936, 949, 950, 1361:
		return true
	}
	return false
}

func codepageIsLeadByte(cp int, b byte) bool {
	switch cp {
	case 932:
		return (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xFC)
	case 936, 949, 950, 1361:
		return b >= 0x81 && b <= 0xFE
	}
	return false
}

/**
 * decode one \'hh byte under the given code page
 *
 * xtra is the carry slot for a double-byte sequence in progress; on a lead
 * byte it is set and decodePartial is returned with no output. A byte with
 * no mapping in the page yields decodeNone, an unknown page decodeUnsupported.
 */
func decodeCodepageByte(cp int, b byte, xtra *byte) (string, decodeStatus) {
	dec := codepageDecoder(cp)
	if dec == nil {
		return "", decodeUnsupported
	}

	if *xtra != 0 {
		pair := []byte{*xtra, b}
		*xtra = 0
		out, err := dec.Bytes(pair)
		if err != nil || strings.ContainsRune(string(out), utf8.RuneError) {
			return "", decodeNone
		}
		return string(out), decodeOk
	}

	if codepageIsDoubleByte(cp) && codepageIsLeadByte(cp, b) {
		*xtra = b
		return "", decodePartial
	}

	out, err := dec.Bytes([]byte{b})
	if err != nil || strings.ContainsRune(string(out), utf8.RuneError) {
		return "", decodeNone
	}
	return string(out), decodeOk
}
