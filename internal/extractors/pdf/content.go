package pdf

import (
	"strconv"
	"strings"
)

// textFromContentStream walks the operators of a page content stream and
// collects the strings shown by the text operators (Tj, TJ, ' and ").
// Line moves (T*, ', " and Td/TD with a vertical offset) become newlines.
// String bytes are read as Latin-1.
func textFromContentStream(data []byte) string {
	var (
		out      strings.Builder
		strs     []string
		operands []string
	)

	newline := func() {
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
	}
	flush := func() {
		for _, s := range strs {
			out.WriteString(s)
		}
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case isSpace(c):
			i++

		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}

		case c == '(':
			s, next := readLiteral(data, i)
			strs = append(strs, s)
			i = next

		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			// Inline dictionaries (marked content properties) carry no text.
			i = skipDict(data, i)

		case c == '<':
			s, next := readHex(data, i)
			strs = append(strs, s)
			i = next

		case c == '[' || c == ']':
			i++

		default:
			tok, next := readToken(data, i)
			i = next
			if isNumber(tok) || strings.HasPrefix(tok, "/") {
				operands = append(operands, tok)
				continue
			}

			switch tok {
			case "Tj", "TJ":
				flush()
			case "'", `"`:
				newline()
				flush()
			case "T*":
				newline()
			case "Td", "TD":
				if len(operands) >= 2 {
					if ty, err := strconv.ParseFloat(operands[len(operands)-1], 64); err == nil && ty != 0 {
						newline()
					}
				}
			case "BI":
				i = skipInlineImage(data, i)
			}
			strs = strs[:0]
			operands = operands[:0]
		}
	}

	return out.String()
}

// readLiteral parses a (...) string starting at data[start] == '('.
func readLiteral(data []byte, start int) (string, int) {
	var b strings.Builder
	depth := 0
	i := start
	for i < len(data) {
		c := data[i]
		switch c {
		case '(':
			if depth > 0 {
				b.WriteByte(c)
			}
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return latin1(b.String()), i
			}
			b.WriteByte(c)
		case '\\':
			i++
			if i >= len(data) {
				break
			}
			e := data[i]
			switch e {
			case 'n':
				b.WriteByte('\n')
				i++
			case 'r':
				b.WriteByte('\r')
				i++
			case 't':
				b.WriteByte('\t')
				i++
			case 'b':
				b.WriteByte('\b')
				i++
			case 'f':
				b.WriteByte('\f')
				i++
			case '\r':
				i++
				if i < len(data) && data[i] == '\n' {
					i++
				}
			case '\n':
				i++
			default:
				if e >= '0' && e <= '7' {
					val := 0
					for n := 0; n < 3 && i < len(data) && data[i] >= '0' && data[i] <= '7'; n++ {
						val = val*8 + int(data[i]-'0')
						i++
					}
					b.WriteByte(byte(val))
				} else {
					b.WriteByte(e)
					i++
				}
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return latin1(b.String()), i
}

// readHex parses a <...> hex string starting at data[start] == '<'.
func readHex(data []byte, start int) (string, int) {
	var digits []byte
	i := start + 1
	for i < len(data) && data[i] != '>' {
		if h := data[i]; isHexDigit(h) {
			digits = append(digits, h)
		}
		i++
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	raw := make([]byte, 0, len(digits)/2)
	for j := 0; j+1 < len(digits); j += 2 {
		v, _ := strconv.ParseUint(string(digits[j:j+2]), 16, 8)
		raw = append(raw, byte(v))
	}
	return latin1(string(raw)), i + 1
}

func skipDict(data []byte, start int) int {
	depth := 0
	i := start
	for i+1 < len(data) {
		switch {
		case data[i] == '<' && data[i+1] == '<':
			depth++
			i += 2
		case data[i] == '>' && data[i+1] == '>':
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return len(data)
}

// skipInlineImage jumps past the binary data of a BI ... ID ... EI block.
func skipInlineImage(data []byte, start int) int {
	s := string(data[start:])
	idx := strings.Index(s, "EI")
	if idx < 0 {
		return len(data)
	}
	return start + idx + 2
}

func readToken(data []byte, start int) (string, int) {
	i := start
	if data[i] == '/' {
		i++
	}
	for i < len(data) && !isSpace(data[i]) && !isDelimiter(data[i]) {
		i++
	}
	if i == start {
		// A stray delimiter.
		return string(data[start]), start + 1
	}
	return string(data[start:i]), i
}

func latin1(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	runes := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		runes[i] = rune(s[i])
	}
	return string(runes)
}

func isNumber(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
