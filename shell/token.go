package shell

// tokenType classifies one lexical unit of a command line.
type tokenType int

const (
	tokenNone tokenType = iota
	tokenStr
	tokenNewLine
	tokenPipe
	tokenAnd
	tokenOr
	tokenOutNew
	tokenOutAppend
	tokenBackground
)

// token is one lexed unit; data holds the unescaped text for tokenStr.
type token struct {
	typ  tokenType
	data []byte
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// lexToken scans a single token from the start of data. It returns the
// number of bytes consumed and the token found; ok is false when data
// doesn't yet hold a complete token (quote left open, escape cut short,
// operator cut short, or an unterminated comment), in which case the
// caller should wait for more input rather than treat this as an error.
func lexToken(data []byte) (consumed int, tok token, ok bool) {
	pos := 0
	end := len(data)

	for pos < end && isSpace(data[pos]) {
		if data[pos] == '\n' {
			return pos + 1, token{typ: tokenNewLine}, true
		}
		pos++
	}

	var buf []byte
	var quote byte

	for pos < end {
		c := data[pos]

		switch c {
		case '\'', '"':
			if quote == 0 {
				quote = c
				pos++
				if pos == end {
					return 0, token{}, false
				}
				continue
			}
			if quote == c {
				quote = 0
				pos++
				continue
			}

		case '\\':
			if quote != '\'' {
				if quote == '"' {
					pos++
					if pos == end {
						return 0, token{}, false
					}
					switch data[pos] {
					case '\\', '"', '\n':
						buf = append(buf, data[pos])
						pos++
						continue
					}
					buf = append(buf, '\\')
					c = data[pos]
					break
				}
				pos++
				if pos == end {
					return 0, token{}, false
				}
				if data[pos] == '\n' {
					pos++
					continue
				}
				c = data[pos]
			}

		case '&', '|', '>':
			if quote == 0 {
				if len(buf) > 0 {
					return pos, token{typ: tokenStr, data: buf}, true
				}
				pos++
				if pos == end {
					return 0, token{}, false
				}
				doubled := data[pos] == c
				var typ tokenType
				switch {
				case c == '&' && doubled:
					typ = tokenAnd
				case c == '&':
					typ = tokenBackground
				case c == '|' && doubled:
					typ = tokenOr
				case c == '|':
					typ = tokenPipe
				case c == '>' && doubled:
					typ = tokenOutAppend
				default:
					typ = tokenOutNew
				}
				if doubled {
					pos++
				}
				return pos, token{typ: typ}, true
			}

		case ' ', '\t', '\r':
			if quote == 0 {
				return pos + 1, token{typ: tokenStr, data: buf}, true
			}

		case '\n':
			if quote == 0 {
				return pos, token{typ: tokenStr, data: buf}, true
			}

		case '#':
			if quote == 0 {
				if len(buf) > 0 {
					return pos, token{typ: tokenStr, data: buf}, true
				}
				pos++
				for pos < end {
					if data[pos] == '\n' {
						return pos + 1, token{typ: tokenNewLine}, true
					}
					pos++
				}
				return 0, token{}, false
			}
		}

		buf = append(buf, c)
		pos++
	}

	return 0, token{}, false
}
