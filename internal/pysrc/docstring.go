package pysrc

import (
	"strconv"
	"strings"
	"unicode"
)

const stringPrefixes = "rRbBuUfF"

var simpleEscapes = map[byte]byte{
	'\n': 0, '\\': '\\', '\'': '\'', '"': '"', 'a': '\a', 'b': '\b',
	'f': '\f', 'n': '\n', 'r': '\r', 't': '\t', 'v': '\v',
}

// stringLiteral returns the value of a string literal. Bytes and f-string
// literals have no string value and are reported as not ok
func stringLiteral(lit string) (string, bool) {
	body := strings.TrimLeft(lit, stringPrefixes)
	prefix := strings.ToLower(lit[:len(lit)-len(body)])
	if strings.ContainsAny(prefix, "bf") {
		return "", false
	}
	body = unquote(body)
	if strings.Contains(prefix, "r") {
		return body, true
	}
	return unescape(body), true
}

func unquote(lit string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(lit) >= 2*len(q) &&
			strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) {
			return lit[len(q) : len(lit)-len(q)]
		}
	}
	return lit
}

// unescape decodes the backslash escapes of a non-raw string body.
// Unrecognized or malformed escapes are kept as written
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		if r, ok := simpleEscapes[s[i+1]]; ok {
			// an escaped line break continues the line
			if r != 0 {
				sb.WriteByte(r)
			}
			i++
			continue
		}
		if r, n, ok := codePoint(s[i+1:]); ok {
			sb.WriteRune(r)
			i += n
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// codePoint decodes an octal, \x, \u, or \U escape from s, which starts
// just after the backslash. It returns the rune and the bytes consumed
func codePoint(s string) (rune, int, bool) {
	if isOctal(s[0]) {
		n := 1
		for n < 3 && n < len(s) && isOctal(s[n]) {
			n++
		}
		v, _ := strconv.ParseUint(s[:n], 8, 32)
		return rune(v), n, true
	}

	var digits int
	switch s[0] {
	case 'x':
		digits = 2
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		return 0, 0, false
	}
	if len(s) < digits+1 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[1:digits+1], 16, 32)
	if err != nil || v > unicode.MaxRune {
		return 0, 0, false
	}
	return rune(v), digits + 1, true
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}


// cleanDoc removes the uniform indentation of a docstring's continuation
// lines along with its leading and trailing blank lines
func cleanDoc(doc string) string {
	lines := strings.Split(
		strings.ReplaceAll(strings.ReplaceAll(doc, "\r\n", "\n"), "\t", "    "),
		"\n",
	)

	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}
		indent := len(line) - len(content)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	for i := 1; i < len(lines); i++ {
		if margin > 0 && len(lines[i]) >= margin {
			lines[i] = lines[i][margin:]
		} else {
			lines[i] = strings.TrimLeft(lines[i], " ")
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
