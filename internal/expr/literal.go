package expr

import (
	"strconv"
	"strings"

	"bcc/internal/catalog"
	"bcc/internal/quad"
)

// unescapeB expands B's '*'-escape sequences (B uses '*' where C uses '\',
// spec.md §4.C). The historical escape set is small: *n is newline, *t is
// tab, *0 is the null byte, *' and *" quote the literal's own delimiter,
// and ** is a literal asterisk. Anything else following '*' passes through
// unescaped rather than erroring, since the front end (out of scope here)
// already validated the lexical grammar.
func unescapeB(s string) string {
	if !strings.ContainsRune(s, '*') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '*' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '*':
			b.WriteByte('*')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// trimQuotes strips one layer of matching leading/trailing quote if
// present; the front end usually already strips these, but a defensive
// strip keeps this package correct even if it is handed the raw spelling.
func trimQuotes(s string, quote byte) string {
	if len(s) >= 2 && s[0] == quote && s[len(s)-1] == quote {
		return s[1 : len(s)-1]
	}
	return s
}

// parseNumberLiteral builds the Datum for a number_literal node's spelling,
// inferring int/long/float/double per catalog.InferNumberTag.
func parseNumberLiteral(spelling string) quad.Datum {
	tag := catalog.InferNumberTag(spelling)
	return quad.Datum{Value: spelling, Type: tag, Size: catalog.SizeOfNumber(spelling)}
}

// parseStringLiteral builds the Datum for a string_literal node's
// spelling: surrounding quotes stripped, '*'-escapes expanded.
func parseStringLiteral(spelling string) quad.Datum {
	content := unescapeB(trimQuotes(spelling, '"'))
	return quad.Datum{Value: content, Type: catalog.String, Size: catalog.SizeOfString(content)}
}

// parseConstantLiteral builds the Datum for a constant_literal node's
// spelling: a single-quoted character literal, reduced to its numeric
// code.
func parseConstantLiteral(spelling string) quad.Datum {
	content := unescapeB(trimQuotes(spelling, '\''))
	code := 0
	if len(content) > 0 {
		code = int(content[0])
	}
	return quad.Datum{Value: strconv.Itoa(code), Type: catalog.Byte, Size: 1}
}
