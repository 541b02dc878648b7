package tplparser

import (
	"fmt"
	"strconv"
	"strings"
)

const tagSpace = " \t\r\n"

type segmentKind int

const (
	segText segmentKind = iota
	segOutput
	segStatement
)

// segment is either literal text or the body of a {{ }} / {% %} tag.
type segment struct {
	kind segmentKind
	text string
	line int
}

// scanSegments splits template source into literal text and tag bodies.
// Comments are dropped. Whitespace is only trimmed next to explicit
// "-" markers ({{- -}}, {%- -%}, {#- -#}).
func scanSegments(name, src string) ([]segment, error) {
	var segs []segment
	line := 1
	trimNext := false

	for len(src) > 0 {
		i := nextTag(src)
		text := src
		if i >= 0 {
			text = src[:i]
		}
		if trimNext {
			text = strings.TrimLeft(text, tagSpace)
			trimNext = false
		}
		if i < 0 {
			if text != "" {
				segs = append(segs, segment{kind: segText, text: text, line: line})
			}
			break
		}

		opener := src[i : i+2]
		tagLine := line + strings.Count(src[:i], "\n")
		start := i + 2
		if start < len(src) && src[start] == '-' {
			text = strings.TrimRight(text, tagSpace)
			start++
		}
		if text != "" {
			segs = append(segs, segment{kind: segText, text: text, line: line})
		}

		closer := closerFor(opener)
		end := findClose(src[start:], closer, opener != "{#")
		if end < 0 {
			return nil, &SyntaxError{Template: name, Line: tagLine, Msg: fmt.Sprintf("unclosed %q tag", opener)}
		}
		body := src[start : start+end]
		if strings.HasSuffix(body, "-") {
			body = body[:len(body)-1]
			trimNext = true
		}

		switch opener {
		case "{{":
			segs = append(segs, segment{kind: segOutput, text: body, line: tagLine})
		case "{%":
			segs = append(segs, segment{kind: segStatement, text: body, line: tagLine})
		}

		consumed := start + end + len(closer)
		line += strings.Count(src[:consumed], "\n")
		src = src[consumed:]
	}
	return segs, nil
}

func nextTag(src string) int {
	off := 0
	for {
		i := strings.IndexByte(src[off:], '{')
		if i < 0 || off+i+1 >= len(src) {
			return -1
		}
		switch src[off+i+1] {
		case '{', '%', '#':
			return off + i
		}
		off += i + 1
	}
}

func closerFor(opener string) string {
	switch opener {
	case "{{":
		return "}}"
	case "{%":
		return "%}"
	default:
		return "#}"
	}
}

// findClose returns the offset of closer in s, skipping quoted strings when
// quoted is set.
func findClose(s, closer string, quoted bool) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		if quoted && (c == '\'' || c == '"') {
			quote = c
			continue
		}
		if strings.HasPrefix(s[i:], closer) {
			return i
		}
	}
	return -1
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokString
	tokInt
	tokOp
)

type token struct {
	kind tokenKind
	val  string
	num  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of tag"
	case tokString:
		return strconv.Quote(t.val)
	case tokInt:
		return strconv.Itoa(t.num)
	default:
		return fmt.Sprintf("%q", t.val)
	}
}

func (t token) is(kind tokenKind, val string) bool {
	return t.kind == kind && t.val == val
}

// tokenize splits a tag body into expression tokens.
func tokenize(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case isNameStart(c):
			j := i + 1
			for j < len(src) && isNamePart(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokName, val: src[i:j]})
			i = j
		case isDigit(c) || (c == '-' && i+1 < len(src) && isDigit(src[i+1])):
			j := i + 1
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			n, err := strconv.Atoi(src[i:j])
			if err != nil {
				return nil, fmt.Errorf("invalid integer %q", src[i:j])
			}
			toks = append(toks, token{kind: tokInt, val: src[i:j], num: n})
			i = j
		case c == '\'' || c == '"':
			s, n, err := scanString(src[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, val: s})
			i += n
		case strings.HasPrefix(src[i:], "==") || strings.HasPrefix(src[i:], "!="):
			toks = append(toks, token{kind: tokOp, val: src[i : i+2]})
			i += 2
		case strings.IndexByte("+.[]():", c) >= 0:
			toks = append(toks, token{kind: tokOp, val: string(c)})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

// scanString decodes a quoted literal at the start of s and returns the
// value and the number of bytes consumed.
func scanString(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == quote {
			return b.String(), i + 1, nil
		}
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '\'', '"':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return "", 0, fmt.Errorf("unterminated string literal")
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
