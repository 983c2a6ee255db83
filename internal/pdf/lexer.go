package pdf

import (
	"bytes"
	"errors"
	"strconv"
)

// maxDepth bounds array and dictionary nesting.
const maxDepth = 64

var errTooDeep = errors.New("pdf: objects nested too deeply")

// lexer reads PDF objects from a byte slice. It serves file bodies,
// decoded object streams and page content streams alike.
type lexer struct {
	data  []byte
	pos   int
	depth int
}

func newLexer(data []byte, pos int) *lexer {
	return &lexer{data: data, pos: pos}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.data)
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// skipSpace skips whitespace and comments.
func (l *lexer) skipSpace() {
	for !l.eof() {
		c := l.data[l.pos]
		switch {
		case c == '%':
			for !l.eof() && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case isSpace(c):
			l.pos++
		default:
			return
		}
	}
}

// keyword consumes kw if it is next in the input.
func (l *lexer) keyword(kw string) bool {
	if !bytes.HasPrefix(l.data[l.pos:], []byte(kw)) {
		return false
	}
	end := l.pos + len(kw)
	if end < len(l.data) && !isSpace(l.data[end]) && !isDelimiter(l.data[end]) {
		return false
	}
	l.pos = end
	return true
}

// token reads a run of regular characters.
func (l *lexer) token() string {
	start := l.pos
	for !l.eof() && !isSpace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// objectHeader consumes "N G obj".
func (l *lexer) objectHeader() bool {
	l.skipSpace()
	if _, err := strconv.Atoi(l.token()); err != nil {
		return false
	}
	l.skipSpace()
	if _, err := strconv.Atoi(l.token()); err != nil {
		return false
	}
	l.skipSpace()
	return l.keyword("obj")
}

// object parses the next object. A dictionary followed by the stream
// keyword yields a Stream object.
func (l *lexer) object() (*Object, error) {
	if l.depth > maxDepth {
		return nil, errTooDeep
	}
	l.skipSpace()
	if l.eof() {
		return null, nil
	}

	switch c := l.data[l.pos]; {
	case c == '(':
		return &Object{Kind: String, Str: l.literal()}, nil
	case c == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
		return l.dict()
	case c == '<':
		return &Object{Kind: String, Str: l.hex()}, nil
	case c == '/':
		return &Object{Kind: Name, Name: l.name()}, nil
	case c == '[':
		return l.array()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return l.number(), nil
	case l.keyword("true"):
		return &Object{Kind: Bool, Bool: true}, nil
	case l.keyword("false"):
		return &Object{Kind: Bool}, nil
	case l.keyword("null"):
		return null, nil
	}
	// Stray keyword or delimiter.
	if tok := l.token(); tok == "" {
		l.pos++
	}
	return null, nil
}

func (l *lexer) literal() []byte {
	l.pos++
	var buf bytes.Buffer
	for open := 1; !l.eof(); {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			open++
		case ')':
			open--
			if open == 0 {
				return buf.Bytes()
			}
		case '\\':
			l.escape(&buf)
			continue
		}
		buf.WriteByte(c)
	}
	return buf.Bytes()
}

func (l *lexer) escape(buf *bytes.Buffer) {
	if l.eof() {
		return
	}
	c := l.data[l.pos]
	l.pos++
	switch c {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case '\r':
		if !l.eof() && l.data[l.pos] == '\n' {
			l.pos++
		}
	case '\n':
	default:
		if c < '0' || c > '7' {
			buf.WriteByte(c)
			return
		}
		v := int(c - '0')
		for i := 0; i < 2 && !l.eof(); i++ {
			d := l.data[l.pos]
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + int(d-'0')
			l.pos++
		}
		buf.WriteByte(byte(v))
	}
}

func unhex(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// hexDigits decodes hex digit pairs, skipping anything else. An odd final
// digit is padded with zero.
func hexDigits(src []byte) []byte {
	out := make([]byte, 0, len(src)/2)
	var hi byte
	half := false
	for _, c := range src {
		v, ok := unhex(c)
		if !ok {
			continue
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out
}

func (l *lexer) hex() []byte {
	l.pos++
	end := bytes.IndexByte(l.data[l.pos:], '>')
	if end < 0 {
		end = len(l.data) - l.pos
	}
	out := hexDigits(l.data[l.pos : l.pos+end])
	l.pos += end + 1
	return out
}

func (l *lexer) name() string {
	l.pos++
	raw := l.token()
	if !bytes.ContainsRune([]byte(raw), '#') {
		return raw
	}
	var buf bytes.Buffer
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			hi, ok1 := unhex(raw[i+1])
			lo, ok2 := unhex(raw[i+2])
			if ok1 && ok2 {
				buf.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		buf.WriteByte(raw[i])
	}
	return buf.String()
}

func (l *lexer) array() (*Object, error) {
	l.pos++
	l.depth++
	defer func() { l.depth-- }()

	arr := &Object{Kind: Array}
	for {
		l.skipSpace()
		if l.eof() {
			return arr, nil
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return arr, nil
		}
		o, err := l.object()
		if err != nil {
			return nil, err
		}
		arr.Array = append(arr.Array, o)
	}
}

func (l *lexer) dict() (*Object, error) {
	l.pos += 2
	l.depth++
	defer func() { l.depth-- }()

	d := Dict{}
	for {
		l.skipSpace()
		if l.eof() {
			break
		}
		if bytes.HasPrefix(l.data[l.pos:], []byte(">>")) {
			l.pos += 2
			break
		}
		if l.data[l.pos] != '/' {
			l.pos++
			continue
		}
		key := l.name()
		v, err := l.object()
		if err != nil {
			return nil, err
		}
		d[key] = v
	}

	save := l.pos
	l.skipSpace()
	if !l.keyword("stream") {
		l.pos = save
		return &Object{Kind: Dictionary, Dict: d}, nil
	}
	if !l.eof() && l.data[l.pos] == '\r' {
		l.pos++
	}
	if !l.eof() && l.data[l.pos] == '\n' {
		l.pos++
	}
	start := l.pos
	end := -1
	if n, ok := d.Int("Length"); ok && n >= 0 && start+int(n) <= len(l.data) {
		end = start + int(n)
	}
	if end < 0 {
		i := bytes.Index(l.data[start:], []byte("endstream"))
		if i < 0 {
			i = len(l.data) - start
		}
		end = start + i
	}
	l.pos = end
	l.skipSpace()
	l.keyword("endstream")
	return &Object{Kind: Stream, Dict: d, Raw: l.data[start:end]}, nil
}

// number parses an integer, a real or an "N G R" reference.
func (l *lexer) number() *Object {
	tok := l.token()
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(tok, 64)
		if ferr != nil {
			return null
		}
		return &Object{Kind: Real, Real: f}
	}

	save := l.pos
	l.skipSpace()
	if gen, err := strconv.Atoi(l.token()); err == nil {
		l.skipSpace()
		if l.keyword("R") {
			return &Object{Kind: Reference, Ref: Ref{Num: int(n), Gen: gen}}
		}
	}
	l.pos = save
	return &Object{Kind: Int, Int: n}
}
