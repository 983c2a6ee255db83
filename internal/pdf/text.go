package pdf

import (
	"bytes"
	"math"
	"sort"
	"strings"
)

// operators scans a content stream and calls fn for each operator with
// the operands that precede it. Inline image data is skipped.
func operators(data []byte, fn func(op string, args []*Object)) {
	l := newLexer(data, 0)
	var args []*Object
	for {
		l.skipSpace()
		if l.eof() {
			return
		}
		switch c := l.data[l.pos]; {
		case c == '(' || c == '<' || c == '/' || c == '[' || c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			o, err := l.object()
			if err != nil {
				return
			}
			args = append(args, o)
			continue
		case c == ']' || c == '>' || c == ')' || c == '{' || c == '}':
			l.pos++
			continue
		}
		op := l.token()
		if op == "" {
			l.pos++
			continue
		}
		if op == "ID" {
			end := bytes.Index(l.data[l.pos:], []byte("EI"))
			if end < 0 {
				return
			}
			l.pos += end + 2
		}
		if op == "true" || op == "false" || op == "null" {
			args = append(args, &Object{Kind: Bool, Bool: op == "true"})
			continue
		}
		fn(op, args)
		args = args[:0]
	}
}

// matrix is an affine transform [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m followed by n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) point(x, y float64) (float64, float64) {
	return x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]
}

func translate(x, y float64) matrix {
	return matrix{1, 0, 0, 1, x, y}
}

func toMatrix(args []*Object) (matrix, bool) {
	if len(args) < 6 {
		return identity, false
	}
	var m matrix
	for i := range m {
		m[i] = args[len(args)-6+i].Number()
	}
	return m, true
}

// span is a run of text shown at one position, in default user space.
type span struct {
	x0, x1, y float64
	size      float64
	text      string
}

type graphicsState struct {
	ctm      matrix
	font     *font
	size     float64
	charSp   float64
	wordSp   float64
	scale    float64
	leading  float64
	rise     float64
	tm, tlm  matrix
	resource Dict
}

// textReader interprets content streams of one page.
type textReader struct {
	doc   *Document
	fonts map[*Object]*font
	spans []span
}

const maxFormDepth = 8

func (r *textReader) run(data []byte, gs graphicsState, depth int) {
	var stack []graphicsState
	operators(data, func(op string, args []*Object) {
		switch op {
		case "q":
			stack = append(stack, gs)
		case "Q":
			if n := len(stack); n > 0 {
				gs, stack = stack[n-1], stack[:n-1]
			}
		case "cm":
			if m, ok := toMatrix(args); ok {
				gs.ctm = m.mul(gs.ctm)
			}
		case "BT":
			gs.tm, gs.tlm = identity, identity
		case "Tf":
			if len(args) >= 2 {
				gs.font = r.font(gs.resource, args[0].Name)
				gs.size = args[1].Number()
			}
		case "Tc":
			if len(args) > 0 {
				gs.charSp = args[0].Number()
			}
		case "Tw":
			if len(args) > 0 {
				gs.wordSp = args[0].Number()
			}
		case "Tz":
			if len(args) > 0 {
				gs.scale = args[0].Number() / 100
			}
		case "TL":
			if len(args) > 0 {
				gs.leading = args[0].Number()
			}
		case "Ts":
			if len(args) > 0 {
				gs.rise = args[0].Number()
			}
		case "Td", "TD":
			if len(args) >= 2 {
				tx, ty := args[0].Number(), args[1].Number()
				if op == "TD" {
					gs.leading = -ty
				}
				gs.tlm = translate(tx, ty).mul(gs.tlm)
				gs.tm = gs.tlm
			}
		case "Tm":
			if m, ok := toMatrix(args); ok {
				gs.tm, gs.tlm = m, m
			}
		case "T*":
			gs.nextLine()
		case "Tj":
			if len(args) > 0 {
				r.show(&gs, []*Object{args[0]})
			}
		case "'":
			gs.nextLine()
			if len(args) > 0 {
				r.show(&gs, []*Object{args[0]})
			}
		case `"`:
			if len(args) >= 3 {
				gs.wordSp, gs.charSp = args[0].Number(), args[1].Number()
				gs.nextLine()
				r.show(&gs, []*Object{args[2]})
			}
		case "TJ":
			if len(args) > 0 && args[0].Kind == Array {
				r.show(&gs, args[0].Array)
			}
		case "Do":
			if len(args) > 0 && depth < maxFormDepth {
				r.form(gs, args[0].Name, depth)
			}
		}
	})
}

func (gs *graphicsState) nextLine() {
	gs.tlm = translate(0, -gs.leading).mul(gs.tlm)
	gs.tm = gs.tlm
}

// show places the strings of a Tj or TJ operand and advances the text
// matrix. Large negative adjustments inside TJ read as word breaks.
func (r *textReader) show(gs *graphicsState, parts []*Object) {
	if gs.font == nil {
		gs.font = &font{base: namedEncoding("WinAnsiEncoding", nil), widths: map[uint32]float64{}, dw: 500}
	}
	start := gs.tm.mul(gs.ctm)
	x0, y := start.point(0, gs.rise)
	size := gs.size * math.Hypot(start[2], start[3])

	var text strings.Builder
	for _, p := range parts {
		switch p.Kind {
		case String:
			for _, g := range gs.font.glyphs(p.Str) {
				text.WriteString(g.text)
				adv := gs.font.width(g.code)/1000*gs.size + gs.charSp
				if g.bytes == 1 && g.code == ' ' {
					adv += gs.wordSp
				}
				gs.tm = translate(adv*gs.scale, 0).mul(gs.tm)
			}
		case Int, Real:
			shift := -p.Number() / 1000 * gs.size
			if shift > gs.size/4 {
				text.WriteByte(' ')
			}
			gs.tm = translate(shift*gs.scale, 0).mul(gs.tm)
		}
	}
	x1, _ := gs.tm.mul(gs.ctm).point(0, gs.rise)
	if text.Len() == 0 {
		return
	}
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	r.spans = append(r.spans, span{x0: x0, x1: x1, y: y, size: size, text: text.String()})
}

func (r *textReader) font(resources Dict, name string) *font {
	fonts := r.doc.Resolve(resources["Font"])
	if fonts.Kind != Dictionary {
		return nil
	}
	o := r.doc.Resolve(fonts.Dict[name])
	if f, ok := r.fonts[o]; ok {
		return f
	}
	f := r.doc.loadFont(o)
	r.fonts[o] = f
	return f
}

// form runs a form XObject with the current state.
func (r *textReader) form(gs graphicsState, name string, depth int) {
	xobjects := r.doc.Resolve(gs.resource["XObject"])
	if xobjects.Kind != Dictionary {
		return
	}
	x := r.doc.Resolve(xobjects.Dict[name])
	if x.Kind != Stream {
		return
	}
	if subtype, _ := x.Dict.Name("Subtype"); subtype != "Form" {
		return
	}
	data, err := decodeStream(x)
	if err != nil {
		return
	}
	if m, ok := toMatrix(r.doc.Resolve(x.Dict["Matrix"]).Array); ok {
		gs.ctm = m.mul(gs.ctm)
	}
	if res := r.doc.Resolve(x.Dict["Resources"]); res.Kind == Dictionary {
		gs.resource = res.Dict
	}
	r.run(data, gs, depth+1)
}

// Text returns the page text in reading order: lines from top to bottom,
// spans left to right, with a space where spans are visibly apart.
func (p Page) Text() (string, error) {
	data, err := p.content()
	if err != nil {
		return "", err
	}
	r := &textReader{doc: p.doc, fonts: map[*Object]*font{}}
	r.run(data, graphicsState{ctm: identity, scale: 1, resource: p.resources}, 0)
	return layoutText(r.spans), nil
}

// Text extracts the text of every page.
func (d *Document) Text() ([]string, error) {
	pages, err := d.Pages()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(pages))
	for i, p := range pages {
		if out[i], err = p.Text(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type line struct {
	y     float64
	spans []span
}

func layoutText(spans []span) string {
	var lines []*line
	for _, s := range spans {
		tol := math.Max(s.size/2, 1)
		var hit *line
		for _, l := range lines {
			if math.Abs(l.y-s.y) < tol {
				hit = l
				break
			}
		}
		if hit == nil {
			hit = &line{y: s.y}
			lines = append(lines, hit)
		}
		hit.spans = append(hit.spans, s)
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		sort.SliceStable(l.spans, func(a, c int) bool { return l.spans[a].x0 < l.spans[c].x0 })
		var row strings.Builder
		for j, s := range l.spans {
			if j > 0 && s.x0-l.spans[j-1].x1 > s.size/4 {
				row.WriteByte(' ')
			}
			row.WriteString(s.text)
		}
		b.WriteString(strings.Join(strings.Fields(row.String()), " "))
	}
	return b.String()
}
