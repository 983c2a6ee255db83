package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrNotPDF is returned for input without a %PDF- header.
var ErrNotPDF = errors.New("pdf: missing %PDF- header")

type xrefEntry struct {
	offset int64
	// Objects stored in an object stream are addressed by the stream's
	// number and their index inside it.
	container int
	index     int
	packed    bool
}

// Document is a parsed PDF file. Objects are resolved lazily and cached.
// A Document is not safe for concurrent use.
type Document struct {
	data    []byte
	xref    map[int]xrefEntry
	trailer Dict
	cache   map[int]*Object
}

// Open reads and parses the PDF at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Load parses data as a PDF file.
func Load(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	d := &Document{
		data:  data,
		xref:  map[int]xrefEntry{},
		cache: map[int]*Object{},
	}
	start, err := d.startXRef()
	if err != nil {
		return nil, err
	}
	if err := d.readXRef(start, map[int64]bool{}); err != nil {
		return nil, err
	}
	return d, nil
}

// Version returns the header version, e.g. "1.4".
func (d *Document) Version() string {
	line := d.data[len("%PDF-"):]
	if i := bytes.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(string(line))
}

func (d *Document) startXRef() (int64, error) {
	tail := d.data
	if len(tail) > 2048 {
		tail = tail[len(tail)-2048:]
	}
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, errors.New("pdf: startxref not found")
	}
	l := newLexer(tail, i+len("startxref"))
	l.skipSpace()
	off, err := strconv.ParseInt(l.token(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("pdf: bad startxref: %w", err)
	}
	return off, nil
}

// readXRef loads the cross-reference section at off and every section it
// links to through /Prev. Entries read first win, since newer sections
// are reached first.
func (d *Document) readXRef(off int64, seen map[int64]bool) error {
	if off < 0 || off >= int64(len(d.data)) {
		return fmt.Errorf("pdf: xref offset %d out of range", off)
	}
	if seen[off] {
		return nil
	}
	seen[off] = true

	l := newLexer(d.data, int(off))
	l.skipSpace()
	var (
		trailer Dict
		err     error
	)
	if l.keyword("xref") {
		trailer, err = d.readXRefTable(l)
	} else {
		trailer, err = d.readXRefStream(l)
	}
	if err != nil {
		return err
	}
	if d.trailer == nil {
		d.trailer = trailer
	}
	if prev, ok := trailer.Int("Prev"); ok {
		return d.readXRef(prev, seen)
	}
	return nil
}

func (d *Document) readXRefTable(l *lexer) (Dict, error) {
	for {
		l.skipSpace()
		if l.keyword("trailer") {
			break
		}
		first, err1 := strconv.Atoi(l.token())
		l.skipSpace()
		count, err2 := strconv.Atoi(l.token())
		if err1 != nil || err2 != nil {
			return nil, errors.New("pdf: malformed xref table")
		}
		for i := 0; i < count; i++ {
			l.skipSpace()
			off, _ := strconv.ParseInt(l.token(), 10, 64)
			l.skipSpace()
			l.token()
			l.skipSpace()
			inUse := l.token() == "n"
			if _, ok := d.xref[first+i]; !ok && inUse {
				d.xref[first+i] = xrefEntry{offset: off}
			}
		}
	}
	t, err := l.object()
	if err != nil {
		return nil, err
	}
	if t.Kind != Dictionary {
		return nil, errors.New("pdf: trailer is not a dictionary")
	}
	return t.Dict, nil
}

func (d *Document) readXRefStream(l *lexer) (Dict, error) {
	if !l.objectHeader() {
		return nil, errors.New("pdf: xref section is neither a table nor a stream")
	}
	s, err := l.object()
	if err != nil {
		return nil, err
	}
	if s.Kind != Stream {
		return nil, errors.New("pdf: xref object is not a stream")
	}
	data, err := decodeStream(s)
	if err != nil {
		return nil, err
	}

	w, _ := s.Dict.Array("W")
	if len(w) != 3 {
		return nil, errors.New("pdf: xref stream without /W")
	}
	widths := [3]int{int(w[0].Int), int(w[1].Int), int(w[2].Int)}
	size := widths[0] + widths[1] + widths[2]
	if size == 0 {
		return nil, errors.New("pdf: xref stream with empty entries")
	}

	n, _ := s.Dict.Int("Size")
	index := []*Object{{Kind: Int}, {Kind: Int, Int: n}}
	if v, ok := s.Dict.Array("Index"); ok {
		index = v
	}
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first, count := int(index[i].Int), int(index[i+1].Int)
		for j := 0; j < count && pos+size <= len(data); j++ {
			row := data[pos : pos+size]
			pos += size
			kind := 1
			if widths[0] > 0 {
				kind = field(row[:widths[0]])
			}
			f2 := field(row[widths[0] : widths[0]+widths[1]])
			f3 := field(row[widths[0]+widths[1]:])
			if _, ok := d.xref[first+j]; ok {
				continue
			}
			switch kind {
			case 1:
				d.xref[first+j] = xrefEntry{offset: int64(f2)}
			case 2:
				d.xref[first+j] = xrefEntry{packed: true, container: f2, index: f3}
			}
		}
	}
	return s.Dict, nil
}

// field reads a big-endian xref stream field.
func field(b []byte) int {
	v := 0
	for _, c := range b {
		v = v<<8 | int(c)
	}
	return v
}

// Trailer returns the document trailer dictionary.
func (d *Document) Trailer() Dict {
	return d.trailer
}

// Resolve follows o if it is a reference and returns o otherwise. Dangling
// references resolve to the null object.
func (d *Document) Resolve(o *Object) *Object {
	for hops := 0; o != nil && o.Kind == Reference && hops < 8; hops++ {
		o = d.object(o.Ref.Num)
	}
	if o == nil {
		return null
	}
	return o
}

func (d *Document) object(num int) *Object {
	if o, ok := d.cache[num]; ok {
		return o
	}
	// Guard against self-referencing containers while loading.
	d.cache[num] = null

	e, ok := d.xref[num]
	var o *Object
	var err error
	switch {
	case !ok:
		o = null
	case e.packed:
		o, err = d.packedObject(e)
	default:
		o, err = d.objectAt(e.offset)
	}
	if err != nil || o == nil {
		o = null
	}
	d.cache[num] = o
	return o
}

func (d *Document) objectAt(off int64) (*Object, error) {
	if off < 0 || off >= int64(len(d.data)) {
		return nil, fmt.Errorf("pdf: object offset %d out of range", off)
	}
	l := newLexer(d.data, int(off))
	if !l.objectHeader() {
		return nil, fmt.Errorf("pdf: no object at offset %d", off)
	}
	o, err := l.object()
	if err != nil {
		return nil, err
	}
	if o.Kind == Stream {
		if ref := o.Dict["Length"]; ref != nil && ref.Kind == Reference {
			n := d.Resolve(ref)
			if n.Kind == Int && n.Int >= 0 && int(n.Int) <= len(o.Raw) {
				o.Raw = o.Raw[:n.Int]
			}
		}
	}
	return o, nil
}

func (d *Document) packedObject(e xrefEntry) (*Object, error) {
	s := d.object(e.container)
	if s.Kind != Stream {
		return nil, fmt.Errorf("pdf: object stream %d missing", e.container)
	}
	data, err := decodeStream(s)
	if err != nil {
		return nil, err
	}
	n, _ := s.Dict.Int("N")
	first, _ := s.Dict.Int("First")
	if e.index < 0 || int64(e.index) >= n {
		return nil, fmt.Errorf("pdf: index %d outside object stream %d", e.index, e.container)
	}

	l := newLexer(data, 0)
	var off int
	for i := 0; i <= e.index; i++ {
		l.skipSpace()
		l.token()
		l.skipSpace()
		off, err = strconv.Atoi(l.token())
		if err != nil {
			return nil, fmt.Errorf("pdf: bad object stream %d header", e.container)
		}
	}
	return newLexer(data, int(first)+off).object()
}

// Page is one leaf of the page tree together with the resources it
// inherits.
type Page struct {
	Index     int
	dict      Dict
	resources Dict
	doc       *Document
}

// Pages walks the page tree and returns the pages in order.
func (d *Document) Pages() ([]Page, error) {
	root := d.Resolve(d.trailer["Root"])
	if root.Kind != Dictionary {
		return nil, errors.New("pdf: no document catalog")
	}
	tree := d.Resolve(root.Dict["Pages"])
	if tree.Kind != Dictionary {
		return nil, errors.New("pdf: catalog without page tree")
	}
	var pages []Page
	d.walk(tree.Dict, nil, map[*Object]bool{}, &pages)
	return pages, nil
}

func (d *Document) walk(node, resources Dict, seen map[*Object]bool, pages *[]Page) {
	if r := d.Resolve(node["Resources"]); r.Kind == Dictionary {
		resources = r.Dict
	}
	if kind, _ := node.Name("Type"); kind == "Page" {
		*pages = append(*pages, Page{Index: len(*pages), dict: node, resources: resources, doc: d})
		return
	}
	kids := d.Resolve(node["Kids"])
	if kids.Kind != Array {
		return
	}
	for _, k := range kids.Array {
		kid := d.Resolve(k)
		if kid.Kind != Dictionary || seen[kid] {
			continue
		}
		seen[kid] = true
		d.walk(kid.Dict, resources, seen, pages)
	}
}

// NumPages returns the number of leaves in the page tree.
func (d *Document) NumPages() (int, error) {
	pages, err := d.Pages()
	return len(pages), err
}

// Size returns the page's media box width and height in points.
func (p Page) Size() (width, height float64) {
	box := p.doc.Resolve(p.dict["MediaBox"])
	if box.Kind != Array || len(box.Array) != 4 {
		return 0, 0
	}
	v := make([]float64, 4)
	for i, o := range box.Array {
		v[i] = p.doc.Resolve(o).Number()
	}
	return v[2] - v[0], v[3] - v[1]
}

// content returns the page's decoded content streams joined in order.
func (p Page) content() ([]byte, error) {
	c := p.doc.Resolve(p.dict["Contents"])
	parts := []*Object{c}
	if c.Kind == Array {
		parts = c.Array
	}
	var buf bytes.Buffer
	for _, part := range parts {
		s := p.doc.Resolve(part)
		if s.Kind != Stream {
			continue
		}
		data, err := decodeStream(s)
		if err != nil {
			return nil, fmt.Errorf("pdf: page %d contents: %w", p.Index+1, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
