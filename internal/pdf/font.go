package pdf

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// glyph is one character code of a shown string.
type glyph struct {
	code  uint32
	bytes int
	text  string
}

// font maps the character codes of a font to text and glyph widths.
type font struct {
	// composite fonts use two-byte codes.
	composite bool
	toUnicode map[uint32]string
	base      *charmap.Charmap
	diffs     map[uint32]rune
	widths    map[uint32]float64
	dw        float64
}

func (d *Document) loadFont(o *Object) *font {
	f := &font{base: charmap.Windows1252, widths: map[uint32]float64{}, dw: 1000}
	if o.Kind != Dictionary {
		return f
	}
	dict := o.Dict
	subtype, _ := dict.Name("Subtype")
	f.composite = subtype == "Type0"

	switch enc := d.Resolve(dict["Encoding"]); enc.Kind {
	case Name:
		f.base = namedEncoding(enc.Name, f.base)
	case Dictionary:
		if base, ok := enc.Dict.Name("BaseEncoding"); ok {
			f.base = namedEncoding(base, f.base)
		}
		f.diffs = d.differences(enc.Dict["Differences"])
	}

	if cmap := d.Resolve(dict["ToUnicode"]); cmap.Kind == Stream {
		if data, err := decodeStream(cmap); err == nil {
			f.toUnicode = parseCMap(data)
		}
	}

	if f.composite {
		desc := d.Resolve(dict["DescendantFonts"])
		if desc.Kind == Array && len(desc.Array) > 0 {
			if cid := d.Resolve(desc.Array[0]); cid.Kind == Dictionary {
				d.cidWidths(f, cid.Dict)
			}
		}
		return f
	}
	f.dw = 500
	first, _ := dict.Int("FirstChar")
	if w := d.Resolve(dict["Widths"]); w.Kind == Array {
		for i, v := range w.Array {
			f.widths[uint32(first)+uint32(i)] = d.Resolve(v).Number()
		}
	}
	return f
}

func namedEncoding(name string, fallback *charmap.Charmap) *charmap.Charmap {
	switch name {
	case "WinAnsiEncoding":
		return charmap.Windows1252
	case "MacRomanEncoding":
		return charmap.Macintosh
	}
	return fallback
}

func (d *Document) differences(o *Object) map[uint32]rune {
	arr := d.Resolve(o)
	if arr.Kind != Array {
		return nil
	}
	out := map[uint32]rune{}
	var code uint32
	for _, v := range arr.Array {
		switch v.Kind {
		case Int:
			code = uint32(v.Int)
		case Name:
			if r, ok := glyphRune(v.Name); ok {
				out[code] = r
			}
			code++
		}
	}
	return out
}

// glyphNames covers the names Differences arrays commonly use beyond
// single letters and uniXXXX forms.
var glyphNames = map[string]rune{
	"space": ' ', "period": '.', "comma": ',', "colon": ':', "semicolon": ';',
	"hyphen": '-', "slash": '/', "percent": '%', "numbersign": '#',
	"parenleft": '(', "parenright": ')', "ampersand": '&', "at": '@',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"Euro": '€', "endash": '–', "emdash": '—', "quoteright": '’',
}

func glyphRune(name string) (rune, bool) {
	if len(name) == 1 {
		return rune(name[0]), true
	}
	if r, ok := glyphNames[name]; ok {
		return r, true
	}
	if hex, ok := strings.CutPrefix(name, "uni"); ok && len(hex) == 4 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return rune(v), true
		}
	}
	return 0, false
}

// cidWidths reads /DW and the /W array of a descendant CID font. /W mixes
// "c [w1 w2 ...]" and "cfirst clast w" entries.
func (d *Document) cidWidths(f *font, cid Dict) {
	if dw, ok := cid.Int("DW"); ok {
		f.dw = float64(dw)
	}
	w := d.Resolve(cid["W"])
	if w.Kind != Array {
		return
	}
	for i := 0; i < len(w.Array); {
		start := d.Resolve(w.Array[i])
		if i+1 >= len(w.Array) {
			return
		}
		next := d.Resolve(w.Array[i+1])
		if next.Kind == Array {
			for j, v := range next.Array {
				f.widths[uint32(start.Int)+uint32(j)] = d.Resolve(v).Number()
			}
			i += 2
			continue
		}
		if i+2 >= len(w.Array) {
			return
		}
		width := d.Resolve(w.Array[i+2]).Number()
		for c := start.Int; c <= next.Int && c-start.Int < 1<<16; c++ {
			f.widths[uint32(c)] = width
		}
		i += 3
	}
}

// glyphs splits a shown string into character codes.
func (f *font) glyphs(s []byte) []glyph {
	n := 1
	if f.composite {
		n = 2
	}
	out := make([]glyph, 0, len(s)/n)
	for i := 0; i < len(s); i += n {
		end := min(i+n, len(s))
		var code uint32
		for _, b := range s[i:end] {
			code = code<<8 | uint32(b)
		}
		out = append(out, glyph{code: code, bytes: end - i, text: f.text(code)})
	}
	return out
}

func (f *font) text(code uint32) string {
	if s, ok := f.toUnicode[code]; ok {
		return s
	}
	if r, ok := f.diffs[code]; ok {
		return string(r)
	}
	if f.composite || code > 0xff {
		return ""
	}
	return string(f.base.DecodeByte(byte(code)))
}

func (f *font) width(code uint32) float64 {
	if w, ok := f.widths[code]; ok {
		return w
	}
	return f.dw
}

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

func decodeUTF16(b []byte) string {
	s, err := utf16be.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(s)
}

func codeOf(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// parseCMap reads the bfchar and bfrange sections of a ToUnicode CMap.
func parseCMap(data []byte) map[uint32]string {
	m := map[uint32]string{}
	operators(data, func(op string, args []*Object) {
		switch op {
		case "endbfchar":
			for i := 0; i+1 < len(args); i += 2 {
				m[codeOf(args[i].Str)] = decodeUTF16(args[i+1].Str)
			}
		case "endbfrange":
			for i := 0; i+2 < len(args); i += 3 {
				lo, hi, dst := codeOf(args[i].Str), codeOf(args[i+1].Str), args[i+2]
				if hi < lo || hi-lo > 1<<16 {
					continue
				}
				if dst.Kind == Array {
					for j, v := range dst.Array {
						m[lo+uint32(j)] = decodeUTF16(v.Str)
					}
					continue
				}
				base := []rune(decodeUTF16(dst.Str))
				if len(base) == 0 {
					continue
				}
				last := len(base) - 1
				for k := uint32(0); k <= hi-lo; k++ {
					out := append([]rune(nil), base...)
					out[last] += rune(k)
					m[lo+k] = string(out)
				}
			}
		}
	})
	return m
}
