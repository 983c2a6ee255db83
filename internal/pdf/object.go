package pdf

// Kind identifies the type of a PDF object.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Real
	String
	Name
	Array
	Dictionary
	Stream
	Reference
)

// Object is one parsed PDF object. Only the fields matching Kind are set.
type Object struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Real  float64
	Str   []byte
	Name  string
	Array []*Object
	Dict  Dict
	// Raw holds the undecoded bytes of a stream.
	Raw []byte
	Ref Ref
}

var null = &Object{Kind: Null}

// Ref addresses an indirect object.
type Ref struct {
	Num int
	Gen int
}

// Number returns the numeric value of an integer or real object.
func (o *Object) Number() float64 {
	if o == nil {
		return 0
	}
	switch o.Kind {
	case Int:
		return float64(o.Int)
	case Real:
		return o.Real
	}
	return 0
}

// Dict is a PDF dictionary keyed by name without the leading slash.
type Dict map[string]*Object

// Int returns the integer stored under key. Reals are truncated.
func (d Dict) Int(key string) (int64, bool) {
	o, ok := d[key]
	if !ok {
		return 0, false
	}
	switch o.Kind {
	case Int:
		return o.Int, true
	case Real:
		return int64(o.Real), true
	}
	return 0, false
}

// Name returns the name stored under key.
func (d Dict) Name(key string) (string, bool) {
	o, ok := d[key]
	if !ok || o.Kind != Name {
		return "", false
	}
	return o.Name, true
}

// Array returns the array stored under key. A single direct value is
// returned as a one-element array.
func (d Dict) Array(key string) ([]*Object, bool) {
	o, ok := d[key]
	if !ok {
		return nil, false
	}
	if o.Kind == Array {
		return o.Array, true
	}
	return []*Object{o}, true
}
