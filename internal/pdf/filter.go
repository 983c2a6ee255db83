package pdf

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"errors"
	"fmt"
	"io"
)

// maxDecoded caps the size of one decoded stream.
const maxDecoded = 64 << 20

var errTooLarge = errors.New("pdf: decoded stream too large")

// decodeStream applies the stream's filter chain to its raw bytes.
// Image codecs are left encoded since only their presence matters here.
func decodeStream(s *Object) ([]byte, error) {
	filters, _ := s.Dict.Array("Filter")
	params, _ := s.Dict.Array("DecodeParms")

	data := s.Raw
	for i, f := range filters {
		if f.Kind != Name {
			continue
		}
		var p Dict
		if i < len(params) && params[i].Kind == Dictionary {
			p = params[i].Dict
		}
		var err error
		switch f.Name {
		case "FlateDecode", "Fl":
			data, err = inflate(data, p)
		case "ASCIIHexDecode", "AHx":
			if end := bytes.IndexByte(data, '>'); end >= 0 {
				data = data[:end]
			}
			data = hexDigits(data)
		case "ASCII85Decode", "A85":
			data, err = unascii85(data)
		case "DCTDecode", "DCT", "JPXDecode", "JBIG2Decode", "CCITTFaxDecode", "CCF":
			return data, nil
		default:
			err = fmt.Errorf("unsupported filter %s", f.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("pdf: %s: %w", f.Name, err)
		}
	}
	return data, nil
}

func inflate(data []byte, p Dict) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxDecoded+1))
	// A truncated or checksum-less stream still yields its inflated prefix.
	if err != nil && len(out) == 0 {
		return nil, err
	}
	if len(out) > maxDecoded {
		return nil, errTooLarge
	}
	if pred, _ := p.Int("Predictor"); pred >= 10 {
		return unpredictPNG(out, p)
	}
	return out, nil
}

func unascii85(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(bytes.TrimSpace(data), []byte("<~"))
	if end := bytes.Index(data, []byte("~>")); end >= 0 {
		data = data[:end]
	}
	out := make([]byte, 4*len(data)/5+4)
	n, _, err := ascii85.Decode(out, data, true)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// unpredictPNG reverses the per-row PNG filters used by xref and object
// streams.
func unpredictPNG(data []byte, p Dict) ([]byte, error) {
	colors, bits, columns := int64(1), int64(8), int64(1)
	if v, ok := p.Int("Colors"); ok && v > 0 {
		colors = v
	}
	if v, ok := p.Int("BitsPerComponent"); ok && v > 0 {
		bits = v
	}
	if v, ok := p.Int("Columns"); ok && v > 0 {
		columns = v
	}
	bpp := int((colors*bits + 7) / 8)
	row := int((colors*bits*columns + 7) / 8)
	if row == 0 || len(data)%(row+1) != 0 {
		return nil, fmt.Errorf("predictor rows do not divide %d bytes", len(data))
	}

	out := make([]byte, 0, len(data)/(row+1)*row)
	prev := make([]byte, row)
	for off := 0; off < len(data); off += row + 1 {
		kind, src := data[off], data[off+1:off+1+row]
		cur := make([]byte, row)
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left, upLeft = cur[i-bpp], prev[i-bpp]
			}
			up := prev[i]
			switch kind {
			case 0:
				cur[i] = src[i]
			case 1:
				cur[i] = src[i] + left
			case 2:
				cur[i] = src[i] + up
			case 3:
				cur[i] = src[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = src[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG filter %d", kind)
			}
		}
		out = append(out, cur...)
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
