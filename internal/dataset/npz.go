// Package dataset reads training artefacts saved by NumPy.
//
// Only what the recognizer needs is supported: one-dimensional (or flattened)
// arrays of fixed-width strings or integers, stored in .npy files inside an
// .npz archive.
package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var npyMagic = []byte("\x93NUMPY")

// ErrKeyNotFound is returned when the archive has no array with the requested name.
var ErrKeyNotFound = errors.New("array not found in archive")

// Limits on what a header may claim before anything is allocated.
const (
	maxHeaderLen  = 1 << 20
	maxArrayBytes = 1 << 30
)

// Labels is a decoded label array.
type Labels struct {
	Values []string
	// Numeric is set for integer dtypes; Values then hold decimal integers.
	Numeric bool
}

var (
	descrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']+)'`)
	fortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// header is the parsed dictionary at the start of an .npy file.
type header struct {
	order byte // '<', '>' or '|'
	kind  byte // 'U', 'S', 'i' or 'u'
	size  int  // item size as written in descr
	count int
}

// LoadLabels reads the array named key from the .npz archive at path.
// Integer labels are formatted in decimal.
func LoadLabels(path, key string) (Labels, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Labels{}, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer zr.Close()

	name := key + ".npy"
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return Labels{}, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		labels, err := ReadNPY(rc)
		if err != nil {
			return Labels{}, fmt.Errorf("read %s: %w", name, err)
		}
		return labels, nil
	}

	return Labels{}, fmt.Errorf("%w: %s in %s", ErrKeyNotFound, key, path)
}

// ReadNPY decodes a single .npy stream into strings.
func ReadNPY(r io.Reader) (Labels, error) {
	h, err := readHeader(r)
	if err != nil {
		return Labels{}, err
	}

	width, err := h.itemBytes()
	if err != nil {
		return Labels{}, err
	}
	if width == 0 || h.count > maxArrayBytes/width {
		return Labels{}, fmt.Errorf("array of %d items of %d bytes is too large", h.count, width)
	}

	data := make([]byte, width*h.count)
	if _, err := io.ReadFull(r, data); err != nil {
		return Labels{}, fmt.Errorf("read array data: %w", err)
	}

	out := make([]string, h.count)
	for i := range out {
		item := data[i*width : (i+1)*width]
		s, err := h.decode(item)
		if err != nil {
			return Labels{}, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = s
	}

	return Labels{Values: out, Numeric: h.kind == 'i' || h.kind == 'u'}, nil
}

func readHeader(r io.Reader) (header, error) {
	prefix := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return header{}, fmt.Errorf("read magic: %w", err)
	}
	if !bytes.Equal(prefix[:len(npyMagic)], npyMagic) {
		return header{}, errors.New("not an npy file")
	}

	major := prefix[len(npyMagic)]
	var headerLen int
	switch major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return header{}, fmt.Errorf("read header length: %w", err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return header{}, fmt.Errorf("read header length: %w", err)
		}
		if n > maxHeaderLen {
			return header{}, fmt.Errorf("header length %d too large", n)
		}
		headerLen = int(n)
	default:
		return header{}, fmt.Errorf("unsupported npy version %d", major)
	}

	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return header{}, fmt.Errorf("read header: %w", err)
	}

	return parseHeader(string(raw))
}

func parseHeader(dict string) (header, error) {
	m := descrRe.FindStringSubmatch(dict)
	if m == nil {
		return header{}, errors.New("header has no descr")
	}
	descr := m[1]
	if len(descr) < 3 {
		return header{}, fmt.Errorf("unsupported dtype %q", descr)
	}

	h := header{order: descr[0], kind: descr[1]}
	if h.order == '=' {
		h.order = '<'
	}
	size, err := strconv.Atoi(descr[2:])
	if err != nil || size <= 0 {
		return header{}, fmt.Errorf("unsupported dtype %q", descr)
	}
	h.size = size

	s := shapeRe.FindStringSubmatch(dict)
	if s == nil {
		return header{}, errors.New("header has no shape")
	}
	h.count = 1
	wide := 0
	for _, dim := range strings.Split(s[1], ",") {
		dim = strings.TrimSpace(dim)
		if dim == "" {
			continue
		}
		n, err := strconv.Atoi(dim)
		if err != nil || n < 0 {
			return header{}, fmt.Errorf("bad shape %q", s[1])
		}
		if n > 1 {
			wide++
		}
		if n > 0 && h.count > maxArrayBytes/n {
			return header{}, fmt.Errorf("shape %q is too large", s[1])
		}
		h.count *= n
	}

	// Fortran order only changes element order when more than one axis is wider than 1.
	if f := fortranRe.FindStringSubmatch(dict); f != nil && f[1] == "True" && wide > 1 {
		return header{}, errors.New("fortran-ordered multi-dimensional arrays are not supported")
	}

	return h, nil
}

// itemBytes returns the on-disk width of one element.
func (h header) itemBytes() (int, error) {
	switch h.kind {
	case 'U':
		return h.size * 4, nil
	case 'S':
		return h.size, nil
	case 'i', 'u':
		switch h.size {
		case 1, 2, 4, 8:
			return h.size, nil
		}
	}
	return 0, fmt.Errorf("unsupported dtype %c%c%d", h.order, h.kind, h.size)
}

func (h header) byteOrder() binary.ByteOrder {
	if h.order == '>' {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (h header) decode(item []byte) (string, error) {
	switch h.kind {
	case 'U':
		order := h.byteOrder()
		var sb strings.Builder
		for j := 0; j+4 <= len(item); j += 4 {
			r := rune(order.Uint32(item[j : j+4]))
			if r == 0 {
				break
			}
			if !utf8.ValidRune(r) {
				return "", fmt.Errorf("invalid code point %#x", r)
			}
			sb.WriteRune(r)
		}
		return sb.String(), nil
	case 'S':
		return string(bytes.TrimRight(item, "\x00")), nil
	case 'i':
		return strconv.FormatInt(h.signed(item), 10), nil
	case 'u':
		return strconv.FormatUint(h.unsigned(item), 10), nil
	}
	return "", fmt.Errorf("unsupported dtype kind %c", h.kind)
}

func (h header) unsigned(item []byte) uint64 {
	order := h.byteOrder()
	switch len(item) {
	case 1:
		return uint64(item[0])
	case 2:
		return uint64(order.Uint16(item))
	case 4:
		return uint64(order.Uint32(item))
	default:
		return order.Uint64(item)
	}
}

func (h header) signed(item []byte) int64 {
	u := h.unsigned(item)
	switch len(item) {
	case 1:
		return int64(int8(u))
	case 2:
		return int64(int16(u))
	case 4:
		return int64(int32(u))
	default:
		return int64(u)
	}
}
