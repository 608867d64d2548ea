// Package buffer provides an immutable zero-copy view over a byte range.
// Every entity in the SIP message model holds Views into the captured
// payload instead of copies, so parsing millions of packets never
// duplicates packet data.
package buffer

import "errors"

// ErrInvalidNumber is returned by numeric accessors when the view does
// not contain a plain ASCII unsigned decimal, or when the value does
// not fit the target width.
var ErrInvalidNumber = errors.New("buffer: invalid numeric value")

// View is a window into a byte slice. The zero value is an empty view.
// A View never mutates or copies the bytes it wraps; slicing operations
// return new Views over the same backing array. Callers must not write
// through the wrapped slice after handing it to Wrap.
type View struct {
	data []byte
}

// Wrap creates a View over b without copying.
func Wrap(b []byte) View {
	return View{data: b}
}

// FromString creates a View over the bytes of s. This copies once (Go
// strings are immutable); it exists for tests and for constant lookups.
func FromString(s string) View {
	return View{data: []byte(s)}
}

// Len returns the number of bytes in the view.
func (v View) Len() int { return len(v.data) }

// IsEmpty reports whether the view has zero length.
func (v View) IsEmpty() bool { return len(v.data) == 0 }

// Byte returns the byte at index i. Panics if i is out of range, like
// an ordinary slice index.
func (v View) Byte(i int) byte { return v.data[i] }

// Slice returns the sub-view [lo, hi).
func (v View) Slice(lo, hi int) View { return View{data: v.data[lo:hi]} }

// From returns the sub-view starting at i.
func (v View) From(i int) View { return View{data: v.data[i:]} }

// To returns the sub-view ending before i.
func (v View) To(i int) View { return View{data: v.data[:i]} }

// Bytes exposes the underlying slice. The caller borrows it and must
// not modify or retain it past the life of the backing packet.
func (v View) Bytes() []byte { return v.data }

// String copies the view into a string. Intended for labels, log
// output and map keys, not for the parsing hot path.
func (v View) String() string { return string(v.data) }

// Equal reports byte equality with another view.
func (v View) Equal(o View) bool {
	if len(v.data) != len(o.data) {
		return false
	}
	for i := range v.data {
		if v.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// EqualString reports byte equality with s.
func (v View) EqualString(s string) bool {
	if len(v.data) != len(s) {
		return false
	}
	for i := range v.data {
		if v.data[i] != s[i] {
			return false
		}
	}
	return true
}

// EqualFold reports ASCII case-insensitive equality with s.
func (v View) EqualFold(s string) bool {
	if len(v.data) != len(s) {
		return false
	}
	for i := range v.data {
		if lowerASCII(v.data[i]) != lowerASCII(s[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether the view starts with s.
func (v View) HasPrefix(s string) bool {
	return len(v.data) >= len(s) && v.To(len(s)).EqualString(s)
}

// HasPrefixFold reports whether the view starts with s, ASCII
// case-insensitively.
func (v View) HasPrefixFold(s string) bool {
	return len(v.data) >= len(s) && v.To(len(s)).EqualFold(s)
}

// IndexByte returns the index of the first occurrence of c, or -1.
func (v View) IndexByte(c byte) int {
	for i, b := range v.data {
		if b == c {
			return i
		}
	}
	return -1
}

// Index returns the index of the first occurrence of sub, or -1.
func (v View) Index(sub string) int {
	if len(sub) == 0 {
		return 0
	}
	if len(sub) > len(v.data) {
		return -1
	}
	for i := 0; i+len(sub) <= len(v.data); i++ {
		if v.From(i).HasPrefix(sub) {
			return i
		}
	}
	return -1
}

// TrimSpace returns the view with leading and trailing SP/HT/CR/LF
// removed, adjusting the range only.
func (v View) TrimSpace() View {
	lo, hi := 0, len(v.data)
	for lo < hi && isSpace(v.data[lo]) {
		lo++
	}
	for hi > lo && isSpace(v.data[hi-1]) {
		hi--
	}
	return View{data: v.data[lo:hi]}
}

// Uint32 parses the view as an unsigned ASCII decimal fitting 32 bits.
func (v View) Uint32() (uint32, error) {
	if len(v.data) == 0 {
		return 0, ErrInvalidNumber
	}
	var n uint64
	for _, b := range v.data {
		if b < '0' || b > '9' {
			return 0, ErrInvalidNumber
		}
		n = n*10 + uint64(b-'0')
		if n > 0xFFFFFFFF {
			return 0, ErrInvalidNumber
		}
	}
	return uint32(n), nil
}

// Uint16 parses the view as an unsigned ASCII decimal fitting 16 bits.
func (v View) Uint16() (uint16, error) {
	n, err := v.Uint32()
	if err != nil || n > 0xFFFF {
		return 0, ErrInvalidNumber
	}
	return uint16(n), nil
}

// ToLower returns a lowercased copy as a string. Used for canonical
// header names and content-type registry keys.
func (v View) ToLower() string {
	b := make([]byte, len(v.data))
	for i := range v.data {
		b[i] = lowerASCII(v.data[i])
	}
	return string(b)
}

func lowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
