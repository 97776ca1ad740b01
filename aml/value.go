package aml

import "errors"

// ValueKind selects which payload field of a Value is live.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInteger
	ValueString
	ValueBuffer
	ValuePackage
	ValueHandle
)

var (
	// ErrValueKind is returned when a Value is read through the wrong
	// payload for its kind.
	ErrValueKind = errors.New("aml: value kind mismatch")

	// ErrIndexRange is returned for a package element index at or past
	// the package length.
	ErrIndexRange = errors.New("aml: package index out of range")
)

// Value is a decoded AML object. Kind determines the live payload field.
// The typed accessors reject a mismatched kind instead of coercing.
type Value struct {
	Kind    ValueKind
	Integer uint64
	String  string
	Buffer  []byte
	Package []Value
	Handle  *Node
}

func IntegerValue(n uint64) Value { return Value{Kind: ValueInteger, Integer: n} }

func StringValue(s string) Value { return Value{Kind: ValueString, String: s} }

func BufferValue(b []byte) Value { return Value{Kind: ValueBuffer, Buffer: b} }

func PackageValue(elems ...Value) Value { return Value{Kind: ValuePackage, Package: elems} }

func HandleValue(n *Node) Value { return Value{Kind: ValueHandle, Handle: n} }

// Int returns the integer payload.
func (v Value) Int() (uint64, error) {
	if v.Kind != ValueInteger {
		return 0, ErrValueKind
	}

	return v.Integer, nil
}

// Bytes returns the buffer payload.
func (v Value) Bytes() ([]byte, error) {
	if v.Kind != ValueBuffer {
		return nil, ErrValueKind
	}

	return v.Buffer, nil
}

// Node returns the namespace handle payload.
func (v Value) Node() (*Node, error) {
	if v.Kind != ValueHandle {
		return nil, ErrValueKind
	}

	return v.Handle, nil
}

// Copy returns a deep copy of v. Buffer and package payloads are
// duplicated so the copy shares no backing memory with v.
func (v Value) Copy() Value {
	out := v

	if v.Buffer != nil {
		out.Buffer = append([]byte(nil), v.Buffer...)
	}

	if v.Package != nil {
		out.Package = make([]Value, len(v.Package))
		for i := range v.Package {
			out.Package[i] = v.Package[i].Copy()
		}
	}

	return out
}

// Move transfers the payload of v to the returned Value and resets v to
// the empty (None) Value, so buffer and package payloads keep a single
// owner.
func (v *Value) Move() Value {
	out := *v
	*v = Value{}

	return out
}

// Element copies the i-th element of a package value. This is the bounds
// check protecting every package walk above it.
func (v Value) Element(i int) (Value, error) {
	if v.Kind != ValuePackage {
		return Value{}, ErrValueKind
	}

	if i < 0 || i >= len(v.Package) {
		return Value{}, ErrIndexRange
	}

	return v.Package[i].Copy(), nil
}

// EISAID packs a seven character hardware ID of the form "UUUXXXX"
// (three uppercase letters, four hex digits) into its compressed EISA
// integer form, e.g. PNP0A03 -> 0x030AD041. Inputs of any other length
// are kept as plain strings, which is the documented escape for
// non-conforming IDs.
func EISAID(id string) Value {
	if len(id) != 7 {
		return StringValue(id)
	}

	out := (uint32(id[0]-0x40) & 0x1F) << 26
	out |= (uint32(id[1]-0x40) & 0x1F) << 21
	out |= (uint32(id[2]-0x40) & 0x1F) << 16
	out |= uint32(hexVal(id[3])) << 12
	out |= uint32(hexVal(id[4])) << 8
	out |= uint32(hexVal(id[5])) << 4
	out |= uint32(hexVal(id[6]))

	return IntegerValue(uint64(bswap32(out)))
}

func hexVal(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	}

	return 0
}

func bswap32(n uint32) uint32 {
	return n>>24 | n>>8&0xFF00 | n<<8&0xFF0000 | n<<24
}
