package aml

import (
	"bytes"
	"strings"
)

// Resource descriptor lead bytes understood by the builder.
const (
	IRQNoFlagsDesc AMLOp = 0x22
	IRQDesc        AMLOp = 0x23
	IOPortDesc     AMLOp = 0x47
	EndTag         AMLOp = 0x79
	Mem32FixedDesc AMLOp = 0x86
	ExtIRQDesc     AMLOp = 0x89
)

// AML builds an AML byte stream. It is used to synthesize
// firmware-shaped buffers for tests and tooling; it is not a compiler.
type AML struct {
	buf bytes.Buffer
}

func NewAML() *AML {
	return &AML{
		buf: bytes.Buffer{},
	}
}

func (a *AML) ToBytes() []byte {
	return a.buf.Bytes()
}

func (a *AML) Zero() *AML {
	a.buf.WriteByte(byte(OpZero))

	return a
}

func (a *AML) One() *AML {
	a.buf.WriteByte(byte(OpOne))

	return a
}

func (a *AML) Ones() *AML {
	a.buf.WriteByte(byte(OpOnes))

	return a
}

// Path encodes a dotted name string. Segments are padded to the fixed
// four character name width; multi-segment paths get the dual or multi
// name prefix. Returns nil on a malformed path.
func (a *AML) Path(str string) *AML {
	if strings.HasPrefix(str, "\\") {
		a.buf.WriteByte(RootChar)

		str = strings.Trim(str, "\\")
	}

	segs := strings.Split(str, ".")

	switch {
	case len(segs) == 2:
		a.buf.WriteByte(byte(OpDualNamePrefix))
	case len(segs) > 2:
		a.buf.WriteByte(byte(OpMultiNamePrefix))
		a.buf.WriteByte(byte(len(segs)))
	}

	for _, seg := range segs {
		if len(seg) == 0 || len(seg) > 4 {
			return nil
		}

		for i := 0; i < len(seg); i++ {
			if !IsNameChar(seg[i]) {
				return nil
			}
		}

		a.buf.WriteString(seg)

		for i := len(seg); i < 4; i++ {
			a.buf.WriteByte('_')
		}
	}

	return a
}

func (a *AML) Bytes(b byte) *AML {
	a.buf.WriteByte(byte(OpBytePrefix))
	a.buf.WriteByte(b)

	return a
}

func (a *AML) Word(w uint16) *AML {
	a.buf.WriteByte(byte(OpWordPrefix))
	a.rawWord(w)

	return a
}

func (a *AML) DWord(dw uint32) *AML {
	a.buf.WriteByte(byte(OpDWordPrefix))
	a.rawDWord(dw)

	return a
}

func (a *AML) QWord(qw uint64) *AML {
	a.buf.WriteByte(byte(OpQWordPrefix))
	a.rawDWord(uint32(qw))
	a.rawDWord(uint32(qw >> 32))

	return a
}

func (a *AML) String(str string) *AML {
	a.buf.WriteByte(byte(OpString))
	a.buf.WriteString(str)
	a.buf.WriteByte(0x0)

	return a
}

// EISAName emits the packed EISA form of a hardware ID as a DWord.
// Returns nil for IDs that do not pack.
func (a *AML) EISAName(str string) *AML {
	v := EISAID(str)
	if v.Kind != ValueInteger {
		return nil
	}

	return a.DWord(uint32(v.Integer))
}

func (a *AML) Name(path string, inner *AML) *AML {
	a.buf.WriteByte(byte(OpName))
	a.Path(path)
	a.buf.Write(inner.ToBytes())

	return a
}

func (a *AML) Device(path string, children *AML) *AML {
	aml := NewAML()
	aml.Path(path)

	aml.buf.Write(children.ToBytes())

	pkglen := CalcPkgLength(uint32(aml.buf.Len()), true)

	a.buf.WriteByte(byte(OpExtPrefix))
	a.buf.WriteByte(byte(OpDevice))
	a.buf.Write(pkglen)
	a.buf.Write(aml.ToBytes())

	return a
}

func (a *AML) Method(path string, args uint8, serialize bool, children *AML) *AML {
	amlbuf := NewAML()

	amlbuf.Path(path)

	flags := args & 0x7

	if serialize {
		flags |= 1 << 3
	}

	amlbuf.buf.WriteByte(flags)
	amlbuf.buf.Write(children.ToBytes())

	pkglen := CalcPkgLength(uint32(amlbuf.buf.Len()), true)

	a.buf.WriteByte(byte(OpMethod))
	a.buf.Write(pkglen)
	a.buf.Write(amlbuf.ToBytes())

	return a
}

func (a *AML) Return(op *AML) *AML {
	a.buf.WriteByte(byte(OpReturn))
	a.buf.Write(op.ToBytes())

	return a
}

// ResourceTemplate wraps inner resource descriptors in a Buffer object,
// appending the end tag descriptor. A zero checksum byte means "do not
// verify".
func (a *AML) ResourceTemplate(inner *AML) *AML {
	var data bytes.Buffer

	data.Write(inner.ToBytes())
	data.WriteByte(byte(EndTag))
	data.WriteByte(0x0)

	body := NewAML()
	body.DWord(uint32(data.Len()))
	body.buf.Write(data.Bytes())

	a.buf.WriteByte(byte(OpBuffer))
	a.buf.Write(CalcPkgLength(uint32(body.buf.Len()), true))
	a.buf.Write(body.ToBytes())

	return a
}

// EndTagged appends the end tag descriptor without any Buffer wrapping,
// yielding the raw template shape a _CRS evaluation hands back.
func (a *AML) EndTagged() *AML {
	a.buf.WriteByte(byte(EndTag))
	a.buf.WriteByte(0x0)

	return a
}

// IRQNoFlags emits the two-byte small IRQ descriptor form, leaving the
// flags at their defaults (edge-triggered, active-high, exclusive).
func (a *AML) IRQNoFlags(mask uint16) *AML {
	a.buf.WriteByte(byte(IRQNoFlagsDesc))
	a.rawWord(mask)

	return a
}

// IRQ emits a small IRQ descriptor for the given line mask with an
// explicit flag byte.
func (a *AML) IRQ(mask uint16, edgetrig, activelow, shared bool) *AML {
	flags := uint8(0)

	if edgetrig {
		flags |= 1 << 0
	}

	if activelow {
		flags |= 1 << 3
	}

	if shared {
		flags |= 1 << 4
	}

	a.buf.WriteByte(byte(IRQDesc))
	a.rawWord(mask)
	a.buf.WriteByte(flags)

	return a
}

// Interrupt emits an extended interrupt descriptor for a single GSI.
func (a *AML) Interrupt(consumer, edgetrig, activelow, shared bool, number uint32) *AML {
	flags := uint8(0)

	if consumer {
		flags = 0x1
	}

	if edgetrig {
		flags |= 1 << 1
	}

	if activelow {
		flags |= 1 << 2
	}

	if shared {
		flags |= 1 << 3
	}

	a.buf.WriteByte(byte(ExtIRQDesc))
	a.rawWord(0x6)
	a.buf.WriteByte(flags)
	a.buf.WriteByte(1)
	a.rawDWord(number)

	return a
}

func (a *AML) IO(min, max uint16, align, length uint8) *AML {
	a.buf.WriteByte(byte(IOPortDesc))
	a.buf.WriteByte(0x1)
	a.rawWord(min)
	a.rawWord(max)
	a.buf.WriteByte(align)
	a.buf.WriteByte(length)

	return a
}

func (a *AML) Memory32Fixed(base, length uint32, rw bool) *AML {
	readwrite := uint8(0)

	a.buf.WriteByte(byte(Mem32FixedDesc))
	a.rawWord(0x9)

	if rw {
		readwrite = 1
	}

	a.buf.WriteByte(readwrite)
	a.rawDWord(base)
	a.rawDWord(length)

	return a
}

func (a *AML) rawWord(w uint16) {
	a.buf.WriteByte(byte(w))
	a.buf.WriteByte(byte(w >> 8))
}

func (a *AML) rawDWord(dw uint32) {
	a.buf.WriteByte(byte(dw))
	a.buf.WriteByte(byte(dw >> 8))
	a.buf.WriteByte(byte(dw >> 16))
	a.buf.WriteByte(byte(dw >> 24))
}
