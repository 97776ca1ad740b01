package aml_test

import (
	"errors"
	"testing"

	"github.com/too-r/lai/aml"
)

func TestDecodeInteger(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		in   []byte
		val  uint64
		n    int
	}{
		{name: "Zero", in: []byte{0x00}, val: 0, n: 1},
		{name: "One", in: []byte{0x01}, val: 1, n: 1},
		{name: "Ones", in: []byte{0xFF}, val: 0xFFFFFFFFFFFFFFFF, n: 1},
		{name: "Byte", in: []byte{0x0A, 0x7F}, val: 0x7F, n: 2},
		{name: "Word", in: []byte{0x0B, 0x34, 0x12}, val: 0x1234, n: 3},
		{name: "DWord", in: []byte{0x0C, 0x78, 0x56, 0x34, 0x12}, val: 0x12345678, n: 5},
		{
			name: "QWord",
			in:   []byte{0x0E, 0xEF, 0xCD, 0xAB, 0x89, 0x67, 0x45, 0x23, 0x01},
			val:  0x0123456789ABCDEF,
			n:    9,
		},
		{name: "NotAnInteger", in: []byte{0x12}, val: 0, n: 0},
		{name: "TruncatedWord", in: []byte{0x0B, 0x34}, val: 0, n: 0},
		{name: "TruncatedQWord", in: []byte{0x0E, 1, 2, 3}, val: 0, n: 0},
		{name: "Empty", in: nil, val: 0, n: 0},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			val, n := aml.DecodeInteger(tt.in)
			if val != tt.val || n != tt.n {
				t.Fatalf("have (%#x, %d), want (%#x, %d)", val, n, tt.val, tt.n)
			}
		})
	}
}

func TestParsePkgLength(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		in   []byte
		size uint32
		n    int
	}{
		{name: "1Byte", in: []byte{0x3F}, size: 63, n: 1},
		{name: "2Byte", in: []byte{1<<6 | 0x2, 0x04}, size: 0x42, n: 2},
		{name: "3Byte", in: []byte{2<<6 | 0x3, 0x00, 0x01}, size: 0x1003, n: 3},
		{name: "4Byte", in: []byte{3<<6 | 0x1, 0x00, 0x00, 0x02}, size: 0x200001, n: 4},
		{name: "Truncated", in: []byte{1 << 6}, size: 0, n: 0},
		{name: "Empty", in: nil, size: 0, n: 0},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			size, n := aml.ParsePkgLength(tt.in)
			if size != tt.size || n != tt.n {
				t.Fatalf("have (%d, %d), want (%d, %d)", size, n, tt.size, tt.n)
			}
		})
	}
}

func TestPkgLengthRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		size uint32
		n    int
	}{
		{name: "1ByteSize", size: 10, n: 1},
		{name: "2ByteSize", size: 200, n: 2},
		{name: "3ByteSize", size: 8000, n: 3},
		{name: "4ByteSize", size: 2000000, n: 4},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			enc := aml.CalcPkgLength(tt.size, false)

			size, n := aml.ParsePkgLength(enc)
			if size != tt.size {
				t.Fatalf("size: have %d, want %d", size, tt.size)
			}

			if n != tt.n || n != len(enc) {
				t.Fatalf("consumed: have %d, want %d (encoding %d bytes)", n, tt.n, len(enc))
			}
		})
	}
}

func evalNamespace() *aml.StaticNamespace {
	ns := aml.NewStaticNamespace()

	ns.AddDevice(`\_SB_.PCI0`, aml.EISAID("PNP0A03"))
	ns.AddName(`\_SB_.PCI0._BBN`, aml.IntegerValue(0))
	ns.AddMethod(`\_SB_.PCI0._PRT`, func() (aml.Value, error) {
		return aml.PackageValue(aml.IntegerValue(1)), nil
	})
	ns.AddAlias(`\BBN0`, `\BBN1`)
	ns.AddAlias(`\BBN1`, `\_SB_.PCI0._BBN`)

	return ns
}

func TestEvalName(t *testing.T) {
	t.Parallel()

	v, err := aml.Eval(evalNamespace(), `\_SB_.PCI0._BBN`)
	if err != nil {
		t.Fatal(err)
	}

	if n, err := v.Int(); err != nil || n != 0 {
		t.Fatalf("have (%d, %v), want (0, nil)", n, err)
	}
}

func TestEvalMethod(t *testing.T) {
	t.Parallel()

	v, err := aml.Eval(evalNamespace(), `\_SB_.PCI0._PRT`)
	if err != nil {
		t.Fatal(err)
	}

	if v.Kind != aml.ValuePackage || len(v.Package) != 1 {
		t.Fatalf("have %+v, want one-element package", v)
	}
}

func TestEvalAliasChain(t *testing.T) {
	t.Parallel()

	v, err := aml.Eval(evalNamespace(), `\BBN0`)
	if err != nil {
		t.Fatal(err)
	}

	if v.Kind != aml.ValueInteger {
		t.Fatalf("alias chain resolved to kind %d, want integer", v.Kind)
	}
}

func TestEvalAliasCycle(t *testing.T) {
	t.Parallel()

	ns := aml.NewStaticNamespace()
	ns.AddAlias(`\ALIA`, `\ALIB`)
	ns.AddAlias(`\ALIB`, `\ALIA`)

	if _, err := aml.Eval(ns, `\ALIA`); !errors.Is(err, aml.ErrAliasLoop) {
		t.Fatalf("have %v, want ErrAliasLoop", err)
	}
}

func TestEvalFailures(t *testing.T) {
	t.Parallel()

	ns := evalNamespace()

	if _, err := aml.Eval(ns, `\_SB_.PCI0`); !errors.Is(err, aml.ErrNotEvaluable) {
		t.Fatalf("device node: have %v, want ErrNotEvaluable", err)
	}

	if _, err := aml.Eval(ns, `\_SB_.PCI9._CRS`); !errors.Is(err, aml.ErrPathNotFound) {
		t.Fatalf("missing path: have %v, want ErrPathNotFound", err)
	}
}

func TestDeviceByID(t *testing.T) {
	t.Parallel()

	ns := aml.NewStaticNamespace()
	id := aml.EISAID("PNP0A03")

	first := ns.AddDevice(`\_SB_.PCI0`, id)
	ns.AddDevice(`\_SB_.LNKA`, aml.EISAID("PNP0C0F"))
	second := ns.AddDevice(`\_SB_.PCI1`, id)

	if n, ok := ns.DeviceByID(&id, 0); !ok || n != first {
		t.Fatalf("index 0: have (%v, %v), want first bridge", n, ok)
	}

	if n, ok := ns.DeviceByID(&id, 1); !ok || n != second {
		t.Fatalf("index 1: have (%v, %v), want second bridge", n, ok)
	}

	if _, ok := ns.DeviceByID(&id, 2); ok {
		t.Fatalf("index 2: expected no more devices")
	}

	str := aml.StringValue("PNP0A03")
	if _, ok := ns.DeviceByID(&str, 0); ok {
		t.Fatalf("string ID must not match packed integer IDs")
	}
}
