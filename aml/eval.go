package aml

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNotEvaluable is returned by Eval for nodes that carry no value,
// such as bare devices or scopes.
var ErrNotEvaluable = errors.New("aml: node is not an evaluable object")

// ErrAliasLoop is returned by Eval when an alias chain exceeds
// maxAliasDepth, which only happens when firmware ships a cycle.
var ErrAliasLoop = errors.New("aml: alias chain too deep")

// maxAliasDepth bounds alias chasing in Eval. Real firmware nests
// aliases one or two deep.
const maxAliasDepth = 16

// DecodeInteger decodes an AML-encoded integer constant at the start of
// data. It returns the value and the number of bytes the encoding
// occupied: 1 for the bare Zero/One/Ones opcodes, 2/3/5/9 for the
// byte/word/dword/qword immediate forms. A count of 0 means data does
// not start with a recognized integer encoding; callers must check it.
func DecodeInteger(data []byte) (uint64, int) {
	if len(data) == 0 {
		return 0, 0
	}

	switch AMLOp(data[0]) {
	case OpZero:
		return 0, 1
	case OpOne:
		return 1, 1
	case OpOnes:
		return 0xFFFFFFFFFFFFFFFF, 1
	case OpBytePrefix:
		if len(data) < 2 {
			return 0, 0
		}

		return uint64(data[1]), 2
	case OpWordPrefix:
		if len(data) < 3 {
			return 0, 0
		}

		return uint64(binary.LittleEndian.Uint16(data[1:])), 3
	case OpDWordPrefix:
		if len(data) < 5 {
			return 0, 0
		}

		return uint64(binary.LittleEndian.Uint32(data[1:])), 5
	case OpQWordPrefix:
		if len(data) < 9 {
			return 0, 0
		}

		return binary.LittleEndian.Uint64(data[1:]), 9
	}

	return 0, 0
}

// ParsePkgLength decodes an AML PkgLength at the start of data. The top
// two bits of the lead byte select 0-3 extra bytes; the lead byte
// contributes its low 6 bits when no extra bytes follow and its low 4
// bits otherwise, with each extra byte supplying the next 8 bits. It
// returns the size and the number of bytes consumed (1-4), or 0 bytes
// for an empty or truncated encoding.
func ParsePkgLength(data []byte) (uint32, int) {
	if len(data) == 0 {
		return 0, 0
	}

	extra := int(data[0] >> 6)
	if len(data) < 1+extra {
		return 0, 0
	}

	if extra == 0 {
		return uint32(data[0] & 0x3F), 1
	}

	size := uint32(data[0] & 0x0F)
	for i := 1; i <= extra; i++ {
		size |= uint32(data[i]) << (4 + 8*(i-1))
	}

	return size, extra + 1
}

const (
	pkgLen1 = 63
	pkgLen2 = 4096
	pkgLen3 = 1048573
)

// CalcPkgLength encodes length as an AML PkgLength. When includepkg is
// set, the encoding's own size is folded into the encoded length, as
// required when the PkgLength counts itself.
func CalcPkgLength(length uint32, includepkg bool) []byte {
	var lenlen uint32

	if length < pkgLen1 { // nolint:gocritic
		lenlen = 1
	} else if length < pkgLen2 {
		lenlen = 2
	} else if length < pkgLen3 {
		lenlen = 3
	} else {
		lenlen = 4
	}

	ret := make([]byte, lenlen)

	if includepkg {
		length += lenlen
	}

	switch lenlen {
	case 1:
		ret[0] = uint8(length)
	case 2:
		ret[0] = (uint8(1) << 6) | uint8(length&0xf)
		ret[1] = uint8(length >> 4)
	case 3:
		ret[0] = (uint8(2) << 6) | uint8(length&0xf)
		ret[1] = uint8(length >> 4)
		ret[2] = uint8(length >> 12)
	case 4:
		ret[0] = (uint8(3) << 6) | uint8(length&0xf)
		ret[1] = uint8(length >> 4)
		ret[2] = uint8(length >> 12)
		ret[3] = uint8(length >> 20)
	}

	return ret
}

// Eval resolves a dotted namespace path and produces its value. Alias
// nodes are followed until a non-alias target. A Name node's stored
// value is copied; a Method node is executed and its return value taken
// by move. Any other node kind fails.
func Eval(ns Namespace, path string) (Value, error) {
	node, err := ns.Resolve(path)
	if err != nil {
		return Value{}, err
	}

	for depth := 0; node.Kind == NodeAlias; depth++ {
		if depth == maxAliasDepth {
			return Value{}, fmt.Errorf("%w: %s", ErrAliasLoop, path)
		}

		node, err = ns.Resolve(node.Alias)
		if err != nil {
			return Value{}, err
		}
	}

	switch node.Kind {
	case NodeName:
		return node.Value.Copy(), nil
	case NodeMethod:
		ret, err := ns.Exec(node)
		if err != nil {
			return Value{}, err
		}

		return ret.Move(), nil
	}

	return Value{}, fmt.Errorf("%w: %s", ErrNotEvaluable, path)
}
