package aml

// AMLOp is a single-byte AML opcode or data prefix.
type AMLOp uint8

const (
	OpZero AMLOp = 0x00
	OpOne  AMLOp = 0x01

	OpName        AMLOp = 0x08
	OpBytePrefix  AMLOp = 0x0A
	OpWordPrefix  AMLOp = 0x0B
	OpDWordPrefix AMLOp = 0x0C
	OpString      AMLOp = 0x0D
	OpQWordPrefix AMLOp = 0x0E
	OpScope       AMLOp = 0x10
	OpBuffer      AMLOp = 0x11
	OpPackage     AMLOp = 0x12
	OpMethod      AMLOp = 0x14

	OpDualNamePrefix  AMLOp = 0x2E
	OpMultiNamePrefix AMLOp = 0x2F

	OpExtPrefix AMLOp = 0x5B
	OpDevice    AMLOp = 0x82

	OpReturn AMLOp = 0xA4
	OpOnes   AMLOp = 0xFF
)

// Name string prefix characters.
const (
	RootChar   = '\\'
	ParentChar = '^'
)

// IsNameChar reports whether c may appear in an AML name string.
func IsNameChar(c byte) bool {
	return (c >= '0' && c <= '9') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_' ||
		c == RootChar ||
		c == ParentChar ||
		c == byte(OpDualNamePrefix) ||
		c == byte(OpMultiNamePrefix)
}
