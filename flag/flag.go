package flag

import (
	"fmt"
	"strconv"
	"strings"
)

// CLI is the top-level kong command tree.
type CLI struct {
	Resources ResourcesCmd `cmd:"" help:"Decode raw ACPI resource template blobs."`
	EISAID    EISAIDCmd    `cmd:"" name:"eisaid" help:"Pack a PNP hardware ID into its EISA integer form."`
	Pin       PinCmd       `cmd:"" help:"Read a device's interrupt pin register."`
	Header    HeaderCmd    `cmd:"" help:"Dump a device's type-0 configuration header."`
}

type ResourcesCmd struct {
	Paths []string `arg:"" type:"existingfile" help:"Resource template files."`
}

type EISAIDCmd struct {
	ID string `arg:"" help:"Seven character hardware ID, e.g. PNP0A03."`
}

type PinCmd struct {
	BDF string `arg:"" help:"Device address as bus:slot.fn in hex, e.g. 00:1f.3."`
}

type HeaderCmd struct {
	BDF string `arg:"" help:"Device address as bus:slot.fn in hex, e.g. 00:1f.3."`
}

// ParseBDF parses a bus:slot.fn device address in the lspci notation.
// All three parts are hexadecimal.
func ParseBDF(s string) (bus, slot, fn uint8, err error) {
	busStr, rest, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, 0, fmt.Errorf("%q: can't parse as bus:slot.fn: %w", s, strconv.ErrSyntax)
	}

	slotStr, fnStr, ok := strings.Cut(rest, ".")
	if !ok {
		return 0, 0, 0, fmt.Errorf("%q: can't parse as bus:slot.fn: %w", s, strconv.ErrSyntax)
	}

	b, err := strconv.ParseUint(busStr, 16, 8)
	if err != nil {
		return 0, 0, 0, err
	}

	sl, err := strconv.ParseUint(slotStr, 16, 8)
	if err != nil {
		return 0, 0, 0, err
	}

	f, err := strconv.ParseUint(fnStr, 16, 8)
	if err != nil {
		return 0, 0, 0, err
	}

	if sl > 0x1F || f > 7 {
		return 0, 0, 0, fmt.Errorf("%q: slot or function out of range: %w", s, strconv.ErrRange)
	}

	return uint8(b), uint8(sl), uint8(f), nil
}
