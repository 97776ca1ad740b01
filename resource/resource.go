// Package resource decodes ACPI resource templates, the byte-encoded
// lists of IRQ/DMA/IO/memory ranges a device consumes. Discovering them
// is needed for basic system enumeration as well as PCI IRQ routing.
package resource

import (
	"fmt"
	"log"

	"github.com/too-r/lai/aml"
)

// Kind classifies a resource entry. Only IRQ entries are decoded today;
// the remaining kinds are reserved for the other descriptor types the
// template format defines.
type Kind uint8

const (
	KindIRQ Kind = iota
	KindDMA
	KindIO
	KindFixedIO
	KindMemory
)

// IRQFlags describes an interrupt's triggering, polarity and sharing.
// The zero value is level-triggered, active-high, exclusive.
type IRQFlags uint8

const (
	IRQEdge      IRQFlags = 1 << iota // level-triggered when clear
	IRQActiveLow                      // active-high when clear
	IRQShared                         // exclusive when clear
)

func (f IRQFlags) String() string {
	s := "level"
	if f&IRQEdge != 0 {
		s = "edge"
	}

	if f&IRQActiveLow != 0 {
		s += " active-low"
	} else {
		s += " active-high"
	}

	if f&IRQShared != 0 {
		s += " shared"
	} else {
		s += " exclusive"
	}

	return s
}

// Resource is a normalized hardware resource record.
type Resource struct {
	Kind     Kind
	Base     uint64
	IRQFlags IRQFlags
}

func (r Resource) String() string {
	if r.Kind == KindIRQ {
		return fmt.Sprintf("IRQ %d (%s)", r.Base, r.IRQFlags)
	}

	return fmt.Sprintf("kind %d base %#x", r.Kind, r.Base)
}

// Descriptor codes. Small descriptors carry the kind in bits 3-6 of the
// lead byte; large descriptors use the full lead byte.
const (
	endTag = 0x79

	smallIRQ     = 0x04
	smallDMA     = 0x05
	smallIO      = 0x08
	smallFixedIO = 0x09
	smallVendor  = 0x0E
	smallEnd     = 0x0F

	largeExtIRQ = 0x89
)

// Small IRQ descriptor flag byte.
const (
	smallIRQEdge      = 1 << 0
	smallIRQActiveLow = 1 << 3
	smallIRQShared    = 1 << 4
)

// Extended interrupt descriptor flag byte.
const (
	extIRQEdge      = 1 << 1
	extIRQActiveLow = 1 << 2
	extIRQShared    = 1 << 3
)

// Decode scans a raw resource template and fills dest with the entries
// found before the end tag, returning the count written. Enumeration
// stops at cap(dest); the template is firmware-supplied and untrusted,
// so no read crosses a descriptor's stated payload or the buffer end.
//
// An unsupported or truncated descriptor stops decoding and discards
// everything decoded so far: a partial resource list is unsafe to act
// on, so the result is all-or-nothing.
func Decode(data []byte, dest []Resource) int {
	count := 0

	for i := 0; i < len(data) && data[i] != endTag; {
		if data[i]&0x80 == 0 {
			// Small descriptor: bits 0-2 payload length, bits 3-6 kind.
			size := int(data[i] & 7)
			if i+1+size > len(data) {
				log.Printf("resource: truncated small descriptor %#02x, discarding", data[i])

				return 0
			}

			switch data[i] >> 3 & 0x0F {
			case smallEnd:
				return count

			case smallIRQ:
				if size < 2 {
					log.Printf("resource: short IRQ descriptor, discarding")

					return 0
				}

				mask := uint16(data[i+1]) | uint16(data[i+2])<<8

				// When the flag byte is absent the spec mandates
				// active-high, edge-triggered, exclusive.
				flags := IRQEdge
				if size >= 3 {
					flags = smallIRQFlags(data[i+3])
				}

				for line := 0; line < 16; line++ {
					if mask&(1<<line) == 0 {
						continue
					}

					if count == len(dest) {
						return count
					}

					dest[count] = Resource{Kind: KindIRQ, Base: uint64(line), IRQFlags: flags}
					count++
				}

				i += 1 + size

			default:
				log.Printf("resource: unsupported small descriptor %#02x, discarding", data[i])

				return 0
			}
		} else {
			// Large descriptor: lead byte is the kind, then a 16-bit
			// little-endian payload length.
			if i+3 > len(data) {
				log.Printf("resource: truncated large descriptor %#02x, discarding", data[i])

				return 0
			}

			size := int(data[i+1]) | int(data[i+2])<<8
			if i+3+size > len(data) {
				log.Printf("resource: truncated large descriptor %#02x, discarding", data[i])

				return 0
			}

			switch data[i] {
			case largeExtIRQ:
				// Flag byte, table length, then the first 32-bit GSI.
				if size < 6 {
					log.Printf("resource: short extended IRQ descriptor, discarding")

					return 0
				}

				gsi := uint64(data[i+5]) | uint64(data[i+6])<<8 |
					uint64(data[i+7])<<16 | uint64(data[i+8])<<24

				if count == len(dest) {
					return count
				}

				dest[count] = Resource{Kind: KindIRQ, Base: gsi, IRQFlags: extIRQFlags(data[i+3])}
				count++

				i += 3 + size

			default:
				log.Printf("resource: unsupported large descriptor %#02x, discarding", data[i])

				return 0
			}
		}
	}

	return count
}

func smallIRQFlags(b byte) IRQFlags {
	var f IRQFlags

	if b&smallIRQEdge != 0 {
		f |= IRQEdge
	}

	if b&smallIRQActiveLow != 0 {
		f |= IRQActiveLow
	}

	if b&smallIRQShared != 0 {
		f |= IRQShared
	}

	return f
}

func extIRQFlags(b byte) IRQFlags {
	var f IRQFlags

	if b&extIRQEdge != 0 {
		f |= IRQEdge
	}

	if b&extIRQActiveLow != 0 {
		f |= IRQActiveLow
	}

	if b&extIRQShared != 0 {
		f |= IRQShared
	}

	return f
}

// ReadResources evaluates a device's current resource settings (_CRS)
// and decodes them into dest, returning the count written.
func ReadResources(ns aml.Namespace, dev *aml.Node, dest []Resource) (int, error) {
	crs, err := aml.Eval(ns, dev.Path+"._CRS")
	if err != nil {
		return 0, err
	}

	buf, err := crs.Bytes()
	if err != nil {
		return 0, fmt.Errorf("resource: _CRS of %s: %w", dev.Path, err)
	}

	return Decode(buf, dest), nil
}
