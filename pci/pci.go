// Package pci reads PCI configuration space on behalf of the routing
// code.
package pci

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Standard type-0 configuration header register offsets.
const (
	RegVendorID      uint8 = 0x00
	RegDeviceID      uint8 = 0x02
	RegRevisionID    uint8 = 0x08
	RegClassCode     uint8 = 0x09
	RegHeaderType    uint8 = 0x0E
	RegInterruptLine uint8 = 0x3C
	RegInterruptPin  uint8 = 0x3D
)

// ErrShortHeader is returned when a configuration header buffer is
// smaller than the 64-byte type-0 header.
var ErrShortHeader = errors.New("pci: configuration header too short")

// ConfigReader reads a function's configuration space. The interrupt
// pin register is the only one routing strictly needs, but callers also
// use it for device identification.
type ConfigReader interface {
	ReadConfig8(bus, slot, fn, offset uint8) (uint8, error)
	ReadConfig16(bus, slot, fn, offset uint8) (uint16, error)
}

// DeviceHeader is a parsed type-0 configuration header.
type DeviceHeader struct {
	VendorID                uint16
	DeviceID                uint16
	Command                 uint16
	Status                  uint16
	RevisionID              uint8
	ClassCode               [3]uint8
	CacheLineSize           uint8
	LatencyTimer            uint8
	HeaderType              uint8
	BIST                    uint8
	BAR                     [6]uint32
	CardbusCISPointer       uint32
	SubsystemVendorID       uint16
	SubsystemID             uint16
	ExpansionROMBaseAddress uint32
	CapabilitiesPointer     uint8
	Reserved                [7]uint8
	InterruptLine           uint8
	InterruptPin            uint8
	MinGnt                  uint8
	MaxLat                  uint8
}

// ParseDeviceHeader decodes the first 64 bytes of configuration space.
func ParseDeviceHeader(b []byte) (DeviceHeader, error) {
	var h DeviceHeader

	if len(b) < 64 {
		return h, ErrShortHeader
	}

	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &h); err != nil {
		return DeviceHeader{}, err
	}

	return h, nil
}
