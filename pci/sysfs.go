package pci

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// SysfsReader reads configuration space through the kernel's sysfs view
// of the PCI bus (/sys/bus/pci/devices/DDDD:BB:SS.F/config).
type SysfsReader struct {
	// Domain is the PCI domain (segment) number, usually 0.
	Domain uint16
}

func (r SysfsReader) path(bus, slot, fn uint8) string {
	return fmt.Sprintf("/sys/bus/pci/devices/%04x:%02x:%02x.%x/config", r.Domain, bus, slot, fn)
}

func (r SysfsReader) read(bus, slot, fn, offset uint8, b []byte) error {
	fd, err := unix.Open(r.path(bus, slot, fn), unix.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("pci: open config space: %w", err)
	}
	defer unix.Close(fd)

	n, err := unix.Pread(fd, b, int64(offset))
	if err != nil {
		return fmt.Errorf("pci: config read at %#02x: %w", offset, err)
	}

	if n != len(b) {
		return fmt.Errorf("pci: short config read at %#02x: %d of %d bytes", offset, n, len(b))
	}

	return nil
}

func (r SysfsReader) ReadConfig8(bus, slot, fn, offset uint8) (uint8, error) {
	b := make([]byte, 1)
	if err := r.read(bus, slot, fn, offset, b); err != nil {
		return 0, err
	}

	return b[0], nil
}

func (r SysfsReader) ReadConfig16(bus, slot, fn, offset uint8) (uint16, error) {
	b := make([]byte, 2)
	if err := r.read(bus, slot, fn, offset, b); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

// ReadHeader reads and parses the 64-byte type-0 header.
func (r SysfsReader) ReadHeader(bus, slot, fn uint8) (DeviceHeader, error) {
	b := make([]byte, 64)
	if err := r.read(bus, slot, fn, 0, b); err != nil {
		return DeviceHeader{}, err
	}

	return ParseDeviceHeader(b)
}
