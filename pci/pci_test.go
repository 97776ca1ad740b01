package pci_test

import (
	"errors"
	"testing"

	"github.com/too-r/lai/pci"
)

func configBytes() []byte {
	b := make([]byte, 64)

	b[0x00] = 0x86 // vendor 0x8086
	b[0x01] = 0x80
	b[0x02] = 0x00 // device 0x6000
	b[0x03] = 0x60
	b[0x0E] = 0x01 // header type
	b[0x3C] = 0x0A // interrupt line
	b[0x3D] = 0x02 // interrupt pin INTB#

	return b
}

func TestParseDeviceHeader(t *testing.T) {
	t.Parallel()

	h, err := pci.ParseDeviceHeader(configBytes())
	if err != nil {
		t.Fatal(err)
	}

	if h.VendorID != 0x8086 {
		t.Fatalf("vendor: have %#04x, want 0x8086", h.VendorID)
	}

	if h.DeviceID != 0x6000 {
		t.Fatalf("device: have %#04x, want 0x6000", h.DeviceID)
	}

	if h.HeaderType != 1 {
		t.Fatalf("header type: have %d, want 1", h.HeaderType)
	}

	if h.InterruptLine != 0x0A || h.InterruptPin != 2 {
		t.Fatalf("interrupt: have line %d pin %d, want line 10 pin 2", h.InterruptLine, h.InterruptPin)
	}
}

func TestParseDeviceHeaderShort(t *testing.T) {
	t.Parallel()

	if _, err := pci.ParseDeviceHeader(make([]byte, 32)); !errors.Is(err, pci.ErrShortHeader) {
		t.Fatalf("have %v, want ErrShortHeader", err)
	}
}
