// Package pciroute resolves which interrupt a PCI function raises.
//
// Every PCI device capable of generating an IRQ has an interrupt pin
// field in its configuration space, and that field is valid for both
// the PIC and the I/O APIC. The interrupt line field, by contrast, is
// reserved by the PCI local bus spec for BIOS/OS-specific use and
// cannot be trusted to contain the real IRQ. Routing therefore goes
// through the firmware's _PRT table, keyed on the pin.
package pciroute

import (
	"errors"
	"fmt"
	"log"

	"github.com/too-r/lai/aml"
	"github.com/too-r/lai/pci"
	"github.com/too-r/lai/resource"
)

// Hardware ID of a PCI host bridge (_HID of a PCI root bus device).
const hostBridgeID = "PNP0A03"

// maxLinkResources bounds how many entries a link device's resource
// template may yield.
const maxLinkResources = 16

var (
	// ErrUnroutableDevice means the function's interrupt pin register
	// is absent or outside 1-4; the device raises no interrupt.
	ErrUnroutableDevice = errors.New("pciroute: device has no usable interrupt pin")

	// ErrBusNotFound means no host bridge in the namespace claims the
	// requested bus number.
	ErrBusNotFound = errors.New("pciroute: no host bridge for bus")

	// ErrRoutingTableUnavailable means the bridge's _PRT is missing or
	// did not evaluate to a package.
	ErrRoutingTableUnavailable = errors.New("pciroute: routing table unavailable")

	// ErrMalformedRoutingEntry means a _PRT entry held the wrong value
	// type where a package or integer was expected.
	ErrMalformedRoutingEntry = errors.New("pciroute: malformed routing table entry")

	// ErrNoMatchingPin means the routing table was exhausted without a
	// slot/function/pin match.
	ErrNoMatchingPin = errors.New("pciroute: no routing entry matches the pin")

	// ErrUnresolvedLink means the matched interrupt link device exposes
	// no IRQ resource.
	ErrUnresolvedLink = errors.New("pciroute: interrupt link has no IRQ resource")
)

// Router resolves PCI interrupt routing against a namespace and a
// configuration space. All calls are synchronous and perform no
// retries; any failing external call fails the route.
type Router struct {
	NS   aml.Namespace
	Conf pci.ConfigReader
}

func New(ns aml.Namespace, conf pci.ConfigReader) *Router {
	return &Router{NS: ns, Conf: conf}
}

// Route resolves the effective IRQ of function bus:slot.fn. The
// returned entry is either the GSI named directly by the routing table
// (level-triggered, active-high, shared, as mandated for GSI-routed PCI
// interrupts) or the first IRQ resource of the interrupt link device
// the table designates.
func (r *Router) Route(bus, slot, fn uint8) (resource.Resource, error) {
	pin, err := r.Conf.ReadConfig8(bus, slot, fn, pci.RegInterruptPin)
	if err != nil {
		return resource.Resource{}, err
	}

	if pin == 0 || pin > 4 {
		return resource.Resource{}, ErrUnroutableDevice
	}

	// PCI numbers the pins from 1, ACPI from 0.
	pin--

	bridge, err := r.findHostBridge(bus)
	if err != nil {
		return resource.Resource{}, err
	}

	prt, err := aml.Eval(r.NS, bridge.Path+"._PRT")
	if err != nil {
		return resource.Resource{}, fmt.Errorf("%w: %v", ErrRoutingTableUnavailable, err)
	}

	if prt.Kind != aml.ValuePackage {
		return resource.Resource{}, ErrRoutingTableUnavailable
	}

	// First match wins, mirroring firmware-authored precedence. Walking
	// off the end of the package is the "no more entries" signal.
	for i := 0; ; i++ {
		entry, err := prt.Element(i)
		if err != nil {
			return resource.Resource{}, ErrNoMatchingPin
		}

		ok, err := matchEntry(entry, slot, fn, pin)
		if err != nil {
			return resource.Resource{}, err
		}

		if !ok {
			continue
		}

		res, err := r.resolveEntry(entry)
		if err != nil {
			return resource.Resource{}, err
		}

		log.Printf("pciroute: %02x:%02x.%x pin INT%c# uses IRQ %d", bus, slot, fn, 'A'+pin, res.Base)

		return res, nil
	}
}

// findHostBridge enumerates PNP0A03 devices and returns the first whose
// base bus number matches bus. A missing _BBN defaults to bus 0.
func (r *Router) findHostBridge(bus uint8) (*aml.Node, error) {
	id := aml.EISAID(hostBridgeID)

	for index := 0; ; index++ {
		h, ok := r.NS.DeviceByID(&id, index)
		if !ok {
			return nil, fmt.Errorf("%w %d", ErrBusNotFound, bus)
		}

		busNum := uint64(0)

		if v, err := aml.Eval(r.NS, h.Path+"._BBN"); err == nil {
			if n, err := v.Int(); err == nil {
				busNum = n
			}
		}

		if uint8(busNum) == bus {
			return h, nil
		}
	}
}

// matchEntry reports whether a _PRT entry covers slot/fn/pin. Entry
// layout: [0] device address (slot in the high word, function in the
// low word, 0xFFFF = any function), [1] pin index, [2] source, [3]
// source index or GSI.
func matchEntry(entry aml.Value, slot, fn, pin uint8) (bool, error) {
	if entry.Kind != aml.ValuePackage {
		return false, ErrMalformedRoutingEntry
	}

	addrVal, err := entry.Element(0)
	if err != nil {
		return false, ErrMalformedRoutingEntry
	}

	addr, err := addrVal.Int()
	if err != nil {
		return false, ErrMalformedRoutingEntry
	}

	// The slot portion is the full high word; truncating it would let a
	// firmware entry for slot 0x1NN alias a low slot number.
	if (addr>>16)&0xFFFF != uint64(slot) {
		return false, nil
	}

	if f := addr & 0xFFFF; f != 0xFFFF && f != uint64(fn) {
		return false, nil
	}

	pinVal, err := entry.Element(1)
	if err != nil {
		return false, ErrMalformedRoutingEntry
	}

	p, err := pinVal.Int()
	if err != nil {
		return false, ErrMalformedRoutingEntry
	}

	return p == uint64(pin), nil
}

// resolveEntry turns a matched _PRT entry into a concrete IRQ resource.
func (r *Router) resolveEntry(entry aml.Value) (resource.Resource, error) {
	src, err := entry.Element(2)
	if err != nil {
		return resource.Resource{}, ErrMalformedRoutingEntry
	}

	switch src.Kind {
	case aml.ValueInteger:
		// Direct routing: field 3 is the GSI.
		gsiVal, err := entry.Element(3)
		if err != nil {
			return resource.Resource{}, ErrMalformedRoutingEntry
		}

		gsi, err := gsiVal.Int()
		if err != nil {
			return resource.Resource{}, ErrMalformedRoutingEntry
		}

		return resource.Resource{
			Kind:     resource.KindIRQ,
			Base:     gsi,
			IRQFlags: resource.IRQShared,
		}, nil

	case aml.ValueHandle:
		// Indirect routing through an interrupt link device.
		link := src.Handle

		dest := make([]resource.Resource, maxLinkResources)

		n, err := resource.ReadResources(r.NS, link, dest)
		if err != nil {
			return resource.Resource{}, fmt.Errorf("%w: %s: %v", ErrUnresolvedLink, link.Path, err)
		}

		for _, res := range dest[:n] {
			if res.Kind == resource.KindIRQ {
				return res, nil
			}
		}

		return resource.Resource{}, fmt.Errorf("%w: %s", ErrUnresolvedLink, link.Path)

	default:
		return resource.Resource{}, ErrMalformedRoutingEntry
	}
}
