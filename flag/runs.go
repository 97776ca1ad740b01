package flag

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/too-r/lai/aml"
	"github.com/too-r/lai/pci"
	"github.com/too-r/lai/resource"
)

// maxTemplateEntries bounds how many entries a single template file may
// decode to.
const maxTemplateEntries = 64

func Parse() error {
	c := CLI{}

	programName := "lai"
	programDesc := "lai inspects ACPI resource templates and PCI interrupt wiring"

	ctx := kong.Parse(&c,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	err := ctx.Run()

	return err
}

func (c *ResourcesCmd) Run() error {
	results := make([][]resource.Resource, len(c.Paths))

	g := new(errgroup.Group)

	for i, path := range c.Paths {
		i, path := i, path

		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			dest := make([]resource.Resource, maxTemplateEntries)
			n := resource.Decode(data, dest)
			results[i] = dest[:n]

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range c.Paths {
		fmt.Printf("%s:\n", path)

		if len(results[i]) == 0 {
			fmt.Println("  no decodable resources")

			continue
		}

		for _, r := range results[i] {
			fmt.Printf("  %s\n", r)
		}
	}

	return nil
}

func (c *EISAIDCmd) Run() error {
	v := aml.EISAID(c.ID)
	if v.Kind != aml.ValueInteger {
		fmt.Printf("%s does not pack, kept as string %q\n", c.ID, v.String)

		return nil
	}

	fmt.Printf("%s = 0x%08X\n", c.ID, v.Integer)

	return nil
}

func (c *PinCmd) Run() error {
	bus, slot, fn, err := ParseBDF(c.BDF)
	if err != nil {
		return err
	}

	rd := pci.SysfsReader{}

	vendor, err := rd.ReadConfig16(bus, slot, fn, pci.RegVendorID)
	if err != nil {
		return err
	}

	device, err := rd.ReadConfig16(bus, slot, fn, pci.RegDeviceID)
	if err != nil {
		return err
	}

	pin, err := rd.ReadConfig8(bus, slot, fn, pci.RegInterruptPin)
	if err != nil {
		return err
	}

	if pin == 0 || pin > 4 {
		fmt.Printf("%02x:%02x.%x [%04x:%04x] has no interrupt pin\n", bus, slot, fn, vendor, device)

		return nil
	}

	fmt.Printf("%02x:%02x.%x [%04x:%04x] uses pin INT%c#\n", bus, slot, fn, vendor, device, 'A'+pin-1)

	return nil
}

func (c *HeaderCmd) Run() error {
	bus, slot, fn, err := ParseBDF(c.BDF)
	if err != nil {
		return err
	}

	h, err := pci.SysfsReader{}.ReadHeader(bus, slot, fn)
	if err != nil {
		return err
	}

	fmt.Printf("%02x:%02x.%x [%04x:%04x] rev %02x\n", bus, slot, fn, h.VendorID, h.DeviceID, h.RevisionID)
	fmt.Printf("  class %02x%02x%02x, header type %#02x\n", h.ClassCode[2], h.ClassCode[1], h.ClassCode[0], h.HeaderType)

	if h.InterruptPin != 0 {
		fmt.Printf("  interrupt pin INT%c#, line %d\n", 'A'+h.InterruptPin-1, h.InterruptLine)
	}

	return nil
}
