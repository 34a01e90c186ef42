package main

import (
	"fmt"
	"strings"

	"github.com/usbtree/usbtree/profile"
)

// ListCmd prints the topology as an indented tree, one device per line,
// annotated with the theme's icon/colour and the hidden marker when -hide
// was used instead of retain.
type ListCmd struct{}

func (c *ListCmd) Run(g *Globals) error {
	result, err := buildProfile(g)
	if err != nil {
		return err
	}

	for _, b := range result.profile.Buses {
		fmt.Printf("Bus %03d", b.BusNumber)
		if b.Name != "" {
			fmt.Printf(" (%s)", b.Name)
		}
		fmt.Println()
		for _, d := range b.Devices {
			printDevice(d, 1, result)
		}
	}
	return nil
}

func printDevice(d *profile.Device, depth int, result *profileResult) {
	indent := strings.Repeat("  ", depth)
	entry := result.theme.Resolve(d.VendorID, d.ProductID, d.Class.BaseClass)

	label := d.Name
	if label == "" {
		label = fmt.Sprintf("%04x:%04x", d.VendorID, d.ProductID)
	}

	hiddenMark := ""
	if result.hidden != nil && result.hidden.IsDeviceHidden(d) {
		hiddenMark = " [hidden]"
	}

	fmt.Printf("%s%s %s %s (%s)%s\n", indent, entry.Icon, d.PortPath(), label, d.DeviceSpeed, hiddenMark)
	if d.ProfilerError != "" {
		fmt.Printf("%s  ! %s\n", indent, d.ProfilerError)
	}

	for _, child := range d.Children {
		printDevice(child, depth+1, result)
	}
}
