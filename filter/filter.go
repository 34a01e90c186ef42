// Package filter retains or hides nodes of a profile.SystemProfile tree by
// vendor/product/bus/number/name/serial/class, with smart-case string
// matching.
package filter

import (
	"strings"

	"github.com/usbtree/usbtree/descriptor"
	"github.com/usbtree/usbtree/profile"
)

// Filter is a record of optional predicates; a nil/zero field means "don't
// constrain on this dimension".
type Filter struct {
	VendorID   *uint16
	ProductID  *uint16
	Bus        *int
	Number     *int
	Name       string
	Serial     string
	Class      *uint8

	ExcludeEmptyBus  bool
	ExcludeEmptyHub  bool
	NoExcludeRootHub bool
	CaseSensitive    bool
}

// Matches reports whether a single device satisfies every predicate set on
// f. Unset predicates are vacuously true.
func (f Filter) Matches(d *profile.Device) bool {
	if f.VendorID != nil && d.VendorID != *f.VendorID {
		return false
	}
	if f.ProductID != nil && d.ProductID != *f.ProductID {
		return false
	}
	if f.Bus != nil && d.Location.Bus != *f.Bus {
		return false
	}
	if f.Number != nil && d.Location.Number != *f.Number {
		return false
	}
	if f.Name != "" && !smartCaseContains(d.Name, f.Name, f.CaseSensitive) {
		return false
	}
	if f.Serial != "" && !smartCaseContains(d.Serial, f.Serial, f.CaseSensitive) {
		return false
	}
	if f.Class != nil && d.Class.BaseClass != *f.Class && !deviceHasInterfaceClass(d, *f.Class) {
		return false
	}
	return true
}

// deviceHasInterfaceClass reports whether any interface of any configuration
// in d.Extra declares the given base class, for devices (e.g. composite
// devices) whose device descriptor itself reports class 0.
func deviceHasInterfaceClass(d *profile.Device, class uint8) bool {
	if d.Extra == nil {
		return false
	}
	for _, cfg := range d.Extra.Configurations {
		for _, iface := range cfg.Interfaces {
			if iface.Class.BaseClass == class {
				return true
			}
		}
	}
	return false
}

// smartCaseContains implements ripgrep-style smart case: the match is
// case-insensitive unless pattern contains an uppercase character, or
// caseSensitive is forced.
func smartCaseContains(haystack, pattern string, caseSensitive bool) bool {
	if !caseSensitive && !hasUpper(pattern) {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(pattern))
	}
	return strings.Contains(haystack, pattern)
}

func hasUpper(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

// Retain removes every device not on a path to a match; when ExcludeEmptyBus
// is set it then drops buses left with no devices. Empty buses are kept
// otherwise.
func Retain(sp *profile.SystemProfile, f Filter) {
	var kept []*profile.Bus
	for _, b := range sp.Buses {
		b.Devices = retainDevices(b.Devices, f)
		if len(b.Devices) == 0 && f.ExcludeEmptyBus {
			continue
		}
		kept = append(kept, b)
	}
	sp.Buses = kept
}

func retainDevices(devices []*profile.Device, f Filter) []*profile.Device {
	var kept []*profile.Device
	for _, d := range devices {
		d.Children = retainDevices(d.Children, f)

		rootOK := !d.IsRootHub || f.NoExcludeRootHub
		emptyHub := f.ExcludeEmptyHub && d.Class.BaseClass == descriptor.ClassHub && len(d.Children) == 0
		if rootOK && !emptyHub && (f.Matches(d) || len(d.Children) > 0) {
			kept = append(kept, d)
		}
	}
	return kept
}

// Hide marks devices and buses that don't match f as hidden, a
// rendering-only flag that leaves tree structure untouched.
type HiddenSet struct {
	devices map[*profile.Device]bool
	buses   map[*profile.Bus]bool
}

// Hide computes the set of devices/buses that should be hidden from
// rendering for the given filter, without mutating the tree.
func Hide(sp *profile.SystemProfile, f Filter) *HiddenSet {
	hs := &HiddenSet{devices: make(map[*profile.Device]bool), buses: make(map[*profile.Bus]bool)}
	for _, b := range sp.Buses {
		anyVisible := hideDevices(b.Devices, f, hs)
		if !anyVisible && f.ExcludeEmptyBus {
			hs.buses[b] = true
		}
	}
	return hs
}

func hideDevices(devices []*profile.Device, f Filter, hs *HiddenSet) bool {
	anyVisible := false
	for _, d := range devices {
		childVisible := hideDevices(d.Children, f, hs)

		rootOK := !d.IsRootHub || f.NoExcludeRootHub
		emptyHub := f.ExcludeEmptyHub && d.Class.BaseClass == descriptor.ClassHub && !childVisible
		visible := rootOK && !emptyHub && (f.Matches(d) || childVisible)

		if !visible {
			hs.devices[d] = true
		} else {
			anyVisible = true
		}
	}
	return anyVisible
}

// IsDeviceHidden reports whether d was marked hidden by a prior Hide call.
func (hs *HiddenSet) IsDeviceHidden(d *profile.Device) bool { return hs.devices[d] }

// IsBusHidden reports whether b was marked hidden by a prior Hide call.
func (hs *HiddenSet) IsBusHidden(b *profile.Bus) bool { return hs.buses[b] }
