// Package theme resolves per-device icon and colour choices for the
// (out-of-scope) renderer, keyed by vendor/product with a fallback chain.
package theme

import "fmt"

// Entry is one theme record: an icon glyph/name and an ANSI colour name.
type Entry struct {
	Icon  string
	Color string
}

// Theme is a named table of Entry records keyed by lookup key (see Key*
// below), plus the entries used when no more specific key matches.
type Theme struct {
	Name    string
	entries map[string]Entry

	UnknownVendor Entry
	Default       Entry
}

// New builds an empty Theme with the given fallback entries.
func New(name string, unknownVendor, def Entry) *Theme {
	return &Theme{Name: name, entries: make(map[string]Entry), UnknownVendor: unknownVendor, Default: def}
}

// Set installs an entry under an explicit key (see KeyVidPid etc).
func (t *Theme) Set(key string, e Entry) {
	t.entries[key] = e
}

// KeyVidPid is the most specific lookup key: an exact vendor/product match.
func KeyVidPid(vid, pid uint16) string {
	return fmt.Sprintf("vidpid:%04x:%04x", vid, pid)
}

// KeyVidPidMsb matches on vendor and the product ID's most significant
// byte, for vendors that batch product families by PID range.
func KeyVidPidMsb(vid, pid uint16) string {
	return fmt.Sprintf("vidpidmsb:%04x:%02x", vid, pid>>8)
}

// KeyVid matches on vendor alone.
func KeyVid(vid uint16) string {
	return fmt.Sprintf("vid:%04x", vid)
}

// KeyClass matches on USB base class, used by Resolve's class fallback
// when no vendor-keyed entry exists.
func KeyClass(class uint8) string {
	return fmt.Sprintf("class:%02x", class)
}

// Resolve looks up the entry for (vid, pid, class) using the precedence
// VidPid -> VidPidMsb -> Vid -> Class -> UnknownVendor -> Default.
func (t *Theme) Resolve(vid, pid uint16, class uint8) Entry {
	if e, ok := t.entries[KeyVidPid(vid, pid)]; ok {
		return e
	}
	if e, ok := t.entries[KeyVidPidMsb(vid, pid)]; ok {
		return e
	}
	if e, ok := t.entries[KeyVid(vid)]; ok {
		return e
	}
	if e, ok := t.entries[KeyClass(class)]; ok {
		return e
	}
	if vid == 0 {
		return t.UnknownVendor
	}
	return t.Default
}

// DefaultTheme is the built-in fallback table used when no theme file is
// configured or found.
func DefaultTheme() *Theme {
	t := New("default", Entry{Icon: "?", Color: "white"}, Entry{Icon: "", Color: "white"})
	t.Set(KeyClass(0x09), Entry{Icon: "", Color: "yellow"})   // Hub
	t.Set(KeyClass(0x03), Entry{Icon: "", Color: "cyan"})     // HID
	t.Set(KeyClass(0x01), Entry{Icon: "", Color: "magenta"})  // Audio
	t.Set(KeyClass(0x0e), Entry{Icon: "", Color: "magenta"})  // Video
	t.Set(KeyClass(0x08), Entry{Icon: "", Color: "green"})    // Mass Storage
	t.Set(KeyVid(0x1d6b), Entry{Icon: "", Color: "yellow"})   // Linux Foundation root hubs
	return t
}
