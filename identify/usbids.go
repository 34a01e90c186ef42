// Package identify resolves vendor, product, and class names against a
// static USB-IDs database, and on Linux also offers a udev hardware
// database query (HWDBQuery), which the profiler consults before the table.
package identify

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Database is a parsed usb.ids-format vendor/product/class table.
type Database struct {
	mu sync.RWMutex

	vendors  map[uint16]vendorEntry
	classes  map[uint8]classEntry
	loaded   bool
	loadedAt string
}

type vendorEntry struct {
	Name     string
	Products map[uint16]string
}

type classEntry struct {
	Name       string
	SubClasses map[uint8]subClassEntry
}

type subClassEntry struct {
	Name      string
	Protocols map[uint8]string
}

// DefaultPaths are searched, in order, for a system-installed usb.ids file.
var DefaultPaths = []string{
	"/usr/share/hwdata/usb.ids",
	"/usr/share/usb.ids",
	"/var/lib/usbutils/usb.ids",
}

// Global is the package-level database, seeded with a small built-in table
// and lazily backed by DefaultPaths the first time a lookup is made.
var Global = New()

// New builds a Database seeded with a minimal built-in vendor/class table,
// sufficient to render sensible names before (or without) a system usb.ids.
func New() *Database {
	db := &Database{
		vendors: make(map[uint16]vendorEntry),
		classes: make(map[uint8]classEntry),
	}
	db.seed()
	return db
}

func (db *Database) seed() {
	db.vendors[0x1d6b] = vendorEntry{Name: "Linux Foundation", Products: map[uint16]string{
		0x0001: "1.1 root hub", 0x0002: "2.0 root hub", 0x0003: "3.0 root hub",
	}}
	db.vendors[0x174c] = vendorEntry{Name: "ASMedia Technology Inc.", Products: map[uint16]string{
		0x2074: "ASM1074 High-Speed hub", 0x3074: "ASM1074 SuperSpeed hub",
	}}
	db.vendors[0x0e8d] = vendorEntry{Name: "MediaTek Inc.", Products: map[uint16]string{0x0616: "Wireless_Device"}}
	db.vendors[0x05e3] = vendorEntry{Name: "Genesys Logic, Inc.", Products: map[uint16]string{0x0608: "Hub"}}
	db.vendors[0x046d] = vendorEntry{Name: "Logitech, Inc.", Products: map[uint16]string{0x08e5: "C920 PRO HD Webcam"}}
	db.vendors[0x2ca3] = vendorEntry{Name: "DJI Technology Co., Ltd.", Products: map[uint16]string{0x0023: "OsmoAction4"}}

	classNames := map[uint8]string{
		0x00: "(Defined at Interface level)",
		0x01: "Audio",
		0x02: "Communications and CDC Control",
		0x03: "Human Interface Device",
		0x05: "Physical",
		0x06: "Image",
		0x07: "Printer",
		0x08: "Mass Storage",
		0x09: "Hub",
		0x0a: "CDC Data",
		0x0b: "Smart Card",
		0x0d: "Content Security",
		0x0e: "Video",
		0x0f: "Personal Healthcare",
		0x10: "Audio/Video",
		0x11: "Billboard",
		0x12: "USB Type-C Bridge",
		0xdc: "Diagnostic",
		0xe0: "Wireless",
		0xef: "Miscellaneous",
		0xfe: "Application Specific",
		0xff: "Vendor Specific",
	}
	for code, name := range classNames {
		db.classes[code] = classEntry{Name: name}
	}
}

// LoadFromFile replaces the database's contents with a full usb.ids file,
// parsed in the standard format: vendor lines flush-left, product lines
// tab-indented under their vendor, "C <class>" lines starting a class
// section, tab-indented subclass lines, and double-tab-indented protocol
// lines.
func (db *Database) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	db.mu.Lock()
	defer db.mu.Unlock()

	vendors := make(map[uint16]vendorEntry)
	classes := make(map[uint8]classEntry)

	var curVendor uint16
	var curClass uint8
	var curSubClass uint8
	section := sectionNone

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(strings.TrimSpace(line)) == 0 || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		depth := indentDepth(line)
		trimmed := strings.TrimLeft(line, "\t")

		if depth == 0 {
			if strings.HasPrefix(trimmed, "C ") {
				section = sectionClass
				code, name, ok := parseHexLine(trimmed[2:])
				if !ok {
					continue
				}
				curClass = uint8(code)
				classes[curClass] = classEntry{Name: name, SubClasses: make(map[uint8]subClassEntry)}
				continue
			}
			if strings.HasPrefix(trimmed, "AT ") || strings.HasPrefix(trimmed, "HID ") ||
				strings.HasPrefix(trimmed, "R ") || strings.HasPrefix(trimmed, "L ") {
				section = sectionOther
				continue
			}
			vid, name, ok := parseHexLine(trimmed)
			if !ok {
				section = sectionOther
				continue
			}
			section = sectionVendor
			curVendor = uint16(vid)
			vendors[curVendor] = vendorEntry{Name: name, Products: make(map[uint16]string)}
			continue
		}

		switch section {
		case sectionVendor:
			if depth != 1 {
				continue
			}
			pid, name, ok := parseHexLine(trimmed)
			if !ok {
				continue
			}
			v := vendors[curVendor]
			if v.Products == nil {
				v.Products = make(map[uint16]string)
			}
			v.Products[uint16(pid)] = name
			vendors[curVendor] = v
		case sectionClass:
			c := classes[curClass]
			if c.SubClasses == nil {
				c.SubClasses = make(map[uint8]subClassEntry)
			}
			if depth == 1 {
				sub, name, ok := parseHexLine(trimmed)
				if !ok {
					continue
				}
				curSubClass = uint8(sub)
				c.SubClasses[curSubClass] = subClassEntry{Name: name, Protocols: make(map[uint8]string)}
			} else if depth == 2 {
				proto, name, ok := parseHexLine(trimmed)
				if !ok {
					continue
				}
				s := c.SubClasses[curSubClass]
				if s.Protocols == nil {
					s.Protocols = make(map[uint8]string)
				}
				s.Protocols[uint8(proto)] = name
				c.SubClasses[curSubClass] = s
			}
			classes[curClass] = c
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	db.vendors = vendors
	db.classes = classes
	db.loaded = true
	db.loadedAt = path
	return nil
}

type section int

const (
	sectionNone section = iota
	sectionVendor
	sectionClass
	sectionOther
)

func indentDepth(line string) int {
	n := 0
	for n < len(line) && line[n] == '\t' {
		n++
	}
	return n
}

func parseHexLine(s string) (code uint64, name string, ok bool) {
	s = strings.TrimSpace(s)
	sp := strings.IndexAny(s, " \t")
	if sp < 0 {
		return 0, "", false
	}
	hexPart := s[:sp]
	code, err := strconv.ParseUint(hexPart, 16, 32)
	if err != nil {
		return 0, "", false
	}
	return code, strings.TrimSpace(s[sp+1:]), true
}

// Vendor returns the vendor name for vid, or "" if unknown.
func (db *Database) Vendor(vid uint16) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.vendors[vid].Name
}

// Product returns the product name for (vid, pid), or "" if unknown.
func (db *Database) Product(vid, pid uint16) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.vendors[vid]
	if !ok {
		return ""
	}
	return v.Products[pid]
}

// ClassName returns the base class name, or "" if unknown.
func (db *Database) ClassName(base uint8) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.classes[base].Name
}

// SubClassName returns the subclass name for (base, sub), or "" if unknown.
func (db *Database) SubClassName(base, sub uint8) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.classes[base]
	if !ok {
		return ""
	}
	return c.SubClasses[sub].Name
}

// ProtocolName returns the protocol name for (base, sub, proto), or "" if
// unknown.
func (db *Database) ProtocolName(base, sub, proto uint8) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.classes[base]
	if !ok {
		return ""
	}
	s, ok := c.SubClasses[sub]
	if !ok {
		return ""
	}
	return s.Protocols[proto]
}

func (db *Database) ensureLoaded() {
	db.mu.RLock()
	loaded := db.loaded
	db.mu.RUnlock()
	if loaded {
		return
	}
	for _, p := range DefaultPaths {
		if err := db.LoadFromFile(p); err == nil {
			return
		}
	}
}

// Vendor looks up vid against Global, lazily loading a system usb.ids.
func Vendor(vid uint16) string {
	Global.ensureLoaded()
	return Global.Vendor(vid)
}

// Product looks up (vid, pid) against Global, lazily loading a system usb.ids.
func Product(vid, pid uint16) string {
	Global.ensureLoaded()
	return Global.Product(vid, pid)
}

// ClassName looks up base against Global.
func ClassName(base uint8) string {
	Global.ensureLoaded()
	return Global.ClassName(base)
}

// SubClassName looks up (base, sub) against Global.
func SubClassName(base, sub uint8) string {
	Global.ensureLoaded()
	return Global.SubClassName(base, sub)
}

// ProtocolName looks up (base, sub, proto) against Global.
func ProtocolName(base, sub, proto uint8) string {
	Global.ensureLoaded()
	return Global.ProtocolName(base, sub, proto)
}
