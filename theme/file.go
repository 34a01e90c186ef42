package theme

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// file is the on-disk shape of a theme file: flat maps keyed by the same
// hex strings KeyVidPid/KeyVid/KeyClass would produce, minus the prefix,
// so a theme file reads naturally (e.g. "1d6b" under [vid]).
type file struct {
	VidPid        map[string]Entry `json:"vidpid,omitempty" yaml:"vidpid,omitempty" toml:"vidpid,omitempty"`
	VidPidMsb     map[string]Entry `json:"vidpid_msb,omitempty" yaml:"vidpid_msb,omitempty" toml:"vidpid_msb,omitempty"`
	Vid           map[string]Entry `json:"vid,omitempty" yaml:"vid,omitempty" toml:"vid,omitempty"`
	Class         map[string]Entry `json:"class,omitempty" yaml:"class,omitempty" toml:"class,omitempty"`
	UnknownVendor Entry            `json:"unknown_vendor" yaml:"unknown_vendor" toml:"unknown_vendor"`
	Default       Entry            `json:"default" yaml:"default" toml:"default"`
}

// LoadFile reads a theme from path, dispatching on its extension (.json,
// .yaml/.yml, .toml). The entries it defines are layered on top of
// DefaultTheme so an incomplete theme file still resolves every class.
func LoadFile(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f file
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		return nil, errors.New("unrecognized theme file extension: " + path)
	}
	if err != nil {
		return nil, err
	}

	t := DefaultTheme()
	t.Name = filepath.Base(path)
	for k, e := range f.VidPid {
		vid, pid, perr := splitVidPid(k)
		if perr != nil {
			return nil, perr
		}
		t.Set(KeyVidPid(vid, pid), e)
	}
	for k, e := range f.VidPidMsb {
		vid, msb, perr := splitVidMsb(k)
		if perr != nil {
			return nil, perr
		}
		t.Set(KeyVidPidMsb(vid, uint16(msb)<<8), e)
	}
	for k, e := range f.Vid {
		vid, perr := parseHex16(k)
		if perr != nil {
			return nil, perr
		}
		t.Set(KeyVid(vid), e)
	}
	for k, e := range f.Class {
		class, perr := parseHex8(k)
		if perr != nil {
			return nil, perr
		}
		t.Set(KeyClass(class), e)
	}
	if f.UnknownVendor != (Entry{}) {
		t.UnknownVendor = f.UnknownVendor
	}
	if f.Default != (Entry{}) {
		t.Default = f.Default
	}
	return t, nil
}

func splitVidPid(k string) (uint16, uint16, error) {
	parts := strings.SplitN(k, ":", 2)
	if len(parts) != 2 {
		return 0, 0, errors.New("theme: vidpid key must be VID:PID, got " + k)
	}
	vid, err := parseHex16(parts[0])
	if err != nil {
		return 0, 0, err
	}
	pid, err := parseHex16(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return vid, pid, nil
}

func splitVidMsb(k string) (uint16, uint8, error) {
	parts := strings.SplitN(k, ":", 2)
	if len(parts) != 2 {
		return 0, 0, errors.New("theme: vidpid_msb key must be VID:MSB, got " + k)
	}
	vid, err := parseHex16(parts[0])
	if err != nil {
		return 0, 0, err
	}
	msb, err := parseHex8(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return vid, msb, nil
}

func parseHex16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 16, 16)
	return uint16(v), err
}

func parseHex8(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	return uint8(v), err
}
