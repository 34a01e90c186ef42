// Command usbtree is a thin front end over the profiler/filter/theme
// stack: it enumerates the host's USB topology and prints either a text
// tree or a JSON dump. It renders; it does not decide anything the
// profiler or filter packages haven't already decided.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/usbtree/usbtree/config"
	"github.com/usbtree/usbtree/filter"
	"github.com/usbtree/usbtree/identify"
	"github.com/usbtree/usbtree/profile"
	"github.com/usbtree/usbtree/profiler"
	"github.com/usbtree/usbtree/theme"
	"github.com/usbtree/usbtree/usbtreelog"
)

// Globals are the flags shared by every subcommand.
type Globals struct {
	Config      string `help:"Path to a config file (json/yaml/toml); overrides the default search path." type:"path"`
	ThemeFile   string `help:"Path to a theme file (json/yaml/toml) layered on top of the built-in theme." type:"path"`
	WithExtra   bool   `help:"Open every device and decode its configuration/hub/BOS/qualifier descriptors." short:"x"`
	UsbIDsPath  string `help:"Path to a usb.ids file, in place of the system-installed one."`
	ForceLibusb bool   `help:"Use the libusb backend instead of the platform-native one."`
	Verbose     int    `help:"Increase logging verbosity; repeatable." short:"v" type:"counter"`

	Vendor  string `help:"Filter: vendor ID in hex, e.g. 1d6b." short:"V"`
	Product string `help:"Filter: product ID in hex, e.g. 0002." short:"P"`
	Bus     int    `help:"Filter: bus number (0 means unset)."`
	Number  int    `help:"Filter: device number on its bus (0 means unset)."`
	Name    string `help:"Filter: substring of the device name (smart-case)."`
	Serial  string `help:"Filter: substring of the device serial (smart-case)."`

	ExcludeEmptyBus  bool `help:"Drop buses with no devices after filtering."`
	ExcludeEmptyHub  bool `help:"Drop hub devices left with no children after filtering."`
	NoExcludeRootHub bool `help:"Keep root hub pseudo-devices even when they'd otherwise be hidden."`
	Hide             bool `help:"Mark non-matching devices hidden instead of removing them."`
}

// CLI is the full command tree, bound by kong.Parse.
type CLI struct {
	Globals

	List ListCmd `cmd:"" help:"Print the USB topology as an indented tree."`
	JSON JSONCmd `cmd:"" help:"Dump the USB topology as JSON."`
}

func main() {
	userConfig := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := splitByFormat(candidatePaths(userConfig))

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("usbtree"),
		kong.Description("Cross-platform USB bus inspector."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	switch {
	case cli.Verbose >= 2:
		usbtreelog.SetLevel(usbtreelog.LevelDebug)
	case cli.Verbose == 1:
		usbtreelog.SetLevel(usbtreelog.LevelInfo)
	default:
		usbtreelog.SetLevel(usbtreelog.LevelWarn)
	}

	if cli.UsbIDsPath != "" {
		if err := identify.Global.LoadFromFile(cli.UsbIDsPath); err != nil {
			usbtreelog.Warnf("loading usb.ids from %s: %v", cli.UsbIDsPath, err)
		}
	}

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// candidatePaths returns the config file paths kong should try, in order:
// an explicit --config path first, then the default per-format names under
// the platform config directory.
func candidatePaths(explicit string) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	if dir, err := config.DefaultDir(); err == nil {
		paths = append(paths, config.CandidatePaths(dir)...)
	}
	return paths
}

func splitByFormat(paths []string) (jsonPaths, yamlPaths, tomlPaths []string) {
	for _, p := range paths {
		switch filepath.Ext(p) {
		case ".json":
			jsonPaths = append(jsonPaths, p)
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, p)
		case ".toml":
			tomlPaths = append(tomlPaths, p)
		}
	}
	return
}

func findUserConfig(args []string) string {
	for i, a := range args {
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if len(a) > len("--config=") && a[:len("--config=")] == "--config=" {
			return a[len("--config="):]
		}
	}
	if v := os.Getenv("USBTREE_CONFIG"); v != "" {
		return v
	}
	return ""
}

// buildFilter translates the shared flags into a filter.Filter.
func buildFilter(g *Globals) (filter.Filter, error) {
	f := filter.Filter{
		Name:             g.Name,
		Serial:           g.Serial,
		ExcludeEmptyBus:  g.ExcludeEmptyBus,
		ExcludeEmptyHub:  g.ExcludeEmptyHub,
		NoExcludeRootHub: g.NoExcludeRootHub,
	}
	if g.Vendor != "" {
		vid, err := strconv.ParseUint(g.Vendor, 16, 16)
		if err != nil {
			return f, fmt.Errorf("invalid --vendor %q: %w", g.Vendor, err)
		}
		v := uint16(vid)
		f.VendorID = &v
	}
	if g.Product != "" {
		pid, err := strconv.ParseUint(g.Product, 16, 16)
		if err != nil {
			return f, fmt.Errorf("invalid --product %q: %w", g.Product, err)
		}
		p := uint16(pid)
		f.ProductID = &p
	}
	if g.Bus != 0 {
		b := g.Bus
		f.Bus = &b
	}
	if g.Number != 0 {
		n := g.Number
		f.Number = &n
	}
	return f, nil
}

func loadTheme(path string) *theme.Theme {
	if path == "" {
		return theme.DefaultTheme()
	}
	t, err := theme.LoadFile(path)
	if err != nil {
		usbtreelog.Warnf("loading theme from %s: %v", path, err)
		return theme.DefaultTheme()
	}
	return t
}

// buildProfile runs the profiler/filter pipeline common to every subcommand.
func buildProfile(g *Globals) (*profileResult, error) {
	backend, err := selectBackend(g.ForceLibusb)
	if err != nil {
		return nil, err
	}
	if closer, ok := backend.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	sp, err := profiler.GetSPUSB(backend, g.WithExtra)
	if err != nil {
		return nil, err
	}

	f, err := buildFilter(g)
	if err != nil {
		return nil, err
	}

	var hidden *filter.HiddenSet
	if g.Hide {
		hidden = filter.Hide(sp, f)
	} else {
		filter.Retain(sp, f)
	}

	return &profileResult{profile: sp, hidden: hidden, theme: loadTheme(g.ThemeFile)}, nil
}

type profileResult struct {
	profile *profile.SystemProfile
	hidden  *filter.HiddenSet
	theme   *theme.Theme
}
