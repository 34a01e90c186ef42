package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFileJSONOverridesVidPid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.json")
	body := `{
		"vidpid": {"1d6b:0002": {"icon": "hub2", "color": "blue"}},
		"vid": {"0403": {"icon": "ftdi", "color": "red"}},
		"unknown_vendor": {"icon": "?", "color": "grey"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	th, err := LoadFile(path)
	require.NoError(t, err)

	require.Equal(t, "hub2", th.Resolve(0x1d6b, 0x0002, 0).Icon)
	require.Equal(t, "ftdi", th.Resolve(0x0403, 0x9999, 0).Icon)
	require.Equal(t, "grey", th.Resolve(0, 0, 0).Color)

	// Entries not overridden still come from the built-in default table.
	require.Equal(t, "yellow", th.Resolve(0x9999, 0x0001, 0x09).Color)
}

func TestLoadFileYAMLVidPidMsb(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	body := "vidpid_msb:\n  \"2341:00\":\n    icon: uno\n    color: cyan\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	th, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "uno", th.Resolve(0x2341, 0x0043, 0).Icon)
}

func TestLoadFileRejectsMalformedVidPidKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.json")
	body := `{"vidpid": {"bogus": {"icon": "x"}}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}
