package identify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixture = `# sample usb.ids fragment
1d6b  Linux Foundation
	0002  2.0 root hub
046d  Logitech, Inc.
	08e5  C920 PRO HD Webcam

C 03  Human Interface Device
	00  No Subclass
		00  None
	01  Boot Interface Subclass
		01  Keyboard
		02  Mouse
`

func TestDatabaseLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "usb.ids")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	db := New()
	require.NoError(t, db.LoadFromFile(path))

	require.Equal(t, "Linux Foundation", db.Vendor(0x1d6b))
	require.Equal(t, "2.0 root hub", db.Product(0x1d6b, 0x0002))
	require.Equal(t, "Logitech, Inc.", db.Vendor(0x046d))
	require.Equal(t, "C920 PRO HD Webcam", db.Product(0x046d, 0x08e5))
	require.Equal(t, "", db.Vendor(0xffff))

	require.Equal(t, "Human Interface Device", db.ClassName(0x03))
	require.Equal(t, "Boot Interface Subclass", db.SubClassName(0x03, 0x01))
	require.Equal(t, "Keyboard", db.ProtocolName(0x03, 0x01, 0x01))
	require.Equal(t, "Mouse", db.ProtocolName(0x03, 0x01, 0x02))
}

func TestDatabaseSeedHasBuiltins(t *testing.T) {
	db := New()
	require.Equal(t, "Linux Foundation", db.Vendor(0x1d6b))
	require.Equal(t, "Human Interface Device", db.ClassName(0x03))
}

func TestUSBModalias(t *testing.T) {
	require.Equal(t, "usb:v1D6Bp0002", USBModalias(0x1d6b, 0x0002))
}
