package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePrefersVidPidOverVidPidMsb(t *testing.T) {
	th := New("t", Entry{Icon: "?"}, Entry{})
	th.Set(KeyVidPid(0x1234, 0x5678), Entry{Icon: "exact"})
	th.Set(KeyVidPidMsb(0x1234, 0x5678), Entry{Icon: "msb"})
	th.Set(KeyVid(0x1234), Entry{Icon: "vid"})

	require.Equal(t, "exact", th.Resolve(0x1234, 0x5678, 0).Icon)
}

func TestResolveFallsBackToVidPidMsb(t *testing.T) {
	th := New("t", Entry{Icon: "?"}, Entry{})
	th.Set(KeyVidPidMsb(0x1234, 0x5601), Entry{Icon: "msb"})

	require.Equal(t, "msb", th.Resolve(0x1234, 0x5699, 0).Icon)
}

func TestResolveFallsBackToVid(t *testing.T) {
	th := New("t", Entry{Icon: "?"}, Entry{})
	th.Set(KeyVid(0x1234), Entry{Icon: "vid"})

	require.Equal(t, "vid", th.Resolve(0x1234, 0xffff, 0).Icon)
}

func TestResolveFallsBackToClassThenUnknownVendor(t *testing.T) {
	th := New("t", Entry{Icon: "unknown"}, Entry{Icon: "default"})
	th.Set(KeyClass(0x09), Entry{Icon: "hub"})

	require.Equal(t, "hub", th.Resolve(0x1234, 0x5678, 0x09).Icon)
	require.Equal(t, "unknown", th.Resolve(0, 0x5678, 0x01).Icon)
}

func TestResolveFallsBackToDefault(t *testing.T) {
	th := New("t", Entry{Icon: "unknown"}, Entry{Icon: "default"})
	require.Equal(t, "default", th.Resolve(0x1234, 0x5678, 0x00).Icon)
}

func TestDefaultThemeResolvesHubAndUnknownVendor(t *testing.T) {
	th := DefaultTheme()
	require.Equal(t, "yellow", th.Resolve(0x9999, 0x0001, 0x09).Color)
	require.Equal(t, "white", th.Resolve(0, 0, 0).Color)
}
