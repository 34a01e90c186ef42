//go:build linux

package native

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePortsFromSysfsNameTrunk(t *testing.T) {
	require.Equal(t, []int{2}, parsePortsFromSysfsName("1-2"))
}

func TestParsePortsFromSysfsNameNested(t *testing.T) {
	require.Equal(t, []int{2, 3}, parsePortsFromSysfsName("1-2.3"))
}

func TestParsePortsFromSysfsNameRootHub(t *testing.T) {
	require.Nil(t, parsePortsFromSysfsName("usb1"))
}
