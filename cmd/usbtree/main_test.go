package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildFilterParsesHexIDs(t *testing.T) {
	f, err := buildFilter(&Globals{Vendor: "1d6b", Product: "0002"})
	require.NoError(t, err)
	require.NotNil(t, f.VendorID)
	require.Equal(t, uint16(0x1d6b), *f.VendorID)
	require.NotNil(t, f.ProductID)
	require.Equal(t, uint16(0x0002), *f.ProductID)
}

func TestBuildFilterRejectsBadHex(t *testing.T) {
	_, err := buildFilter(&Globals{Vendor: "zzzz"})
	require.Error(t, err)
}

func TestBuildFilterLeavesUnsetFieldsNil(t *testing.T) {
	f, err := buildFilter(&Globals{})
	require.NoError(t, err)
	require.Nil(t, f.VendorID)
	require.Nil(t, f.ProductID)
	require.Nil(t, f.Bus)
	require.Nil(t, f.Number)
}

func TestSplitByFormatGroupsByExtension(t *testing.T) {
	jsonPaths, yamlPaths, tomlPaths := splitByFormat([]string{
		"/a/config.json", "/a/config.yaml", "/a/config.yml", "/a/config.toml", "/a/config.ini",
	})
	require.Equal(t, []string{"/a/config.json"}, jsonPaths)
	require.Equal(t, []string{"/a/config.yaml", "/a/config.yml"}, yamlPaths)
	require.Equal(t, []string{"/a/config.toml"}, tomlPaths)
}

func TestFindUserConfigPrefersExplicitFlag(t *testing.T) {
	require.Equal(t, "custom.toml", findUserConfig([]string{"list", "--config", "custom.toml"}))
	require.Equal(t, "custom.toml", findUserConfig([]string{"list", "--config=custom.toml"}))
	require.Equal(t, "", findUserConfig([]string{"list"}))
}
