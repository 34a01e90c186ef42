package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usbtree/usbtree/descriptor"
	"github.com/usbtree/usbtree/profile"
)

func buildTree() *profile.SystemProfile {
	sp := &profile.SystemProfile{}
	root := &profile.Device{Name: "root hub", IsRootHub: true, Location: profile.DeviceLocation{Bus: 1}}
	zero := &profile.Device{Name: "Arduino Zero", Location: profile.DeviceLocation{Bus: 1, TreePositions: []int{1}}}
	micro := &profile.Device{Name: "arduino micro", Location: profile.DeviceLocation{Bus: 1, TreePositions: []int{2}}}
	sp.Insert(root)
	sp.Insert(zero)
	sp.Insert(micro)
	return sp
}

func TestFilterSmartCaseLowercaseMatchesBoth(t *testing.T) {
	require.True(t, smartCaseContains("Arduino Zero", "arduino", false))
	require.True(t, smartCaseContains("arduino micro", "arduino", false))
}

func TestFilterSmartCaseUppercaseMatchesOnlyExact(t *testing.T) {
	require.True(t, smartCaseContains("Arduino Zero", "Arduino", false))
	require.False(t, smartCaseContains("arduino micro", "Arduino", false))
}

func TestRetainByNameKeepsOnlyMatches(t *testing.T) {
	sp := buildTree()
	Retain(sp, Filter{Name: "Arduino"})

	flat := sp.Flatten()
	var names []string
	for _, d := range flat {
		if !d.IsRootHub {
			names = append(names, d.Name)
		}
	}
	require.Equal(t, []string{"Arduino Zero"}, names)
}

func TestRetainIdempotent(t *testing.T) {
	sp := buildTree()
	f := Filter{Name: "arduino"}
	Retain(sp, f)
	firstLen := len(sp.Flatten())
	Retain(sp, f)
	require.Equal(t, firstLen, len(sp.Flatten()))
}

func TestRetainMonotonicityNeverIncreasesDeviceCount(t *testing.T) {
	sp := buildTree()
	before := len(sp.Flatten())
	Retain(sp, Filter{Name: "arduino"})
	after := len(sp.Flatten())
	require.LessOrEqual(t, after, before)
}

func TestRetainDropsRootHubByDefault(t *testing.T) {
	sp := buildTree()
	Retain(sp, Filter{})

	for _, d := range sp.Flatten() {
		require.False(t, d.IsRootHub, "root hub should be dropped when NoExcludeRootHub is unset")
	}
}

func TestRetainKeepsRootHubWhenNoExcludeRootHubSet(t *testing.T) {
	sp := buildTree()
	Retain(sp, Filter{NoExcludeRootHub: true})

	var sawRootHub bool
	for _, d := range sp.Flatten() {
		if d.IsRootHub {
			sawRootHub = true
		}
	}
	require.True(t, sawRootHub)
}

func TestRetainDropsEmptyHubWhenExcludeEmptyHubSet(t *testing.T) {
	sp := &profile.SystemProfile{}
	root := &profile.Device{Name: "root hub", IsRootHub: true, Location: profile.DeviceLocation{Bus: 1}}
	emptyHub := &profile.Device{
		Name:     "empty hub",
		Location: profile.DeviceLocation{Bus: 1, TreePositions: []int{1}},
		Class:    descriptor.ClassTriplet{BaseClass: descriptor.ClassHub},
	}
	sp.Insert(root)
	sp.Insert(emptyHub)

	Retain(sp, Filter{NoExcludeRootHub: true, ExcludeEmptyHub: true})

	for _, d := range sp.Flatten() {
		require.NotEqual(t, "empty hub", d.Name)
	}
}

func TestRetainKeepsHubWithSurvivingChildren(t *testing.T) {
	sp := &profile.SystemProfile{}
	root := &profile.Device{Name: "root hub", IsRootHub: true, Location: profile.DeviceLocation{Bus: 1}}
	hub := &profile.Device{
		Name:     "hub",
		Location: profile.DeviceLocation{Bus: 1, TreePositions: []int{1}},
		Class:    descriptor.ClassTriplet{BaseClass: descriptor.ClassHub},
	}
	child := &profile.Device{Name: "Arduino Zero", Location: profile.DeviceLocation{Bus: 1, TreePositions: []int{1, 1}}}
	sp.Insert(root)
	sp.Insert(hub)
	sp.Insert(child)

	Retain(sp, Filter{NoExcludeRootHub: true, ExcludeEmptyHub: true, Name: "Arduino"})

	var names []string
	for _, d := range sp.Flatten() {
		names = append(names, d.Name)
	}
	require.Contains(t, names, "hub")
	require.Contains(t, names, "Arduino Zero")
}

func TestHideDropsRootHubByDefault(t *testing.T) {
	sp := buildTree()
	hs := Hide(sp, Filter{})

	for _, d := range sp.Flatten() {
		if d.IsRootHub {
			require.True(t, hs.IsDeviceHidden(d))
		}
	}
}

func TestHideLeavesTreeStructureIntact(t *testing.T) {
	sp := buildTree()
	before := len(sp.Flatten())
	hs := Hide(sp, Filter{Name: "Arduino"})
	after := len(sp.Flatten())
	require.Equal(t, before, after)

	flat := sp.Flatten()
	for _, d := range flat {
		if d.Name == "arduino micro" {
			require.True(t, hs.IsDeviceHidden(d))
		}
		if d.Name == "Arduino Zero" {
			require.False(t, hs.IsDeviceHidden(d))
		}
	}
}
