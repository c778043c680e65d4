package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"19.1.5", "19.1.5"},
		{"v19.1.5", "19.1.5"},
		{" V20.1.0 ", "20.1.0"},
		{"release-19.1.5-ATfE", "19.1.5"},
		{"19.1.5-ATfE", "19.1.5"},
		{"latest", "latest"},
		{"all", "all"},
		{"v", "v"},
		{"vendor", "vendor"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in).Name)
		})
	}
}

func TestTagRoundTrip(t *testing.T) {
	v := FromTagName("release-19.1.5-ATfE")
	assert.Equal(t, ToolchainVersion{Name: "19.1.5"}, v)
	assert.Equal(t, "release-19.1.5-ATfE", v.TagName())
	assert.Equal(t, "v19.1.5", v.String())

	// Undecorated tags pass through.
	assert.Equal(t, "nightly", FromTagName("nightly").Name)
}

func TestMetaSelectors(t *testing.T) {
	assert.True(t, Parse("latest").IsLatest())
	assert.True(t, Parse("all").IsAll())
	assert.True(t, Parse("latest").IsMeta())
	assert.False(t, Parse("19.1.5").IsMeta())
	assert.Equal(t, "latest", Parse("latest").String())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"19.1.5", "19.1.5", 0},
		{"19.1.5", "20.1.0", -1},
		{"20.1.0", "19.1.5", 1},
		{"19.1.10", "19.1.9", 1},
		{"19.1.5", "snapshot", 1},
		{"alpha", "beta", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(ToolchainVersion{tt.a}, ToolchainVersion{tt.b}))
			assert.Equal(t, -tt.want, Compare(ToolchainVersion{tt.b}, ToolchainVersion{tt.a}))
		})
	}
}

func TestSort(t *testing.T) {
	vs := []ToolchainVersion{{"20.1.0"}, {"19.1.10"}, {"custom"}, {"19.1.5"}}
	Sort(vs)
	assert.Equal(t, []ToolchainVersion{{"custom"}, {"19.1.5"}, {"19.1.10"}, {"20.1.0"}}, vs)
}
