package packages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterAllows(t *testing.T) {
	f, err := NewFilter([]string{"fedora*", "updates"}, []string{"*-debuginfo"})
	require.NoError(t, err)

	assert.True(t, f.Allows("fedora"))
	assert.True(t, f.Allows("fedora-cisco-openh264"))
	assert.True(t, f.Allows("updates"))
	assert.False(t, f.Allows("fedora-debuginfo"))
	assert.False(t, f.Allows("rpmfusion-free"))
}

func TestFilterEmptyIncludeAdmitsAll(t *testing.T) {
	f, err := NewFilter(nil, []string{"*-source"})
	require.NoError(t, err)

	assert.True(t, f.Allows("anything"))
	assert.False(t, f.Allows("updates-source"))
}

func TestNilFilterAdmitsAll(t *testing.T) {
	var f *Filter
	assert.True(t, f.Allows("fedora"))
}

func TestNewFilterRejectsBadPattern(t *testing.T) {
	_, err := NewFilter([]string{"[unclosed"}, nil)
	assert.Error(t, err)
}
