package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataContains(t *testing.T) {
	meta := &Metadata{Address: 0x1000, Size: 8, Tag: 1, Valid: true}

	assert.True(t, meta.Contains(0x1000))
	assert.True(t, meta.Contains(0x1007))
	assert.False(t, meta.Contains(0x1008))
	assert.False(t, meta.Contains(0xfff))

	var nilMeta *Metadata
	assert.False(t, nilMeta.Contains(0x1000))
}

func TestHandleEquality(t *testing.T) {
	meta := &Metadata{Address: 0x2000, Size: 16, Tag: 7, Valid: true}
	h1 := meta.Handle()
	h2 := Handle{Address: 0x2000, Tag: 7}

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, Handle{Address: 0x2000, Tag: 8})
	assert.NotEqual(t, h1, Handle{Address: 0x2008, Tag: 7})
}

func TestStringFormats(t *testing.T) {
	assert.Equal(t, "0x1000", Address(0x1000).String())
	assert.Equal(t, "0x1000#3", Handle{Address: 0x1000, Tag: 3}.String())
}
