package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_ContainsIsCaseInsensitive(t *testing.T) {
	s := NewSet([]string{"CryptoProto"})

	assert.True(t, s.Contains("cryptoproto"))
	assert.True(t, s.Contains("CRYPTOPROTO"))
	assert.True(t, s.Contains("CryptoProto"))
	assert.False(t, s.Contains("otherproto"))
}

func TestSet_AddIsIdempotent(t *testing.T) {
	s := NewSet(nil)

	s.Add("alpha")
	s.Add("Alpha")
	s.Add("ALPHA")

	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains("alpha"))
}

func TestSet_SeededMembers(t *testing.T) {
	s := NewSet([]string{"one", "Two", "TWO"})

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("ONE"))
	assert.True(t, s.Contains("two"))
}

func TestSet_Empty(t *testing.T) {
	s := NewSet(nil)

	assert.Zero(t, s.Len())
	assert.False(t, s.Contains("anything"))
}
