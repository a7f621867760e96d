package signals

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EmbeddedRegistry(t *testing.T) {
	r := Default()
	assert.Greater(t, r.Len(), 190)
	assert.Equal(t, DefaultWeight, r.FallbackWeight())

	// One handle per tier.
	assert.Equal(t, 100, r.Weight("NTmoney"))
	assert.Equal(t, 90, r.Weight("MonetSupply"))
	assert.Equal(t, 80, r.Weight("WuCarra"))
	assert.Equal(t, 70, r.Weight("bitcoinPalmer"))
	assert.Equal(t, 60, r.Weight("fvckrender"))
}

func TestRegistry_Weight_CaseInsensitive(t *testing.T) {
	r := Default()
	assert.Equal(t, 100, r.Weight("ntmoney"))
	assert.Equal(t, 100, r.Weight("NTMONEY"))
}

func TestRegistry_Weight_UnregisteredDefault(t *testing.T) {
	r := Default()
	assert.Equal(t, DefaultWeight, r.Weight("nobody_in_particular"))
}

func TestRegistry_Handles_PreservesOrder(t *testing.T) {
	r := New([]SignalAccount{
		{Handle: "charlie", Weight: 100},
		{Handle: "alpha", Weight: 80},
		{Handle: "bravo", Weight: 60},
	}, DefaultWeight)

	assert.Equal(t, []string{"charlie", "alpha", "bravo"}, r.Handles())
}

func TestNew_IgnoresCaseInsensitiveDuplicates(t *testing.T) {
	r := New([]SignalAccount{
		{Handle: "Alpha", Weight: 100},
		{Handle: "alpha", Weight: 60},
	}, DefaultWeight)

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 100, r.Weight("ALPHA"))
}

func TestRegistry_Contains(t *testing.T) {
	r := New([]SignalAccount{{Handle: "Alpha", Weight: 80}}, DefaultWeight)
	assert.True(t, r.Contains("alpha"))
	assert.False(t, r.Contains("beta"))
}

func writeRegistryFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeRegistryFile(t, `{
		"default_weight": 50,
		"accounts": [
			{"handle": "alpha", "weight": 100},
			{"handle": "beta", "weight": 60}
		]
	}`)

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 100, r.Weight("alpha"))
	assert.Equal(t, 50, r.Weight("unknown"))
}

func TestLoad_DefaultWeightOmitted(t *testing.T) {
	path := writeRegistryFile(t, `{"accounts": [{"handle": "alpha", "weight": 80}]}`)

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultWeight, r.FallbackWeight())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read registry file")
}

func TestLoad_EmptyAccounts(t *testing.T) {
	path := writeRegistryFile(t, `{"accounts": []}`)

	_, err := Load(path)
	require.Error(t, err)

	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestLoad_OutOfTierWeight(t *testing.T) {
	path := writeRegistryFile(t, `{"accounts": [{"handle": "alpha", "weight": 55}]}`)

	_, err := Load(path)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeRegistryFile(t, `{"accounts": [{"handle": "alpha", "weight": 80, "notes": "x"}]}`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeRegistryFile(t, `{"accounts": [`)

	_, err := Load(path)
	require.Error(t, err)
}
