package publish

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV_Publish_WritesFile(t *testing.T) {
	dir := t.TempDir()
	c := NewCSV(dir)

	err := c.Publish(context.Background(), sampleAccounts(), "20250818_120000")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "NEW_WEEKLY_discoveries_20250818_120000.csv"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])

	row := records[1]
	assert.Equal(t, "Nova Protocol", row[0])
	assert.Equal(t, "novaprotocol", row[1])
	assert.Equal(t, "new defi protocol, discord.gg/x", row[2])
	assert.Equal(t, "50", row[3])
	assert.Equal(t, "2025-08-11T00:00:00", row[4])
	assert.Equal(t, "680", row[11])
	assert.Equal(t, "2025-08-18T12:00:00Z", row[12])
	assert.Equal(t, "alice", row[13])
	assert.Equal(t, "protocol, defi", row[14])
	assert.Equal(t, "Discord Channel", row[15])
	assert.Equal(t, "false", row[16])

	assert.Equal(t, "stakehaus", records[2][1])
}

func TestCSV_Publish_EmptySetWritesNothing(t *testing.T) {
	dir := t.TempDir()
	c := NewCSV(dir)

	err := c.Publish(context.Background(), nil, "20250818_120000")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCSV_Publish_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "weekly")
	c := NewCSV(dir)

	err := c.Publish(context.Background(), sampleAccounts(), "20250818_120000")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "NEW_WEEKLY_discoveries_20250818_120000.csv"))
	assert.NoError(t, err)
}

func TestCSV_Publish_QuotesEmbeddedCommas(t *testing.T) {
	dir := t.TempDir()
	c := NewCSV(dir)

	accounts := sampleAccounts()
	require.NoError(t, c.Publish(context.Background(), accounts, "20250818_130000"))

	f, err := os.Open(filepath.Join(dir, "NEW_WEEKLY_discoveries_20250818_130000.csv"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// The joined keyword list contains a comma and must survive a re-read
	// as a single field.
	assert.Equal(t, "protocol, defi", records[1][14])
	assert.Len(t, records[1], len(csvHeader))
}
