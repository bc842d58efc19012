package market

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeListingFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestTableBuild(t *testing.T) {
	dir := t.TempDir()
	writeListingFile(t, dir, "zurich.csv",
		"zip_city;rent;p/squarem/y\n"+
			"8001 Zurich;2500;CHF 420.50\n"+
			"8001 Zurich;1800;379.50 /m2\n"+
			"8002 Zurich;2000;500\n"+
			"no zip here;1000;300\n"+ // dropped: no postal code
			"8003 Zurich;1500;n/a\n") // dropped: no numeric price

	table := NewTable(testLogger(), false)
	require.NoError(t, table.Build(dir, []string{"zurich.csv", "geneve.csv"}))

	avg, ok := table.LookupZIP(8001)
	require.True(t, ok)
	assert.Equal(t, 400.0, avg)

	avg, ok = table.LookupZIP(8002)
	require.True(t, ok)
	assert.Equal(t, 500.0, avg)

	assert.Equal(t, 2, table.Len())
}

func TestTableLookupUnknownZIP(t *testing.T) {
	dir := t.TempDir()
	writeListingFile(t, dir, "zurich.csv",
		"zip_city;p/squarem/y\n8001 Zurich;400\n")

	table := NewTable(testLogger(), false)
	require.NoError(t, table.Build(dir, []string{"zurich.csv"}))

	_, ok := table.LookupZIP(9999)
	assert.False(t, ok, "postal code absent from all files must report no data")
}

func TestTableMissingFilesSkipped(t *testing.T) {
	table := NewTable(testLogger(), false)
	require.NoError(t, table.Build(t.TempDir(), []string{"geneve.csv", "lausanne.csv"}))
	assert.Equal(t, 0, table.Len())
}

func TestTableCityGranularity(t *testing.T) {
	dir := t.TempDir()
	writeListingFile(t, dir, "geneve.csv",
		"zip_city;p/squarem/y\n"+
			"1201 Geneva;600\n"+
			"1202 Geneva;400\n")

	table := NewTable(testLogger(), true)
	require.NoError(t, table.Build(dir, []string{"geneve.csv"}))

	avg, ok := table.LookupCity("Geneva")
	require.True(t, ok)
	assert.Equal(t, 500.0, avg)

	_, ok = table.LookupCity("Lausanne")
	assert.False(t, ok)
}

func TestTableRebuildSwapsWholeTable(t *testing.T) {
	dir := t.TempDir()
	writeListingFile(t, dir, "zurich.csv",
		"zip_city;p/squarem/y\n8001 Zurich;400\n")

	table := NewTable(testLogger(), false)
	require.NoError(t, table.Build(dir, []string{"zurich.csv"}))

	writeListingFile(t, dir, "zurich.csv",
		"zip_city;p/squarem/y\n8002 Zurich;500\n")
	require.NoError(t, table.Build(dir, []string{"zurich.csv"}))

	_, ok := table.LookupZIP(8001)
	assert.False(t, ok, "rebuild must drop entries absent from the new data")
	_, ok = table.LookupZIP(8002)
	assert.True(t, ok)
}

func TestTableRoundsToTwoDecimals(t *testing.T) {
	dir := t.TempDir()
	writeListingFile(t, dir, "zurich.csv",
		"zip_city;p/squarem/y\n"+
			"8001 Zurich;100\n"+
			"8001 Zurich;100\n"+
			"8001 Zurich;101\n")

	table := NewTable(testLogger(), false)
	require.NoError(t, table.Build(dir, []string{"zurich.csv"}))

	avg, ok := table.LookupZIP(8001)
	require.True(t, ok)
	assert.Equal(t, 100.33, avg)
}
