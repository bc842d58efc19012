package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"rentfair/server/internal/apperrors"
)

var (
	// zipCityPattern splits the combined "zip + city" column, e.g.
	// "8001 Zürich" -> ("8001", "Zürich").
	zipCityPattern = regexp.MustCompile(`(\d{4})\s*(.*)`)

	// priceSanitizer strips currency symbols and unit suffixes so only the
	// numeric part of the price column survives.
	priceSanitizer = regexp.MustCompile(`[^\d.]`)
)

// Column headers expected in the listing files.
const (
	zipCityColumn = "zip_city"
	priceColumn   = "p/squarem/y"
)

// Table maps a region key (4-digit postal code, or city name when built at
// city granularity) to the mean price per m² per year observed in the
// listing data. The table is read-only between rebuilds; Rebuild swaps the
// whole mapping atomically so readers never see a partial table.
type Table struct {
	logger *logrus.Logger

	mu       sync.RWMutex
	averages map[string]float64
	byCity   bool
}

// NewTable creates an empty table. Granularity is fixed at construction:
// postal code by default, city name when byCity is set.
func NewTable(logger *logrus.Logger, byCity bool) *Table {
	return &Table{
		logger:   logger,
		averages: make(map[string]float64),
		byCity:   byCity,
	}
}

// Build reads the listing files under dir and populates the table. Missing
// files are skipped with a warning; a region without a file simply has no
// baseline. Build replaces the previous contents in one swap.
func (t *Table) Build(dir string, files []string) error {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := t.accumulateFile(path, sums, counts); err != nil {
			t.logger.WithError(err).WithField("file", name).Warn("Skipping listing file")
		}
	}

	averages := make(map[string]float64, len(sums))
	for key, sum := range sums {
		mean := sum / float64(counts[key])
		averages[key] = math.Round(mean*100) / 100
	}

	t.mu.Lock()
	t.averages = averages
	t.mu.Unlock()

	t.logger.WithField("regions", len(averages)).Info("Built market average table")
	return nil
}

// accumulateFile folds one semicolon-delimited listing file into the
// running sums. Rows with an unparseable postal code or price are dropped.
func (t *Table) accumulateFile(path string, sums map[string]float64, counts map[string]int) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", apperrors.ErrDataFileMissing, path)
		}
		return err
	}
	defer file.Close()

	// Listing exports are Latin-1 encoded.
	reader := csv.NewReader(transform.NewReader(file, charmap.ISO8859_1.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %v", err)
	}

	zipCityIdx, priceIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case zipCityColumn:
			zipCityIdx = i
		case priceColumn:
			priceIdx = i
		}
	}
	if zipCityIdx < 0 || priceIdx < 0 {
		return fmt.Errorf("missing %q or %q column", zipCityColumn, priceColumn)
	}

	rows, kept := 0, 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, not a malformed file.
			continue
		}
		rows++

		if zipCityIdx >= len(row) || priceIdx >= len(row) {
			continue
		}

		key, ok := t.regionKey(row[zipCityIdx])
		if !ok {
			continue
		}

		price, ok := parsePrice(row[priceIdx])
		if !ok {
			continue
		}

		sums[key] += price
		counts[key]++
		kept++
	}

	t.logger.WithFields(logrus.Fields{
		"file": filepath.Base(path),
		"rows": rows,
		"kept": kept,
	}).Info("Loaded listing file")
	return nil
}

// regionKey extracts the grouping key from the combined zip+city column.
func (t *Table) regionKey(zipCity string) (string, bool) {
	match := zipCityPattern.FindStringSubmatch(strings.TrimSpace(zipCity))
	if match == nil {
		return "", false
	}
	if t.byCity {
		city := strings.TrimSpace(match[2])
		if city == "" {
			return "", false
		}
		return strings.ToLower(city), true
	}
	return match[1], true
}

// parsePrice coerces a locale-formatted price cell, stripping everything
// that is not a digit or decimal point first.
func parsePrice(cell string) (float64, bool) {
	cleaned := priceSanitizer.ReplaceAllString(cell, "")
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(price) {
		return 0, false
	}
	return price, true
}

// LookupZIP returns the mean price per m² per year for a postal code.
func (t *Table) LookupZIP(zip int) (float64, bool) {
	return t.lookup(strconv.Itoa(zip))
}

// LookupCity returns the mean price per m² per year for a city name.
func (t *Table) LookupCity(city string) (float64, bool) {
	return t.lookup(strings.ToLower(strings.TrimSpace(city)))
}

func (t *Table) lookup(key string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	avg, ok := t.averages[key]
	if !ok || math.IsNaN(avg) {
		return 0, false
	}
	return avg, true
}

// Len returns the number of regions with a baseline.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.averages)
}
