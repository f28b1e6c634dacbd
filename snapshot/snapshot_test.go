package snapshot

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake")

type fakeCapturer struct {
	mu       sync.Mutex
	urls     []string
	failures int
	fail     func(url string) bool
}

func (f *fakeCapturer) Capture(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("tab crashed")
	}
	if f.fail != nil && f.fail(url) {
		return nil, errors.New("navigation failed")
	}
	return fakePNG, nil
}

func testDataset() *models.Dataset {
	return models.NewDataset("test", []models.Listing{
		{ID: 1, Name: "Loft", Neighbourhood: "Downtown", RoomType: "Entire home/apt", Price: 180, Availability365: 100, ReviewsPerMonth: 1},
		{ID: 2, Name: "Room", Neighbourhood: "Kitsilano", RoomType: "Private room", Price: 60, Availability365: 200, ReviewsPerMonth: 2},
		{ID: 3, Name: "Suite", Neighbourhood: "Downtown", RoomType: "Private room", Price: 90, Availability365: 50, ReviewsPerMonth: 0.5},
	})
}

func newRunner(t *testing.T, c Capturer, retries int) (*Runner, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "snapshots")
	var logs bytes.Buffer
	logger := utils.NewLoggerTo(&logs, &logs, false)
	return NewRunner(c, logger, Options{
		OutDir:      dir,
		Concurrency: 2,
		MaxRetries:  retries,
		RetryDelay:  time.Millisecond,
	}), dir
}

func TestRunWritesFilesPerPreset(t *testing.T) {
	capturer := &fakeCapturer{}
	runner, dir := newRunner(t, capturer, 1)

	presets := []Preset{
		{Name: "All"},
		{Name: "Downtown budget", Neighbourhoods: []string{"Downtown"}, Price: &models.Range{Min: 0, Max: 100}},
	}
	results, err := runner.Run(context.Background(), "http://127.0.0.1:8501/", testDataset(), presets)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "All", results[0].Preset)
	assert.Equal(t, 3, results[0].Listings)
	assert.Equal(t, "Downtown budget", results[1].Preset)
	assert.Equal(t, 1, results[1].Listings)
	assert.Equal(t, filepath.Join(dir, "downtown-budget.png"), results[1].PNGPath)

	png, err := os.ReadFile(results[1].PNGPath)
	require.NoError(t, err)
	assert.Equal(t, fakePNG, png)

	csvData, err := os.ReadFile(results[1].CSVPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "3,Suite,"))

	require.Len(t, capturer.urls, 2)
	for _, u := range capturer.urls {
		assert.True(t, strings.HasPrefix(u, "http://127.0.0.1:8501/?"), u)
		assert.Contains(t, u, "applied=1")
	}
}

func TestRunDeduplicatesNames(t *testing.T) {
	runner, dir := newRunner(t, &fakeCapturer{}, 1)

	results, err := runner.Run(context.Background(), "http://localhost", testDataset(), []Preset{
		{Name: "Cheap"}, {Name: "cheap"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(dir, "cheap.png"), results[0].PNGPath)
	assert.Equal(t, filepath.Join(dir, "cheap-2.png"), results[1].PNGPath)
}

func TestRunRetriesCapture(t *testing.T) {
	capturer := &fakeCapturer{failures: 2}
	runner, _ := newRunner(t, capturer, 3)

	results, err := runner.Run(context.Background(), "http://localhost", testDataset(), []Preset{{Name: "All"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, capturer.urls, 3)
}

func TestRunReportsFailedPresets(t *testing.T) {
	capturer := &fakeCapturer{fail: func(url string) bool {
		return strings.Contains(url, "price_max=70")
	}}
	runner, _ := newRunner(t, capturer, 1)

	results, err := runner.Run(context.Background(), "http://localhost", testDataset(), []Preset{
		{Name: "Kits", Neighbourhoods: []string{"Kitsilano"}, Price: &models.Range{Min: 0, Max: 70}},
		{Name: "All"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preset kits")
	require.Len(t, results, 1)
	assert.Equal(t, "All", results[0].Preset)
}

func TestRunHonoursCancellation(t *testing.T) {
	runner, _ := newRunner(t, &fakeCapturer{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := runner.Run(ctx, "http://localhost", testDataset(), []Preset{{Name: "All"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
