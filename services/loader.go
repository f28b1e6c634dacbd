package services

import (
	"context"
	"sync"
	"time"

	"airbnb-dashboard/models"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

// Loader reads, cleans and memoizes datasets, one per source key. The first
// Load for a key does the work; later calls return the same *Dataset.
// Failed loads are not remembered.
type Loader struct {
	logger  *utils.Logger
	cleaner *Cleaner

	mu    sync.Mutex
	cache map[string]*models.Dataset
}

// NewLoader creates an empty Loader.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{
		logger:  logger,
		cleaner: NewCleaner(logger),
		cache:   make(map[string]*models.Dataset),
	}
}

// Load returns the dataset for src, reading it on first use.
func (l *Loader) Load(ctx context.Context, src storage.ListingSource) (*models.Dataset, error) {
	key := src.Key()

	l.mu.Lock()
	defer l.mu.Unlock()

	if ds, ok := l.cache[key]; ok {
		l.logger.Debug("[loader] Cache hit for %s", key)
		return ds, nil
	}

	start := time.Now()
	raw, err := src.ReadRaw(ctx)
	if err != nil {
		return nil, err
	}

	listings, err := l.cleaner.Clean(raw)
	if err != nil {
		return nil, err
	}

	ds := models.NewDataset(key, listings)
	l.cache[key] = ds
	l.logger.Info("[loader] Loaded %d listings from %s in %v (%d neighbourhoods, %d room types)",
		ds.Len(), key, time.Since(start).Round(time.Millisecond),
		len(ds.Neighbourhoods()), len(ds.RoomTypes()))
	return ds, nil
}

// LoadFile is Load for a comma-separated file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*models.Dataset, error) {
	return l.Load(ctx, storage.NewCSVSource(path, ','))
}
