package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
	"airbnb-dashboard/web"
)

// Options controls a snapshot batch.
type Options struct {
	OutDir      string
	Concurrency int
	RateLimitMs int
	MaxRetries  int
	RetryDelay  time.Duration
}

// Result describes the files written for one preset.
type Result struct {
	Preset   string
	PNGPath  string
	CSVPath  string
	Listings int
}

// Runner captures one dashboard screenshot and one CSV export per preset.
type Runner struct {
	capturer Capturer
	logger   *utils.Logger
	opts     Options
}

// NewRunner creates a Runner.
func NewRunner(capturer Capturer, logger *utils.Logger, opts Options) *Runner {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	return &Runner{capturer: capturer, logger: logger, opts: opts}
}

// Run processes presets against the dashboard served at baseURL. Results are
// returned in preset order; failed presets are left out and their errors
// joined into the returned error.
func (r *Runner) Run(ctx context.Context, baseURL string, ds *models.Dataset, presets []Preset) ([]Result, error) {
	if err := os.MkdirAll(r.opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("snapshot: create output dir: %w", err)
	}

	r.logger.Info("[snapshot] Capturing %d presets into %s (concurrency %d)",
		len(presets), r.opts.OutDir, r.opts.Concurrency)

	pool := utils.NewWorkerPool(r.opts.Concurrency, r.opts.RateLimitMs)
	names := utils.NewNameSet()
	retry := &utils.RetryConfig{
		MaxAttempts: r.opts.MaxRetries,
		BaseDelay:   r.opts.RetryDelay,
		Logger:      r.logger,
	}
	defaults := ds.DefaultCriteria()
	base := strings.TrimRight(baseURL, "/")

	results := make([]*Result, len(presets))
	for i, p := range presets {
		i, p := i, p
		name := names.Claim(p.FileName())
		if name != p.FileName() {
			r.logger.Warn("[snapshot] Duplicate preset name %q, writing as %s", p.Name, name)
		}
		crit := p.Criteria(defaults)

		pool.Submit(func() error {
			res, err := r.capture(ctx, retry, base, name, ds, crit)
			if err != nil {
				r.logger.Error("[snapshot] %s failed: %v", name, err)
				return fmt.Errorf("preset %s: %w", name, err)
			}
			res.Preset = p.Name
			results[i] = res
			r.logger.Info("[snapshot] %s done: %d listings", name, res.Listings)
			return nil
		})
	}
	err := pool.Wait()

	out := make([]Result, 0, len(results))
	for _, res := range results {
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, err
}

func (r *Runner) capture(ctx context.Context, retry *utils.RetryConfig, base, name string, ds *models.Dataset, crit models.FilterCriteria) (*Result, error) {
	view := services.Apply(ds, crit)
	csvPath := filepath.Join(r.opts.OutDir, name+".csv")
	if err := writeCSV(csvPath, view); err != nil {
		return nil, err
	}

	url := base + "/?" + web.EncodeCriteria(crit).Encode()
	var png []byte
	err := retry.Do(ctx, "capture-"+name, func(ctx context.Context) error {
		var err error
		png, err = r.capturer.Capture(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	pngPath := filepath.Join(r.opts.OutDir, name+".png")
	if err := os.WriteFile(pngPath, png, 0644); err != nil {
		return nil, fmt.Errorf("snapshot: write %s: %w", pngPath, err)
	}

	return &Result{PNGPath: pngPath, CSVPath: csvPath, Listings: len(view)}, nil
}

func writeCSV(path string, view models.View) error {
	w, err := storage.CreateCSVFile(path)
	if err != nil {
		return err
	}
	if err := w.Write(view); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
