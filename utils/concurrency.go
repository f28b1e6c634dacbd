package utils

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

// WorkerPool runs jobs on a bounded number of goroutines, spacing job
// starts by at least the configured rate limit.
type WorkerPool struct {
	rateLimit time.Duration
	semaphore chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	lastStart time.Time
	errMu     sync.Mutex
	errs      []error
}

// NewWorkerPool creates a WorkerPool with the given concurrency and rate limit.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		rateLimit: time.Duration(rateLimitMs) * time.Millisecond,
		semaphore: make(chan struct{}, maxWorkers),
	}
}

// Submit blocks until a worker slot is free, then runs job in a goroutine.
// Errors returned by jobs are collected and reported by Wait.
func (wp *WorkerPool) Submit(job func() error) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.enforceRateLimit()
		if err := job(); err != nil {
			wp.errMu.Lock()
			wp.errs = append(wp.errs, err)
			wp.errMu.Unlock()
		}
	}()
}

// Wait blocks until all submitted jobs have completed and returns the
// joined job errors, or nil.
func (wp *WorkerPool) Wait() error {
	wp.wg.Wait()
	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	return errors.Join(wp.errs...)
}

func (wp *WorkerPool) enforceRateLimit() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.lastStart.IsZero() {
		if elapsed := time.Since(wp.lastStart); elapsed < wp.rateLimit {
			time.Sleep(wp.rateLimit - elapsed)
		}
	}
	wp.lastStart = time.Now()
}

// NameSet hands out unique names, suffixing repeats with -2, -3, ...
// It is safe for concurrent use.
type NameSet struct {
	mu   sync.Mutex
	seen map[string]int
}

// NewNameSet creates an empty NameSet.
func NewNameSet() *NameSet {
	return &NameSet{seen: make(map[string]int)}
}

// Claim returns name itself the first time and a numbered variant afterwards.
func (s *NameSet) Claim(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		n := s.seen[name]
		s.seen[name] = n + 1
		if n == 0 {
			return name
		}
		candidate := name + "-" + strconv.Itoa(n+1)
		if _, taken := s.seen[candidate]; !taken {
			s.seen[candidate] = 1
			return candidate
		}
	}
}

// Size returns the number of distinct names claimed.
func (s *NameSet) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
