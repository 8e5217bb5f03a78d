package predict

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/arloliu/aria/compress"
	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/plane"
)

// Config holds the search parameters of an Engine.
type Config struct {
	// DropThreshold is the lossy dead zone, 0 for lossless coding.
	DropThreshold int

	// ScaleRadius and MoveRadius bound the motion search box. Zero radii
	// disable motion search.
	ScaleRadius int
	MoveRadius  int

	// Workers bounds concurrent candidate estimates, 0 selects GOMAXPROCS.
	Workers int
}

// Engine runs mode decisions for one sample type.
//
// An Engine holds no per-stream state and is safe for concurrent use if its
// estimator is.
type Engine[T plane.Sample] struct {
	est     compress.SizeEstimator
	cfg     Config
	workers int
}

// NewEngine creates an Engine that costs candidates with est.
//
// Returns ErrInvalidOption when a radius or the drop threshold is negative
// or the threshold exceeds the sample range.
func NewEngine[T plane.Sample](est compress.SizeEstimator, cfg Config) (*Engine[T], error) {
	if est == nil {
		return nil, fmt.Errorf("%w: nil size estimator", errs.ErrInvalidOption)
	}

	if cfg.DropThreshold < 0 || cfg.DropThreshold > plane.MaxValue[T]() {
		return nil, fmt.Errorf("%w: drop threshold %d", errs.ErrInvalidOption, cfg.DropThreshold)
	}

	if cfg.ScaleRadius < 0 || cfg.MoveRadius < 0 {
		return nil, fmt.Errorf("%w: motion radius %d/%d", errs.ErrInvalidOption, cfg.ScaleRadius, cfg.MoveRadius)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Engine[T]{est: est, cfg: cfg, workers: workers}, nil
}

// Config returns the engine configuration.
func (e *Engine[T]) Config() Config {
	return e.cfg
}

// parallel runs fn(i) for i in [0, n) on at most e.workers goroutines and
// returns the error of the lowest index that failed.
func (e *Engine[T]) parallel(n int, fn func(i int) error) error {
	errList := make([]error, n)

	if e.workers == 1 || n == 1 {
		for i := range n {
			errList[i] = fn(i)
		}
	} else {
		sem := make(chan struct{}, e.workers)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				errList[i] = fn(i)
			}()
		}
		wg.Wait()
	}

	for _, err := range errList {
		if err != nil {
			return err
		}
	}

	return nil
}
