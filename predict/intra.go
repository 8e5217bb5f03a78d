package predict

import (
	"fmt"

	"github.com/arloliu/aria/errs"
	"github.com/arloliu/aria/filter"
	"github.com/arloliu/aria/format"
	"github.com/arloliu/aria/plane"
)

// Unbounded disables the size ceiling of a search.
const Unbounded = -1

type candidate struct {
	mode      format.FilterMode
	threshold int
	hint      Hint
}

// candidates lists the intra candidates in tie-break order: every filter
// losslessly, then every filter except None with the drop threshold.
func candidates(width, channels, threshold int) []candidate {
	modes := filter.Candidates(width, channels)
	list := make([]candidate, 0, 2*len(modes))
	for _, m := range modes {
		hint := HintFiltered
		if m == format.FilterNone {
			hint = HintLossless
		}
		list = append(list, candidate{mode: m, hint: hint})
	}

	if threshold > 0 {
		for _, m := range modes[1:] {
			list = append(list, candidate{mode: m, threshold: threshold, hint: HintDropped})
		}
	}

	return list
}

// BestIntra codes p with the intra filter whose output compresses smallest.
//
// Parameters:
//   - p: Plane to code
//   - threshold: Drop threshold; above 0 dropped variants compete too
//   - ceiling: Size to beat, or Unbounded
//
// Returns:
//   - *Result[T]: The smallest candidate, ties going to the earlier one, or
//     nil when it is not smaller than ceiling
//   - error: Estimator or filter errors
func (e *Engine[T]) BestIntra(p *plane.Plane[T], threshold int, ceiling int) (*Result[T], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if threshold < 0 || threshold > plane.MaxValue[T]() {
		return nil, fmt.Errorf("%w: drop threshold %d", errs.ErrInvalidOption, threshold)
	}

	list := candidates(p.Width, p.Channels, threshold)
	results := make([]*Result[T], len(list))

	err := e.parallel(len(list), func(i int) error {
		c := list[i]
		filtered, recon, err := filter.Forward(p, c.mode, c.threshold)
		if err != nil {
			return err
		}

		data := filtered.Bytes()
		size, err := e.est.EstimateSize(data)
		if err != nil {
			return fmt.Errorf("estimate %s: %w", c.mode, err)
		}

		results[i] = &Result[T]{
			Filtered:      filtered,
			Data:          data,
			Reconstructed: recon,
			Mode:          c.mode,
			Size:          size,
			Hint:          c.hint,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Size < best.Size {
			best = r
		}
	}

	if ceiling != Unbounded && best.Size >= ceiling {
		return nil, nil
	}

	return best, nil
}
