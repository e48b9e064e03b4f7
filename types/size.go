package types

import (
	"errors"
	"math"
)

var (
	// ErrNegativeSize indicates the provider reported a negative object size
	ErrNegativeSize = errors.New("provider reported a negative size")

	// ErrSizeOverflow indicates a bucket total exceeded the uint64 range
	ErrSizeOverflow = errors.New("size accumulation overflowed")
)

// SizeAccumulator sums provider-reported sizes into a bucket total.
//
// Provider APIs report sizes as signed integers (or floating point averages
// in the case of CloudWatch), so every addition is checked: a negative input
// or an overflowing total is an error, never a silent wrap or clamp. The
// zero value is ready to use.
type SizeAccumulator struct {
	total uint64
}

// AddInt64 adds a signed provider-reported size to the total
func (a *SizeAccumulator) AddInt64(size int64) error {
	if size < 0 {
		return ErrNegativeSize
	}

	return a.AddUint64(uint64(size))
}

// AddFloat64 adds a CloudWatch statistic to the total
func (a *SizeAccumulator) AddFloat64(size float64) error {
	if size < 0 {
		return ErrNegativeSize
	}

	// float64(math.MaxUint64) rounds up to 2^64, which a uint64 conversion
	// would truncate.
	if size >= math.MaxUint64 {
		return ErrSizeOverflow
	}

	return a.AddUint64(uint64(size))
}

// AddUint64 adds an already-validated size to the total
func (a *SizeAccumulator) AddUint64(size uint64) error {
	if a.total > math.MaxUint64-size {
		return ErrSizeOverflow
	}

	a.total += size

	return nil
}

// Total returns the accumulated size in bytes
func (a *SizeAccumulator) Total() uint64 {
	return a.total
}
