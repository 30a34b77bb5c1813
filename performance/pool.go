// Package performance provides allocation helpers for the per-request
// scratch matrices of the explainer.
package performance

import (
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"
)

// MatrixPool recycles the backing arrays of dense scratch matrices so that
// repeated explanations of the same shape do not reallocate them.
type MatrixPool struct {
	pool sync.Pool

	created atomic.Int64
	reused  atomic.Int64
	inUse   atomic.Int64
	peak    atomic.Int64
}

// PoolStats tracks pool performance metrics
type PoolStats struct {
	Created int64
	Reused  int64
	InUse   int64
	Peak    int64
}

// NewMatrixPool creates an empty pool.
func NewMatrixPool() *MatrixPool {
	return &MatrixPool{}
}

// Get returns a zeroed rows×cols matrix.
func (mp *MatrixPool) Get(rows, cols int) *mat.Dense {
	n := rows * cols
	current := mp.inUse.Add(1)
	for {
		peak := mp.peak.Load()
		if current <= peak || mp.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	if buf, ok := mp.pool.Get().(*[]float64); ok && cap(*buf) >= n {
		mp.reused.Add(1)
		return mat.NewDense(rows, cols, (*buf)[:n])
	}
	mp.created.Add(1)
	return mat.NewDense(rows, cols, make([]float64, n))
}

// Put clears m and returns its storage to the pool. m must come from Get
// and must not be used afterwards.
func (mp *MatrixPool) Put(m *mat.Dense) {
	if m == nil {
		return
	}
	mp.inUse.Add(-1)

	raw := m.RawMatrix()
	if raw.Stride != raw.Cols {
		return
	}
	data := raw.Data[:cap(raw.Data)]
	clear(data)
	mp.pool.Put(&data)
}

// Stats returns a snapshot of the counters.
func (mp *MatrixPool) Stats() PoolStats {
	return PoolStats{
		Created: mp.created.Load(),
		Reused:  mp.reused.Load(),
		InUse:   mp.inUse.Load(),
		Peak:    mp.peak.Load(),
	}
}
