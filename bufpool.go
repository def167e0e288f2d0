package imageio

import (
	"sync"
)

// maxPooledRow caps the size of row buffers returned to the pool so one huge
// image does not pin its rows for the life of the process.
const maxPooledRow = 1 << 20

// rowPool reuses scanline buffers between PNG decodes.
var rowPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 4096)
		return &b
	},
}

// acquireRows returns n row buffers of exactly size bytes each.
func acquireRows(n, size int) [][]byte {
	rows := make([][]byte, n)
	for i := range rows {
		bp := rowPool.Get().(*[]byte)
		if cap(*bp) < size {
			*bp = make([]byte, size)
		}
		rows[i] = (*bp)[:size]
	}
	return rows
}

// releaseRows hands rows back to the pool.
func releaseRows(rows [][]byte) {
	for i, r := range rows {
		if cap(r) <= maxPooledRow {
			r = r[:0]
			rowPool.Put(&r)
		}
		rows[i] = nil
	}
}
