package masks

import (
	"sync"

	"github.com/gopix/masks/internal/parallel"
)

// renderPool is the process-wide worker pool behind row-parallel mask
// rasterization, created on first use and sized to GOMAXPROCS. Small
// buffers bypass it inside parallel.Rows.
var renderPool = sync.OnceValue(func() *parallel.Pool {
	return parallel.New(0)
})
