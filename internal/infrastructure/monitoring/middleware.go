package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Route template keeps label cardinality bounded (/containers/:name/count)
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures an external process invocation
type Timer struct {
	start   time.Time
	metrics *Metrics
	program string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, program string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		program: program,
	}
}

// Stop stops the timer and records the duration
func (t *Timer) Stop(outcome string) {
	t.metrics.RecordProcess(t.program, outcome, time.Since(t.start))
}
