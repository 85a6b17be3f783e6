package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// SSE emits "tick" frames on a fixed cadence plus keep-alive comments. It is
// purely a refresh hint for clients: no message payload ever rides on it, and
// a client that loses the stream falls back to polling unaffected.
func SSE(tickInterval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		c.Writer.WriteString("retry: 10000\n")

		tick := 0
		emit := func() {
			c.SSEvent("tick", gin.H{"tick": tick})
			c.Writer.WriteString(": keep-alive\n\n")
			c.Writer.Flush()
			tick++
		}
		emit()

		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-c.Request.Context().Done():
				return
			case <-ticker.C:
				emit()
			}
		}
	}
}
