// Package health implements the auxiliary HTTP surface that sits alongside
// the signaling core: a liveness probe and the host-agent binary download.
// Both are external collaborators per spec.md §6, not part of the
// coordination engine itself.
package health

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Liveness handles GET /health.
func Liveness(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Downloads returns a handler for GET /downloads/host-app-win.zip that
// streams the configured zip file, or 404s if it isn't configured or
// doesn't exist.
func Downloads(zipPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if zipPath == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "download not configured"})
			return
		}
		if _, err := os.Stat(zipPath); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.FileAttachment(zipPath, "host-app-win.zip")
	}
}
