package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports serving readiness. "active" means the model artifacts
// loaded and predictions are being served; "inactive" means the process is
// up but degraded.
func (s *Server) Health(c *gin.Context) {
	status := "inactive"
	if s.predictSvc.Ready() {
		status = "active"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
