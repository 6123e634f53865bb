package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	predictdomain "github.com/retailops/quantclass/internal/predict/domain"
)

// Predict classifies one transaction.
func (s *Server) Predict(c *gin.Context) {
	var req predictdomain.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	resp, err := s.predictSvc.Predict(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
