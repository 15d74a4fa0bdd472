package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/scraper"
)

// Extract returns a handler for POST /api/v1/extract.
//
// The service reports every extraction failure as a value inside a 200
// response; only malformed request bodies produce a 400 here.
func Extract(svc *scraper.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Outcome: models.Outcome{
					Success: false,
					Method:  "validation",
					Error: &models.ErrorDetail{
						Code:    models.ErrCodeInvalidInput,
						Message: err.Error(),
					},
				},
			})
			return
		}

		resp := svc.Extract(c.Request.Context(), &req)
		c.JSON(http.StatusOK, resp)
	}
}
