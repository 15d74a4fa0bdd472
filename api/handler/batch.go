package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/scraper"
)

// ExtractBatch returns a handler for POST /api/v1/extract/batch.
//
// Items run sequentially; a failed item occupies its result slot and
// never aborts the rest. The binding caps the batch at 50 URLs.
func ExtractBatch(svc *scraper.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		resp := svc.ExtractBatch(c.Request.Context(), &req)
		c.JSON(http.StatusOK, resp)
	}
}
