package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// StatusFor maps an error kind onto an HTTP status code.
func StatusFor(kind common.Kind) int {
	switch kind {
	case common.KindUnauthorized:
		return http.StatusUnauthorized
	case common.KindValidation, common.KindNoText:
		return http.StatusBadRequest
	case common.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"detail": ...}. Errors outside the taxonomy become 500s.
func writeError(c *gin.Context, err error) {
	var ae *common.AppError
	if !errors.As(err, &ae) {
		ae = common.InternalErrorf(err, "Processing error: %v", err)
	}
	c.JSON(StatusFor(ae.Kind), entity.ErrorResponse{Detail: ae.Message})
}
