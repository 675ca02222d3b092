package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/infrastructure/logger"
	"github.com/erp/barcode/internal/interfaces/http/dto"
	"github.com/erp/barcode/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a flat 200 response
func (h *BaseHandler) Success(c *gin.Context, body dto.Response) {
	c.JSON(http.StatusOK, body)
}

// Error sends an error response, deriving the status code from the error code
func (h *BaseHandler) Error(c *gin.Context, field, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(field, code, message, middleware.GetRequestID(c)))
}

// BindError reports a request body that could not be decoded or validated
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)

	if resp, ok := middleware.ValidationErrorResponse(err, requestID); ok {
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.Error(c, "", dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		h.Error(c, typeErr.Field, dto.ErrCodeInvalidJSON, "Invalid value")
		return
	}

	h.Error(c, "", dto.ErrCodeInvalidJSON, "Invalid JSON body")
}

// HandleError converts resolution failures to HTTP responses. Failures that
// carry resolution context echo the plugin and barcode metadata. Anything
// that is not a barcode.Error is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var barcodeErr *barcode.Error
	if errors.As(err, &barcodeErr) {
		code := dto.BarcodeErrorCode(barcodeErr.Kind)
		resp := dto.NewErrorResponse(barcodeErr.Field, code, barcodeErr.Error(), middleware.GetRequestID(c)).
			WithScan(barcodeErr.Scan)
		c.JSON(dto.GetHTTPStatus(code), resp)
		return
	}

	logger.L(c.Request.Context()).Error("Unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	h.Error(c, "", dto.ErrCodeInternal, "An unexpected error occurred")
}
