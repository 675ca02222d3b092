package handler

import (
	"fmt"

	appbarcode "github.com/erp/barcode/internal/application/barcode"
	"github.com/erp/barcode/internal/interfaces/http/dto"
	"github.com/erp/barcode/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

const (
	msgScanMatched    = "Match found for barcode data"
	msgReceiveMatched = "Matched purchase order line item"
)

// BarcodeHandler serves the barcode scan, link, unlink and receive endpoints
type BarcodeHandler struct {
	BaseHandler
	scanner  *appbarcode.ScanResolver
	bindings *appbarcode.BindingManager
	receiver *appbarcode.ReceiveResolver
	validate *validator.Validate
}

// NewBarcodeHandler creates a new BarcodeHandler
func NewBarcodeHandler(
	scanner *appbarcode.ScanResolver,
	bindings *appbarcode.BindingManager,
	receiver *appbarcode.ReceiveResolver,
) *BarcodeHandler {
	v := validator.New()
	v.SetTagName("binding")
	middleware.RegisterJSONTagNames(v)

	return &BarcodeHandler{
		scanner:  scanner,
		bindings: bindings,
		receiver: receiver,
		validate: v,
	}
}

// RegisterRoutes registers the barcode routes under /barcode
func (h *BarcodeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/barcode")
	g.POST("/", h.Scan)
	g.POST("/link/", h.Assign)
	g.POST("/unlink/", h.Unassign)
	g.POST("/po-receive/", h.ReceivePurchaseOrder)
}

// Scan resolves a barcode payload against every registered handler
//
//	POST /barcode/ {"barcode": "..."}
func (h *BarcodeHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	scan, err := h.scanner.Resolve(c.Request.Context(), req.Barcode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.NewScanResponse(scan)
	if _, ok := resp["success"]; !ok {
		resp["success"] = msgScanMatched
	}
	h.Success(c, resp)
}

// Assign links a custom barcode to one entity
//
//	POST /barcode/link/ {"barcode": "...", "<label>": <pk>}
func (h *BarcodeHandler) Assign(c *gin.Context) {
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	data := cast.ToString(fields["barcode"])
	if err := h.validate.Struct(dto.ScanRequest{Barcode: data}); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.bindings.Assign(c.Request.Context(), appbarcode.AssignInput{
		Barcode: data,
		Labels:  fields,
	}, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.Response{
		"success":           result.Message,
		result.Kind.Label(): map[string]any{"pk": result.PK},
		"barcode_data":      result.BarcodeData,
		"barcode_hash":      result.BarcodeHash.String(),
	})
}

// Unassign removes the custom barcode of one entity
//
//	POST /barcode/unlink/ {"<label>": <pk>}
func (h *BarcodeHandler) Unassign(c *gin.Context) {
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	result, err := h.bindings.Unassign(c.Request.Context(), appbarcode.UnassignInput{
		Labels: fields,
	}, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.Response{
		"success":           result.Message,
		result.Kind.Label(): map[string]any{"pk": result.PK},
	})
}

// ReceivePurchaseOrder resolves a supplier barcode into a purchase order
// receiving action
//
//	POST /barcode/po-receive/ {"barcode": "...", "purchase_order": 1, "location": 2}
func (h *BarcodeHandler) ReceivePurchaseOrder(c *gin.Context) {
	var req dto.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	scan, err := h.receiver.Resolve(c.Request.Context(), appbarcode.ReceiveInput{
		Barcode:         req.Barcode,
		PurchaseOrderID: req.PurchaseOrder,
		LocationID:      req.Location,
	}, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.NewScanResponse(scan)
	if _, ok := resp["success"]; !ok {
		resp["success"] = msgReceiveMatched
	}
	h.Success(c, resp)
}

// bindFields decodes a JSON object body whose keys are entity labels
func (h *BarcodeHandler) bindFields(c *gin.Context) (map[string]any, bool) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.BindError(c, err)
		return nil, false
	}
	if fields == nil {
		h.BindError(c, fmt.Errorf("request body must be a JSON object"))
		return nil, false
	}
	return fields, true
}
