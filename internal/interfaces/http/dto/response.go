package dto

import (
	"github.com/erp/barcode/internal/domain/barcode"
)

// Response is a flat JSON object. Barcode endpoints merge handler outcome
// fields into the top level next to the plugin and barcode metadata.
type Response map[string]any

// ErrorField is the key used for errors that do not refer to a request field
const ErrorField = "error"

// NewErrorResponse creates an error response. An empty field reports the
// message under "error".
func NewErrorResponse(field, code, message, requestID string) Response {
	if field == "" {
		field = ErrorField
	}
	resp := Response{
		field:  message,
		"code": code,
	}
	if requestID != "" {
		resp["request_id"] = requestID
	}
	return resp
}

// NewScanResponse renders a resolution result: outcome fields first, then
// the plugin name and barcode metadata, which always win on key clashes
func NewScanResponse(scan *barcode.ResolvedScan) Response {
	resp := Response{}
	if scan == nil {
		return resp
	}
	for k, v := range scan.Fields() {
		resp[k] = v
	}
	if scan.Plugin != "" {
		resp["plugin"] = scan.Plugin
	}
	resp["barcode_data"] = scan.BarcodeData
	resp["barcode_hash"] = scan.BarcodeHash.String()
	return resp
}

// WithScan merges the resolution context into an error response
func (r Response) WithScan(scan *barcode.ResolvedScan) Response {
	if scan == nil {
		return r
	}
	for k, v := range NewScanResponse(scan) {
		if _, taken := r[k]; !taken {
			r[k] = v
		}
	}
	return r
}
