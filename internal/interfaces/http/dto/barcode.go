package dto

// BarcodeMaxLength is the longest barcode payload accepted
const BarcodeMaxLength = 4095

// ScanRequest is the body of a barcode scan
type ScanRequest struct {
	Barcode string `json:"barcode" binding:"max=4095"`
}

// ReceiveRequest is the body of a purchase order receive scan
type ReceiveRequest struct {
	Barcode       string  `json:"barcode" binding:"max=4095"`
	PurchaseOrder *uint64 `json:"purchase_order"`
	Location      *uint64 `json:"location"`
}
