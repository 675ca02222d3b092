// Package models contains GORM persistence models for the inventory tables
// barcodes are bound to and resolved against. They are kept apart from the
// domain types so the domain layer stays free of ORM concerns.
//
// Every bindable table embeds BarcodeColumns. Repositories read those
// columns through the BarcodeRow projection and convert rows with ToDomain
// or ToTarget.
package models
