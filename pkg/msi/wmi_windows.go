//go:build windows

package msi

import (
	"fmt"

	"github.com/windowsadmins/cimianboot/pkg/logging"
	"github.com/yusufpapurcu/wmi"
)

// Win32_Product mirrors the WMI class of the same name.
type Win32_Product struct {
	IdentifyingNumber string
	Name              string
	Version           string
	InstallDate       string
	LocalPackage      string
}

// WMIEnumerator reads installed products from the Win32_Product WMI class.
// Querying Win32_Product is slow; the API enumerator is preferred.
type WMIEnumerator struct{}

// NewWMIEnumerator returns an Enumerator backed by WMI.
func NewWMIEnumerator() *WMIEnumerator {
	return &WMIEnumerator{}
}

// Products queries Win32_Product.
func (e *WMIEnumerator) Products() ([]Product, error) {
	var rows []Win32_Product
	query := "SELECT IdentifyingNumber, Name, Version, InstallDate, LocalPackage FROM Win32_Product"
	if err := wmi.Query(query, &rows); err != nil {
		return nil, fmt.Errorf("querying Win32_Product: %w", err)
	}

	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, Product{
			ProductCode:  row.IdentifyingNumber,
			LocalPackage: row.LocalPackage,
			DisplayName:  row.Name,
			Version:      row.Version,
			InstallDate:  row.InstallDate,
		})
	}

	logging.Debug("Enumerated installed products via WMI", "count", len(products))
	return products, nil
}
