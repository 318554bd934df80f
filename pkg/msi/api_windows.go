//go:build windows

package msi

import (
	"fmt"
	"unsafe"

	"github.com/windowsadmins/cimianboot/pkg/logging"
	"golang.org/x/sys/windows"
)

var (
	modmsi                 = windows.NewLazySystemDLL("msi.dll")
	procMsiEnumProductsW   = modmsi.NewProc("MsiEnumProductsW")
	procMsiGetProductInfoW = modmsi.NewProc("MsiGetProductInfoW")
)

const (
	errorSuccess    = 0
	errorMoreData   = 234
	errorNoMoreItem = 259
	guidLength      = 39
)

// APIEnumerator reads installed products through msi.dll.
type APIEnumerator struct{}

// NewAPIEnumerator returns an Enumerator backed by the Windows Installer API.
func NewAPIEnumerator() *APIEnumerator {
	return &APIEnumerator{}
}

// Products enumerates every installed product and reads its properties.
func (e *APIEnumerator) Products() ([]Product, error) {
	if err := procMsiEnumProductsW.Find(); err != nil {
		return nil, fmt.Errorf("loading msi.dll: %w", err)
	}

	var products []Product
	for index := uint32(0); ; index++ {
		buf := make([]uint16, guidLength)
		ret, _, _ := procMsiEnumProductsW.Call(uintptr(index), uintptr(unsafe.Pointer(&buf[0])))
		if ret == errorNoMoreItem {
			break
		}
		if ret != errorSuccess {
			return nil, fmt.Errorf("MsiEnumProducts failed at index %d: %w", index, windows.Errno(ret))
		}

		code := windows.UTF16ToString(buf)
		products = append(products, Product{
			ProductCode:  code,
			LocalPackage: productInfo(code, PropertyLocalPackage),
			DisplayName:  productInfo(code, PropertyProductName),
			Version:      productInfo(code, PropertyVersion),
			InstallDate:  productInfo(code, PropertyInstallDate),
		})
	}

	logging.Debug("Enumerated installed products", "count", len(products))
	return products, nil
}

// productInfo reads a single product property, returning "" when it is unavailable.
func productInfo(code, property string) string {
	codePtr, err := windows.UTF16PtrFromString(code)
	if err != nil {
		return ""
	}
	propPtr, err := windows.UTF16PtrFromString(property)
	if err != nil {
		return ""
	}

	size := uint32(256)
	for {
		buf := make([]uint16, size)
		n := size
		ret, _, _ := procMsiGetProductInfoW.Call(
			uintptr(unsafe.Pointer(codePtr)),
			uintptr(unsafe.Pointer(propPtr)),
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(unsafe.Pointer(&n)),
		)
		switch ret {
		case errorSuccess:
			return windows.UTF16ToString(buf[:n])
		case errorMoreData:
			size = n + 1
		default:
			logging.Debug("Product property unavailable", "product", code, "property", property, "code", ret)
			return ""
		}
	}
}
