// pkg/msi/msi.go - installed product enumeration from the Windows Installer database

package msi

import (
	"strings"
)

// Product properties read for every installed product.
const (
	PropertyLocalPackage = "LocalPackage"
	PropertyProductName  = "InstalledProductName"
	PropertyVersion      = "VersionString"
	PropertyInstallDate  = "InstallDate"
)

// Product is a product registered with Windows Installer.
type Product struct {
	ProductCode  string `yaml:"product_code" json:"product_code"`
	LocalPackage string `yaml:"local_package" json:"local_package"`
	DisplayName  string `yaml:"display_name" json:"display_name"`
	Version      string `yaml:"version,omitempty" json:"version,omitempty"`
	InstallDate  string `yaml:"install_date,omitempty" json:"install_date,omitempty"`
}

// Enumerator lists installed products. Order is whatever the installer
// database returns and is not stable between runs.
type Enumerator interface {
	Products() ([]Product, error)
}

// Static is a fixed product list.
type Static []Product

// Products returns the fixed list.
func (s Static) Products() ([]Product, error) {
	return s, nil
}

// NormalizeProductCode returns code upper-cased and wrapped in braces.
func NormalizeProductCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if !strings.HasPrefix(code, "{") {
		code = "{" + code
	}
	if !strings.HasSuffix(code, "}") {
		code += "}"
	}
	return code
}

// SameProduct reports whether two product codes name the same product.
func SameProduct(a, b string) bool {
	return NormalizeProductCode(a) == NormalizeProductCode(b)
}
