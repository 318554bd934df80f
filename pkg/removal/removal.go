// pkg/removal/removal.go - uninstalls conflicting products before the bundle is installed.

package removal

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/windowsadmins/cimianboot/pkg/config"
	"github.com/windowsadmins/cimianboot/pkg/installer"
	"github.com/windowsadmins/cimianboot/pkg/logging"
	"github.com/windowsadmins/cimianboot/pkg/msi"
	"github.com/windowsadmins/cimianboot/pkg/prompt"
)

// UninstallArgs is the msiexec argument template for product removals.
// {0} is the cached LocalPackage, {1} the log path.
const UninstallArgs = `/uninstall "{0}" /passive /norestart /l "{1}"`

// Coordinator removes installed products listed in the manifest, asking the
// user before each removal.
type Coordinator struct {
	Products msi.Enumerator
	Confirm  prompt.Confirmer
	Runner   installer.Runner
	TempDir  string
	Title    string // dialog title, normally the product name
	Msiexec  string
}

// Remove walks the installed products and uninstalls every one matching a
// removal. A declined prompt returns at once. A failed uninstall is recorded,
// the remaining removals for the same product still run, and scanning stops
// before the next product. The first error is returned.
func (c *Coordinator) Remove(removals []config.ProductRemoval) error {
	if len(removals) == 0 {
		return nil
	}
	if c.Products == nil {
		return errors.New("no installed product enumerator configured")
	}

	products, err := c.Products.Products()
	if err != nil {
		logging.Error("Failed to enumerate installed products", "error", err)
		return fmt.Errorf("failed to enumerate installed products: %w", err)
	}
	logging.Debug("Scanning installed products", "installed", len(products), "removals", len(removals))

	var firstErr error
	for _, product := range products {
		for _, r := range matching(removals, product.ProductCode) {
			if !c.confirm(r) {
				logging.LogRemovalEvent(r.Name, product.ProductCode, "declined", nil)
				return fmt.Errorf("You have elected to not uninstall %s at this time", r.Name)
			}
			if err := c.uninstall(product, r); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if firstErr != nil {
			break
		}
	}
	return firstErr
}

func matching(removals []config.ProductRemoval, code string) []config.ProductRemoval {
	var out []config.ProductRemoval
	for _, r := range removals {
		if msi.SameProduct(r.ProductCode, code) {
			out = append(out, r)
		}
	}
	return out
}

func (c *Coordinator) confirm(r config.ProductRemoval) bool {
	if c.Confirm == nil {
		return false
	}
	return c.Confirm.Confirm(c.Title, r.Message)
}

func (c *Coordinator) uninstall(product msi.Product, r config.ProductRemoval) error {
	msiexec := c.Msiexec
	if msiexec == "" {
		msiexec = installer.CommandMsi()
	}
	logPath := filepath.Join(c.TempDir, r.Name+".uninstall.log")
	args := installer.Expand(UninstallArgs, product.LocalPackage, logPath)

	logging.Info("Removing installed product", "product", r.Name, "product_code", product.ProductCode)
	logging.Debug("Launching uninstaller", "command", msiexec, "args", args)

	code, err := c.Runner.Run(msiexec, args)
	if err == nil && code != 0 {
		err = fmt.Errorf("msiexec exited with code %d", code)
	}
	if err != nil {
		logging.LogRemovalEvent(r.Name, product.ProductCode, "failed", err)
		return fmt.Errorf("An error occurred while attempting to uninstall %s", r.Name)
	}
	logging.LogRemovalEvent(r.Name, product.ProductCode, "completed", nil)
	return nil
}
