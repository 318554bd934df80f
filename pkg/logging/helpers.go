// pkg/logging/helpers.go - helper functions for common bootstrapper events

package logging

import (
	"fmt"
	"time"
)

// LogCheckFailed records a precondition that did not hold.
func LogCheckFailed(scope, check, message string) {
	Event("check", "evaluate", "failed", fmt.Sprintf("Check failed for %s: %s", scope, check),
		WithContext("scope", scope), WithContext("error_message", message))
}

// LogInstallStart logs the start of a package installation
func LogInstallStart(packageName string) {
	Event("install", "start", "started", fmt.Sprintf("Starting installation of %s", packageName),
		WithPackage(packageName))
}

// LogInstallComplete logs successful completion of installation
func LogInstallComplete(packageName string, exitCode int, duration time.Duration) {
	Event("install", "complete", "completed", fmt.Sprintf("Installed %s", packageName),
		WithPackage(packageName), WithExitCode(exitCode), WithDuration(duration))
}

// LogInstallFailed logs failed installation
func LogInstallFailed(packageName string, exitCode int, err error) {
	Event("install", "complete", "failed", fmt.Sprintf("Installation of %s failed", packageName),
		WithPackage(packageName), WithExitCode(exitCode), WithError(err))
}

// LogInstallSkipped logs a package that was not attempted.
func LogInstallSkipped(packageName, reason string) {
	Event("install", "skip", "skipped", fmt.Sprintf("Skipping %s: %s", packageName, reason),
		WithPackage(packageName))
}

// LogUninstallComplete logs a rollback uninstall; the exit code is informational.
func LogUninstallComplete(packageName string, exitCode int, err error) {
	Event("uninstall", "complete", "completed", fmt.Sprintf("Uninstalled %s", packageName),
		WithPackage(packageName), WithExitCode(exitCode), WithError(err))
}

// LogRemovalEvent logs the outcome of a conflicting product removal.
func LogRemovalEvent(productName, productCode, status string, err error) {
	Event("removal", "uninstall", status, fmt.Sprintf("Product removal %s: %s", status, productName),
		WithPackage(productName), WithContext("product_code", productCode), WithError(err))
}

// LogRollbackEvent logs the start or end of a rollback.
func LogRollbackEvent(status string, packages int) {
	Event("rollback", "rollback", status, fmt.Sprintf("Rollback %s", status),
		WithContext("packages", packages))
}
