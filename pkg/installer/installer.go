// pkg/installer/installer.go - extracts package payloads and runs their installers.

package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/windowsadmins/cimianboot/pkg/config"
	"github.com/windowsadmins/cimianboot/pkg/extract"
	"github.com/windowsadmins/cimianboot/pkg/logging"
	"github.com/windowsadmins/cimianboot/pkg/progress"
)

// Default argument templates for MSI packages. {0} is the package path, {1} the log path.
const (
	DefaultMsiInstallArgs   = `/i "{0}" /qn /norestart /l "{1}"`
	DefaultMsiUninstallArgs = `/uninstall "{0}" /qn /norestart /l "{1}"`
)

// CommandMsi returns the path of the Windows Installer executable.
func CommandMsi() string {
	if windir := os.Getenv("WINDIR"); windir != "" {
		return filepath.Join(windir, "system32", "msiexec.exe")
	}
	return "msiexec"
}

// Installer extracts packages into TempDir and launches their installers.
// Every Extract and Install emits one progress increment and every Uninstall
// one decrement, whatever the outcome.
type Installer struct {
	Runner   Runner
	Payloads extract.Provider
	Notifier *progress.Notifier
	TempDir  string
	Msiexec  string
	Quiet    bool // prefer quiet argument templates
}

// FilePath returns the extraction path for pkg: {TempDir}/{stem}.{extension}.
func (i *Installer) FilePath(pkg config.Package) string {
	return filepath.Join(i.TempDir, pkg.Stem()+"."+pkg.Extension)
}

// Extract writes the package payload to path.
func (i *Installer) Extract(pkg config.Package, path string) error {
	i.Notifier.Message(fmt.Sprintf("Extracting %s", pkg.Name))
	defer i.Notifier.Increment()

	if err := extract.Payload(i.Payloads, pkg.ResourceKeys, path); err != nil {
		logging.Error("Failed to extract package", "package", pkg.Name, "error", err)
		return fmt.Errorf("An error occurred while extracting %s: %v", pkg.Name, err)
	}
	if pkg.SHA256 != "" {
		if err := extract.Verify(path, pkg.SHA256); err != nil {
			logging.Error("Package failed verification", "package", pkg.Name, "error", err)
			return fmt.Errorf("An error occurred while extracting %s: %v", pkg.Name, err)
		}
	}
	return nil
}

// Install runs the package installer and applies its exit code policy.
func (i *Installer) Install(pkg config.Package, path string) error {
	i.Notifier.Message(fmt.Sprintf("Installing %s", pkg.Name))
	defer i.Notifier.Increment()

	template := i.installTemplate(pkg)
	name, args := i.command(pkg, path, template, path+".install.log")

	logging.LogInstallStart(pkg.Name)
	logging.Debug("Launching installer", "package", pkg.Name, "command", name, "args", args)

	start := time.Now()
	code, err := i.Runner.Run(name, args)
	if err != nil {
		logging.LogInstallFailed(pkg.Name, code, err)
		return fmt.Errorf("An error occurred while installing %s: %v", pkg.Name, err)
	}
	if !pkg.AcceptsExitCode(code) {
		err := fmt.Errorf("An error occurred while installing %s. An exit code of '%d' was returned.", pkg.Name, code)
		logging.LogInstallFailed(pkg.Name, code, err)
		return err
	}

	logging.LogInstallComplete(pkg.Name, code, time.Since(start))
	return nil
}

// Uninstall runs the package uninstaller. The exit code is logged but not checked.
func (i *Installer) Uninstall(pkg config.Package, path string) {
	i.Notifier.Message(fmt.Sprintf("Uninstalling %s", pkg.Name))
	defer i.Notifier.Decrement()

	template := i.uninstallTemplate(pkg)
	name, args := i.command(pkg, path, template, path+".uninstall.log")

	logging.Debug("Launching uninstaller", "package", pkg.Name, "command", name, "args", args)
	code, err := i.Runner.Run(name, args)
	logging.LogUninstallComplete(pkg.Name, code, err)
}

// installTemplate picks explicit args, then quiet args, then the default for the
// package type. Quiet mode swaps the first two.
func (i *Installer) installTemplate(pkg config.Package) string {
	return pickTemplate(i.Quiet, pkg.InstallArgs, pkg.QuietInstallArgs, defaultTemplate(pkg.Extension, DefaultMsiInstallArgs))
}

func (i *Installer) uninstallTemplate(pkg config.Package) string {
	return pickTemplate(i.Quiet, pkg.UninstallArgs, pkg.QuietUninstallArgs, defaultTemplate(pkg.Extension, DefaultMsiUninstallArgs))
}

func pickTemplate(quiet bool, full, quietArgs, fallback string) string {
	first, second := full, quietArgs
	if quiet {
		first, second = quietArgs, full
	}
	switch {
	case first != "":
		return first
	case second != "":
		return second
	default:
		return fallback
	}
}

// defaultTemplate returns msiDefault for MSI packages; executables get no arguments.
func defaultTemplate(extension, msiDefault string) string {
	if extension == config.ExtMsi {
		return msiDefault
	}
	return ""
}

// command resolves the program and argument string for pkg.
func (i *Installer) command(pkg config.Package, path, template, logPath string) (string, string) {
	args := Expand(template, path, logPath)
	if pkg.Extension == config.ExtMsi {
		msiexec := i.Msiexec
		if msiexec == "" {
			msiexec = CommandMsi()
		}
		return msiexec, args
	}
	return path, args
}

// Expand substitutes {0} with the package path and {1} with the log path.
func Expand(template, path, logPath string) string {
	return strings.NewReplacer("{0}", path, "{1}", logPath).Replace(template)
}
