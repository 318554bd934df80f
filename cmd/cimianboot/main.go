// cmd/cimianboot/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/cimianboot/pkg/blocking"
	"github.com/windowsadmins/cimianboot/pkg/config"
	"github.com/windowsadmins/cimianboot/pkg/extract"
	"github.com/windowsadmins/cimianboot/pkg/guard"
	"github.com/windowsadmins/cimianboot/pkg/installer"
	"github.com/windowsadmins/cimianboot/pkg/logging"
	"github.com/windowsadmins/cimianboot/pkg/msi"
	"github.com/windowsadmins/cimianboot/pkg/predicates"
	"github.com/windowsadmins/cimianboot/pkg/progress"
	"github.com/windowsadmins/cimianboot/pkg/prompt"
	"github.com/windowsadmins/cimianboot/pkg/registry"
	"github.com/windowsadmins/cimianboot/pkg/removal"
	"github.com/windowsadmins/cimianboot/pkg/session"
	"github.com/windowsadmins/cimianboot/pkg/status"
	"github.com/windowsadmins/cimianboot/pkg/version"
)

// Process exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

var logger *logging.Logger

type options struct {
	configPath   string
	manifestPath string
	payloadPath  string
	quiet        bool
	yes          bool
	confirm      string
	products     string
	statusAddr   string
	showConfig   bool
	version      bool
	verbosity    int
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts options
	flags := pflag.NewFlagSet("cimianboot", pflag.ContinueOnError)
	flags.StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "Path to the settings file.")
	flags.StringVar(&opts.manifestPath, "manifest", "", "Path to the package manifest (overrides ManifestPath).")
	flags.StringVar(&opts.payloadPath, "payload", "", "Directory holding the payload chunks (overrides PayloadPath).")
	flags.BoolVar(&opts.quiet, "quiet", false, "Prefer the quiet install and uninstall arguments.")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "Answer yes to every confirmation.")
	flags.StringVar(&opts.confirm, "confirm", "", "How to ask for confirmation: console, messagebox, yes or no.")
	flags.StringVar(&opts.products, "products", "", "Installed product source: msi or wmi.")
	flags.StringVar(&opts.statusAddr, "status-addr", "", "Address of a status window to report progress to.")
	flags.BoolVar(&opts.showConfig, "show-config", false, "Display the current configuration and exit.")
	flags.BoolVar(&opts.version, "version", false, "Print the version and exit.")
	// 0 => ERROR, 1 => WARN, 2 => INFO, 3+ => DEBUG
	flags.CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv, -vvv)")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	if opts.version {
		version.Print()
		return exitOK
	}

	logger = logging.New(opts.verbosity > 0)

	cfg, err := config.LoadConfig(opts.configPath, registry.NewLive())
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		return exitUsage
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		return exitUsage
	}

	if opts.showConfig {
		if cfgYaml, err := yaml.Marshal(cfg); err == nil {
			logger.Printf("Current configuration:\n%s", string(cfgYaml))
		}
		return exitOK
	}

	if err := logging.Init(logging.LoggerConfig{
		BaseDir:    cfg.LogPath,
		Component:  "cimianboot",
		Version:    version.Version().Version,
		Level:      logging.ParseLevel(cfg.LogLevel),
		KeepRuns:   cfg.KeepLogRuns,
		EnableJSON: true,
	}); err != nil {
		logger.Warning("Failed to initialize log files, logging to console only: %v", err)
	}
	defer logging.CloseLogger()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		logger.Warning("Signal received, exiting: %s", sig.String())
		logging.Warn("Signal received, installation interrupted", "signal", sig.String())
		logging.CloseLogger()
		os.Exit(exitFailed)
	}()

	manifest, err := config.LoadManifest(cfg.ManifestPath)
	if err != nil {
		logger.Error("Failed to load manifest: %v", err)
		return exitUsage
	}

	return install(cfg, manifest)
}

// applyFlags overrides settings with command line values.
func applyFlags(cfg *config.Configuration, opts options) {
	if opts.manifestPath != "" {
		cfg.ManifestPath = opts.manifestPath
	}
	if opts.payloadPath != "" {
		cfg.PayloadPath = opts.payloadPath
	}
	if opts.quiet {
		cfg.Quiet = true
	}
	if opts.confirm != "" {
		cfg.Confirm = opts.confirm
	}
	if opts.yes {
		cfg.Confirm = config.ConfirmYes
	}
	if opts.products != "" {
		cfg.ProductSource = opts.products
	}
	if opts.statusAddr != "" {
		cfg.StatusAddress = opts.statusAddr
	}

	switch opts.verbosity {
	case 0:
		// keep the configured level
	case 1:
		cfg.LogLevel = "WARN"
	case 2:
		cfg.LogLevel = "INFO"
	default:
		cfg.LogLevel = "DEBUG"
	}
	if opts.verbosity > 0 {
		cfg.Verbose = true
		if opts.verbosity >= 3 {
			cfg.Debug = true
		}
	}
}

// payloadDir resolves a relative payload directory against the manifest location.
func payloadDir(cfg *config.Configuration) string {
	if filepath.IsAbs(cfg.PayloadPath) {
		return cfg.PayloadPath
	}
	return filepath.Join(filepath.Dir(cfg.ManifestPath), cfg.PayloadPath)
}

func confirmer(mode string) prompt.Confirmer {
	switch mode {
	case config.ConfirmMessageBox:
		return prompt.NewMessageBox()
	case config.ConfirmYes:
		return prompt.Always(true)
	case config.ConfirmNo:
		return prompt.Always(false)
	default:
		return prompt.NewConsole()
	}
}

func productSource(source string) msi.Enumerator {
	if source == config.ProductSourceWMI {
		return msi.NewWMIEnumerator()
	}
	return msi.NewAPIEnumerator()
}

func install(cfg *config.Configuration, manifest *config.Manifest) int {
	if err := os.MkdirAll(cfg.TempPath, 0755); err != nil {
		logger.Error("Failed to create temp directory: %v", err)
		return exitFailed
	}

	var reporter status.Reporter = status.NewNoOpReporter()
	if cfg.StatusAddress != "" {
		reporter = status.NewSocketReporter(cfg.StatusAddress)
	}
	if err := reporter.Start(context.Background()); err != nil {
		logger.Warning("Failed to start status reporter: %v", err)
		reporter = status.NewNoOpReporter()
	}
	defer reporter.Stop()
	reporter.Message(manifest.ProductName)

	stream := progress.NewStream()
	notifier := progress.NewNotifier(stream, status.NewBridge(reporter))
	confirm := confirmer(cfg.Confirm)
	runner := installer.ExecRunner{HideWindow: true}

	s, err := session.New(session.Options{
		Manifest:  manifest,
		Evaluator: predicates.NewEvaluator(registry.NewLive(), blocking.ProcessLister{}),
		Installer: &installer.Installer{
			Runner:   runner,
			Payloads: extract.DirProvider{Dir: payloadDir(cfg)},
			TempDir:  cfg.TempPath,
			Quiet:    cfg.Quiet,
		},
		Removal: &removal.Coordinator{
			Products: productSource(cfg.ProductSource),
			Confirm:  confirm,
			Runner:   runner,
			TempDir:  cfg.TempPath,
			Title:    manifest.ProductName,
		},
		Guard:    guard.New(manifest.InstanceID, manifest.ProductName, ""),
		Confirm:  confirm,
		Notifier: notifier,
	})
	if err != nil {
		logger.Error("Failed to create install session: %v", err)
		return exitFailed
	}
	defer s.Close()

	results := s.Start()
	printProgress(logger, stream.Events())
	res := <-results
	writeSummary(manifest, res)

	if !res.Succeeded() {
		reporter.Error(res.Err)
		logger.Error("%v", res.Err)
		if dir := logging.GetCurrentLogDir(); dir != "" {
			reporter.ShowLog(filepath.Join(dir, "bootstrap.log"))
		}
		return exitFailed
	}
	logger.Success("%s installed.", manifest.ProductName)
	return exitOK
}

func writeSummary(manifest *config.Manifest, res session.Result) {
	summary := logging.SessionSummary{
		Product:    manifest.ProductName,
		Status:     "completed",
		EndTime:    time.Now(),
		Packages:   len(manifest.Packages),
		Installed:  res.Installed,
		Skipped:    res.Skipped,
		RolledBack: res.RolledBack,
	}
	switch {
	case res.State == session.RollingBack:
		summary.Status = "rolled_back"
	case !res.Succeeded():
		summary.Status = "failed"
	}
	if res.Err != nil {
		summary.Error = res.Err.Error()
	}
	if err := logging.EndSession(summary); err != nil {
		logging.Debug("Session summary not written", "error", err)
	}
}
