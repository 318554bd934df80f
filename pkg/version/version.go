// pkg/version/version.go - build information for the bootstrapper binary.

package version

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Set with -ldflags "-X github.com/windowsadmins/cimianboot/pkg/version.version=...".
var (
	version   = "dev"
	branch    = "unknown"
	revision  = "unknown"
	buildDate = "unknown"
	appName   = "cimianboot"
)

// Info is the build information of the running binary.
type Info struct {
	AppName   string `json:"app_name" yaml:"app_name"`
	Version   string `json:"version" yaml:"version"`
	Branch    string `json:"branch" yaml:"branch"`
	Revision  string `json:"revision" yaml:"revision"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	BuildDate string `json:"build_date" yaml:"build_date"`
}

// Version returns the current build information.
func Version() Info {
	return Info{
		AppName:   appName,
		Version:   version,
		Branch:    branch,
		Revision:  revision,
		GoVersion: runtime.Version(),
		BuildDate: buildDate,
	}
}

// String returns "name version".
func (i Info) String() string {
	return fmt.Sprintf("%s %s", i.AppName, i.Version)
}

// Print writes the application name and version to stdout.
func Print() {
	fmt.Println(Version().String())
}

// PrintFull writes the application name and detailed build information to w.
func PrintFull(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	v := Version()
	fmt.Fprintln(w, v.String())
	fmt.Fprintf(w, "  branch: \t%s\n", v.Branch)
	fmt.Fprintf(w, "  revision: \t%s\n", v.Revision)
	fmt.Fprintf(w, "  build date: \t%s\n", v.BuildDate)
	fmt.Fprintf(w, "  go version: \t%s\n", v.GoVersion)
}

// Normalize trims trailing ".0" segments from version strings.
func Normalize(version string) string {
	parts := strings.Split(version, ".")
	for len(parts) > 1 && parts[len(parts)-1] == "0" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}
