package cli

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/faultchar/characterization/algorithm"
	"github.com/example/faultchar/cmd/faultchar/internal/ui"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

const banner = `
  __             _ _       _
 / _| __ _ _   _| | |_ ___| |__   __ _ _ __
| |_ / _' | | | | | __/ __| '_ \ / _' | '__|
|  _| (_| | |_| | | || (__| | | | (_| | |
|_|  \__,_|\__,_|_|\__\___|_| |_|\__,_|_|
`

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of faultchar.`,
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprint(ui.Out, banner, "\n")
	ui.PrintInfo(fmt.Sprintf("Version: %s", buildVersion()))
	ui.PrintInfo(fmt.Sprintf("Algorithms: %s", strings.Join(algorithm.Names(), ", ")))
	ui.PrintInfo("")
	ui.PrintInfo("For help: faultchar --help")
}

func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
