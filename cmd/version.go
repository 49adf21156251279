package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		bi, _ := debug.ReadBuildInfo()
		fmt.Fprintln(cmd.OutOrStdout(), versionString(version, bi))
	},
}

// versionString prefers the linker-stamped version, then the module version
// recorded by the toolchain, then the VCS revision.
func versionString(stamped string, bi *debug.BuildInfo) string {
	v := stamped
	goVersion := ""
	revision := ""
	dirty := false
	if bi != nil {
		goVersion = bi.GoVersion
		if v == "" && bi.Main.Version != "" {
			v = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
	}
	if v == "" {
		v = "(devel)"
	}

	out := "adaptiq " + v
	if revision != "" {
		if len(revision) > 12 {
			revision = revision[:12]
		}
		if dirty {
			revision += "-dirty"
		}
		out += fmt.Sprintf(" (%s)", revision)
	}
	if goVersion != "" {
		out += " " + goVersion
	}
	return out
}
