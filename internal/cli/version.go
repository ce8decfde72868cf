package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lacquerai/deriv/internal/style"
)

// Build-time variables (set by goreleaser or build scripts)
var (
	Version   = "dev"
	Commit    = "unknown"
	Date      = "unknown"
	BuiltBy   = "unknown"
	GoVersion = runtime.Version()
)

var versionShort bool

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version information for drv, including build details.`,
	Example: `
  drv version                # Show version and build info
  drv version --short        # Only the version number
  drv version --output json  # Show version info as JSON`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showVersion(cmd)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
}

// VersionInfo represents version information
type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

func currentVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		BuiltBy:   BuiltBy,
		GoVersion: GoVersion,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func showVersion(cmd *cobra.Command) error {
	info := currentVersionInfo()
	if printed, err := style.Print(cmd.OutOrStdout(), viper.GetString("output"), info); printed {
		return err
	}
	printText(cmd.OutOrStdout(), info, versionShort)
	return nil
}

func printText(w io.Writer, info VersionInfo, short bool) {
	if short {
		fmt.Fprintln(w, info.Version)
		return
	}
	fmt.Fprintf(w, "drv %s\n", info.Version)
	fmt.Fprintln(w, style.Labeled("commit", info.Commit))
	fmt.Fprintln(w, style.Labeled("built", info.Date))
	fmt.Fprintln(w, style.Labeled("built by", info.BuiltBy))
	fmt.Fprintln(w, style.Labeled("go", info.GoVersion))
	fmt.Fprintln(w, style.Labeled("platform", info.Platform))
}
