package commands

import (
	"encoding/json"
	"os"

	"github.com/lumocast/pickerd/internal/capture"
	"github.com/spf13/cobra"
)

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List local monitors (best effort)",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(capture.ListMonitors())
	},
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List visible windows (best effort)",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(capture.ListWindows())
	},
}

func init() {
	rootCmd.AddCommand(monitorsCmd)
	rootCmd.AddCommand(windowsCmd)
}
