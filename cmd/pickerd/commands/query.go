package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lumocast/pickerd/internal/config"
	"github.com/lumocast/pickerd/internal/ipc"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the Lumocast app for the current selection",
	Long: `Perform a one-shot selection query against the running Lumocast app
and print the answer as JSON. Useful to check the IPC contract without
going through the portal.`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to initialize config manager: %w", err)
	}
	cfg := configMgr.Get()

	client := ipc.NewClient(cfg.SocketPath, time.Duration(cfg.QueryTimeoutMs)*time.Millisecond)
	resp, err := client.QuerySelection(cmd.Context())
	if err != nil {
		return fmt.Errorf("selection query failed: %w", err)
	}

	out := struct {
		State     string         `json:"state"`
		Selection *ipc.Selection `json:"selection,omitempty"`
		Message   string         `json:"message,omitempty"`
	}{}

	switch resp.Kind {
	case ipc.KindSelection:
		out.State = "selection"
		out.Selection = resp.Selection
	case ipc.KindError:
		out.State = "error"
		out.Message = resp.Message
	default:
		out.State = "none"
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
