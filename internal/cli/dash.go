package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/openpermits/permitdash/internal/arcgis"
	"github.com/openpermits/permitdash/internal/session"
	"github.com/openpermits/permitdash/internal/tui"
)

// dashCmd represents the dash command
var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Run the interactive permit dashboard",
	Long: `Dash opens a terminal dashboard: a permit table and a geographic
scatter view over the same filtered records. Selecting rows in the
table or points on the map focuses the other view and the detail
panel; changing the date range or any filter clears the selection.`,
	RunE: runDash,
}

func init() {
	rootCmd.AddCommand(dashCmd)
	dashCmd.Flags().StringVar(&endpoint, "url", "", "feature-query endpoint URL override")
	dashCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the query result cache")
}

var noCache bool

func runDash(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	if noCache {
		cfg.Cache.Enabled = false
	}

	ses := session.New(cfg, arcgis.NewClient(cfg.Endpoint, cfg.HTTP), nil)
	program := tea.NewProgram(tui.NewModel(cfg, ses, nil), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
