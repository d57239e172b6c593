package main

import (
	"encoding/json"
	"fmt"
	"os"

	"enova_backend/internal/energydata/transport"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Print one organization's certificates for a year as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		org, _ := cmd.Flags().GetString("org")
		force, _ := cmd.Flags().GetBool("force")

		if year <= 0 {
			return fmt.Errorf("--year is required")
		}

		rt, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		records, err := rt.module.Service().GetEnergyPublicData(cmd.Context(), year, org, force)
		if err != nil {
			return fmt.Errorf("fetch %d: %w", year, err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(transport.ToResponseModels(records))
	},
}

func init() {
	fetchCmd.Flags().Int("year", 0, "year of the EMS file")
	fetchCmd.Flags().String("org", "", "organization number, matched exactly")
	fetchCmd.Flags().Bool("force", false, "download the file even if the year is cached")
	rootCmd.AddCommand(fetchCmd)
}
