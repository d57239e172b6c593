package main

import (
	"fmt"

	"enova_backend/internal/scheduler"

	"github.com/spf13/cobra"
)

var warmupCmd = &cobra.Command{
	Use:   "warmup",
	Short: "Fill the cache for the most recent years",
	Long: `warmup downloads and caches the EMS file for each year. Without --years
the five most recent years are used. With --enqueue the run is handed to the
scheduler worker instead of running in this process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		years, _ := cmd.Flags().GetIntSlice("years")
		enqueue, _ := cmd.Flags().GetBool("enqueue")

		rt, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		if enqueue {
			client, err := scheduler.NewClient(rt.cfg)
			if err != nil {
				return fmt.Errorf("scheduler client: %w", err)
			}
			defer func() { _ = client.Close() }()

			if err := client.EnqueueWarmup(cmd.Context(), scheduler.WarmupPayload{ForceRefresh: force, Years: years}); err != nil {
				return fmt.Errorf("enqueue warm-up: %w", err)
			}
			rt.log.Info("warm-up enqueued", "years", years, "forceRefresh", force)
			return nil
		}

		svc := rt.module.Service()
		if len(years) == 0 {
			years = svc.RecentYears(scheduler.DefaultWarmupYears)
		}
		if err := svc.WarmUp(cmd.Context(), years, force); err != nil {
			return fmt.Errorf("warm-up: %w", err)
		}
		rt.log.Info("warm-up complete", "years", years, "forceRefresh", force)
		return nil
	},
}

func init() {
	warmupCmd.Flags().Bool("force", false, "download even when a year is cached")
	warmupCmd.Flags().IntSlice("years", nil, "years to refresh (default: five most recent)")
	warmupCmd.Flags().Bool("enqueue", false, "queue the run for the scheduler worker")
	rootCmd.AddCommand(warmupCmd)
}
