package main

import (
	"context"
	"coursesi/config"
	"coursesi/database"
	"coursesi/services/quiz"
	"coursesi/utils"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	var (
		sinceFlag string
		all       bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile-certificates",
		Short: "Issue or refresh certificates for every eligible passed post-test",
		Long: `Re-runs the certificate eligibility check for passed post-tests that have
no certificate yet or changed since --since (default: the beginning of yesterday).
Use --all to re-check every passed post-test.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var since time.Time
			switch {
			case all:
			case sinceFlag != "":
				parsed, err := time.Parse(time.RFC3339, sinceFlag)
				if err != nil {
					return fmt.Errorf("--since must be RFC3339: %w", err)
				}
				since = parsed
			default:
				since = utils.ReconcileWindow(time.Now())
			}

			config.LoadConfig()
			database.ConnectDb()
			db := database.Database.Db

			if dryRun {
				recs, err := quiz.NewLedger(db, nil).ListReconcilable(cmd.Context(), since)
				if err != nil {
					return err
				}
				log.Printf("Dry run: %d passed post-test record(s) would be checked", len(recs))
				return nil
			}

			svc := quiz.NewService(db, quiz.Options{
				DefaultPassingPercent: config.AppConfig.DefaultPassingPercent,
				Publisher:             utils.NewCertificateDispatcher(db, config.AppConfig),
			})
			report, err := svc.Reconcile(cmd.Context(), since)
			if err != nil {
				return err
			}
			log.Printf("Reconciliation finished: checked=%d issued=%d refreshed=%d skipped=%d failed=%d", report.Checked, report.Issued, report.Refreshed, report.Skipped, report.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&sinceFlag, "since", "", "only re-check records updated at or after this RFC3339 time")
	cmd.Flags().BoolVar(&all, "all", false, "re-check every passed post-test")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only count the records that would be checked")
	cmd.MarkFlagsMutuallyExclusive("since", "all")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
