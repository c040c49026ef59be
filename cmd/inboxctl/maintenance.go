package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/popeskul/crm-inbox/internal/repository"
	"github.com/popeskul/crm-inbox/internal/service"
)

func backfillCmd(a *app) *cobra.Command {
	var contactID string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Assign tenants to stored messages that have none",
		Long: `Copies the tenant of each contact onto its messages whose tenant is
still empty. Restrict the run to one contact with --contact.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.connect()
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.NewRepository(db)
			audit := service.NewAuditService(a.cfg.Audit, repo, a.logger)
			ingestion := service.NewIngestionService(repo, nil, nil, audit, a.logger)

			updated, err := ingestion.BackfillMissingTenant(cmd.Context(), contactID)
			if err != nil {
				return fmt.Errorf("backfill failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d messages\n", updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&contactID, "contact", "", "only backfill this contact")

	return cmd
}

func sweepAuditCmd(a *app) *cobra.Command {
	var retentionDays int

	cmd := &cobra.Command{
		Use:   "sweep-audit",
		Short: "Delete raw webhook records past the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.connect()
			if err != nil {
				return err
			}
			defer db.Close()

			auditCfg := a.cfg.Audit
			if cmd.Flags().Changed("days") {
				auditCfg.RetentionDays = retentionDays
			}

			removed, err := service.NewAuditService(auditCfg, repository.NewRepository(db), a.logger).Sweep(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d audit records\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&retentionDays, "days", 0, "override the configured retention in days")

	return cmd
}
