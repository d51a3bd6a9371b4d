package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	pgStorage "eseva-portal/internal/adapter/storage/postgres"
	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// errDrift makes the command exit non-zero once the report is printed.
var errDrift = errors.New("ledger drift detected")

func reconcileCmd() *cobra.Command {
	var accountFlag string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored wallet balances with the ledger",
		Long: `Sums every SUCCESS ledger entry per account and compares the result
with the stored balance. Exits with status 1 when any account drifts.

Examples:
  portalctl reconcile
  portalctl reconcile --account 3f0c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()

			pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			accountRepo := pgStorage.NewAccountRepo(pool)
			ledger := service.NewLedgerService(accountRepo, pgStorage.NewLedgerRepo(pool), pgStorage.NewTransactor(pool), log)

			var ids []uuid.UUID
			if accountFlag != "" {
				id, err := uuid.Parse(accountFlag)
				if err != nil {
					return fmt.Errorf("invalid --account: %w", err)
				}
				ids = []uuid.UUID{id}
			} else {
				ids, err = accountRepo.ListIDs(ctx)
				if err != nil {
					return fmt.Errorf("list accounts: %w", err)
				}
			}

			drifted, err := reconcileAccounts(ctx, ledger, ids, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if drifted > 0 {
				return fmt.Errorf("%w in %d of %d accounts", errDrift, drifted, len(ids))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "reconcile a single account id")

	return cmd
}

// reconcileAccounts prints one line per account and returns how many drift.
func reconcileAccounts(ctx context.Context, ledger ports.LedgerService, ids []uuid.UUID, out io.Writer) (int, error) {
	drifted := 0
	for _, id := range ids {
		totals, err := ledger.ReconcileAccount(ctx, id)
		if err != nil {
			return drifted, fmt.Errorf("reconcile %s: %w", id, err)
		}

		state := "ok"
		if totals.Drift() != 0 {
			state = "DRIFT"
			drifted++
		}
		fmt.Fprintf(out, "%s  %-5s  stored=%s  credits=%s  debits=%s  drift=%s\n",
			id, state,
			domain.FormatRupees(totals.StoredBalance),
			domain.FormatRupees(totals.Credits),
			domain.FormatRupees(totals.Debits),
			domain.FormatRupees(totals.Drift()),
		)
	}
	fmt.Fprintf(out, "%d accounts checked, %d drifted\n", len(ids), drifted)
	return drifted, nil
}
