package main

import (
	"context"
	"fmt"

	fileStorage "eseva-portal/internal/adapter/storage/files"
	redisStorage "eseva-portal/internal/adapter/storage/redis"
	"eseva-portal/internal/service"

	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Purge staging directories whose staged upload has expired",
		Long: `Runs one pass of the staging sweeper, the same pass the API server
runs on its sweep interval. Directories younger than the staging TTL and
directories whose staged upload record still exists are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()

			rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
			if err != nil {
				return err
			}
			defer rdb.Close()

			encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
			if err != nil {
				return fmt.Errorf("encryption service: %w", err)
			}

			sweeper := service.NewStagingSweeper(
				fileStorage.NewLocalStaging(cfg.Storage.UploadDir, log),
				redisStorage.NewStagedUploadStore(rdb, encSvc),
				cfg.Storage.StagingTTL,
				log,
			)
			removed, err := sweeper.SweepOnce(ctx)
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d staging directories\n", removed)
			return nil
		},
	}
}
