package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/devcamper-backend/internal/app"
	dataagg "github.com/yungbote/devcamper-backend/internal/data/aggregates"
	"github.com/yungbote/devcamper-backend/internal/data/db"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dir string
	root := &cobra.Command{
		Use:           "seeder",
		Short:         "Load or remove the bootcamp directory seed data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "_data", "directory holding users, bootcamps, courses and reviews files (.json or .yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "import",
		Short: "Insert the seed files and recompute every bootcamp rollup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSeeder(cmd.Context(), func(s *seeder) error {
				set, err := loadSeedDir(cmd.Context(), dir)
				if err != nil {
					return err
				}
				if err := s.Import(cmd.Context(), set); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Data Imported... users=%d bootcamps=%d courses=%d reviews=%d\n",
					len(set.Users), len(set.Bootcamps), len(set.Courses), len(set.Reviews))
				return nil
			})
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "destroy",
		Short: "Delete every user, bootcamp, course and review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSeeder(cmd.Context(), func(s *seeder) error {
				if err := s.Destroy(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Data Destroyed...")
				return nil
			})
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "recompute",
		Short: "Recompute average cost and rating for every bootcamp",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSeeder(cmd.Context(), func(s *seeder) error {
				n, err := s.Recompute(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recomputed %d bootcamps\n", n)
				return nil
			})
		},
	})
	return root
}

func withSeeder(ctx context.Context, fn func(*seeder) error) error {
	base, err := app.LoadBaseConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(base.Logging())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	dbService, err := db.NewService(log, base.Database())
	if err != nil {
		return err
	}
	defer dbService.Close()
	if err := dbService.AutoMigrateAll(); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	s, err := newSeeder(dbService.DB(), log, dataagg.NewObservabilityHooks(nil))
	if err != nil {
		return err
	}
	return fn(s)
}
