package main

import (
	"context"
	"fmt"
	"time"

	"unimarket/internal/app"
	"unimarket/internal/config"
	"unimarket/internal/database/migration"
	"unimarket/internal/pkg/logger"

	"github.com/spf13/cobra"
)

type env struct {
	cfg       config.Config
	log       logger.Logger
	container *app.Container
}

// open loads config and connects; callers must close the container.
func open(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = cfg.Log.Level
	}
	lg, err := logger.New(level)
	if err != nil {
		return nil, err
	}
	c, err := app.NewContainer(cfg, lg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: lg, container: c}, nil
}

func (e *env) close() {
	_ = e.container.Close()
	_ = e.log.Sync()
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "platformctl",
		Short:         "Operate the unimarket platform database and batch jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "override LOG_LEVEL")

	root.AddCommand(newMigrateCommand(), newSeedCommand(), newRecommendCommand())
	return root
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if status, _ := cmd.Flags().GetBool("status"); status {
				states, err := app.MigrationStatus(cmd.Context(), e.container.DB)
				if err != nil {
					return fmt.Errorf("migration status: %w", err)
				}
				printMigrationStatus(cmd, states)
				return nil
			}

			done, err := app.Migrate(cmd.Context(), e.container.DB, e.log)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			cmd.Printf("applied %d migration(s)\n", len(done))
			return nil
		},
	}
	cmd.Flags().Bool("status", false, "list migrations and whether they are applied")
	return cmd
}

func printMigrationStatus(cmd *cobra.Command, states []migration.State) {
	for _, st := range states {
		switch {
		case st.Modified:
			cmd.Printf("V%-4d %-40s MODIFIED since %s\n", st.Version, st.Name, st.AppliedAt.Format(time.RFC3339))
		case st.Applied:
			cmd.Printf("V%-4d %-40s applied %s\n", st.Version, st.Name, st.AppliedAt.Format(time.RFC3339))
		default:
			cmd.Printf("V%-4d %-40s pending\n", st.Version, st.Name)
		}
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the admin user, forum categories and achievements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if err := app.Seed(cmd.Context(), e.container.DB, e.cfg.Seed, e.log); err != nil {
				return err
			}
			e.log.Info("seeders finished")
			return nil
		},
	}
}

func newRecommendCommand() *cobra.Command {
	recommend := &cobra.Command{
		Use:   "recommend",
		Short: "Recommendation batch jobs",
	}

	var timeout time.Duration
	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute job and talent recommendations now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res, err := e.container.Services.Recommendation.Refresh(ctx, "cli")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users=%d jobs=%d by_user=%d by_job=%d took=%s\n",
				res.Users, res.Jobs, res.ByUser, res.ByJob, res.Duration.Round(time.Millisecond))
			return nil
		},
	}
	refresh.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "abort the refresh after this long")

	recommend.AddCommand(refresh)
	return recommend
}
