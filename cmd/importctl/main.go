// Command importctl runs the lost-and-found import pipeline on local files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/odnalezione/odnalezione-backend/internal/app"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing"
	"github.com/odnalezione/odnalezione-backend/internal/platform/envutil"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
	"github.com/odnalezione/odnalezione-backend/internal/platform/openai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newPipelineRunner).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newPipelineRunner builds the real pipeline from OPENAI_* settings.
func newPipelineRunner() (runner, func(), error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	client, err := openai.NewClient(log, openai.ConfigFromEnv())
	if err != nil {
		log.Sync()
		if errors.Is(err, openai.ErrMissingAPIKey) {
			return nil, nil, fmt.Errorf("%w: export it before running importctl", err)
		}
		return nil, nil, err
	}
	p, err := app.NewPipeline(log, client)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	return p, log.Sync, nil
}

func newRootCmd(newRunner func() (runner, func(), error)) *cobra.Command {
	root := &cobra.Command{
		Use:           "importctl",
		Short:         "Normalize and validate lost-and-found CSV exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newActionCmd(importing.ActionProcess, "Normalize a CSV file into records", newRunner),
		newActionCmd(importing.ActionValidate, "Validate records against their CSV rows", newRunner),
		newActionCmd(importing.ActionFull, "Normalize, then validate every record", newRunner),
	)
	return root
}

func newActionCmd(action importing.Action, short string, newRunner func() (runner, func(), error)) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(action, opts)
			if err != nil {
				return err
			}
			r, done, err := newRunner()
			if err != nil {
				return err
			}
			if done != nil {
				defer done()
			}
			return execute(cmd.Context(), r, req, opts.outPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "CSV file to import (required)")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Write the JSON result here instead of stdout")
	_ = cmd.MarkFlagRequired("csv")
	if action == importing.ActionValidate {
		cmd.Flags().StringVar(&opts.jsonPath, "json", "", "Records to validate: a JSON array or {\"items\": [...]} (required)")
		_ = cmd.MarkFlagRequired("json")
	}
	return cmd
}
