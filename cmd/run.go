package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FintorAI/LG-RackandStack/internal/model"
	"github.com/FintorAI/LG-RackandStack/internal/workflow"
)

var runInputFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the rack-and-stack workflow for one loan",
	Long:  "Reads a run input JSON body from --input (or stdin with --input -) and executes the full stage chain, printing the completion report to stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := readRunInput(runInputFile)
		if err != nil {
			return err
		}

		in, err := model.ParseRunInput(data)
		if err != nil {
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				return eris.Wrap(verr, "run")
			}
			return err
		}

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		client, err := initESFuse()
		if err != nil {
			return err
		}

		table, err := loadFieldTable()
		if err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, *in)
		if err != nil {
			return eris.Wrap(err, "create run")
		}

		runner := workflow.NewRunner(client, table, workflow.Options{
			RunID:          run.ID,
			DocConcurrency: cfg.Workflow.DocConcurrency,
			ArtifactDir:    cfg.Workflow.ArtifactDir,
			SubmissionType: cfg.Submission.Type,
			AutoLock:       cfg.Submission.AutoLock,
		})

		report, err := runner.Run(ctx, in)
		if err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("mark run failed", zap.String("run_id", run.ID), zap.Error(failErr))
			}
			return eris.Wrap(err, "workflow run")
		}

		if err := st.CompleteRun(ctx, run.ID, report); err != nil {
			zap.L().Error("store run report failed", zap.String("run_id", run.ID), zap.Error(err))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

// readRunInput reads the run input body from a file, or stdin for "-".
func readRunInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, eris.Wrap(err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read input file %s", path)
	}
	return data, nil
}

func init() {
	runCmd.Flags().StringVar(&runInputFile, "input", "", "path to run input JSON, or - for stdin (required)")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
