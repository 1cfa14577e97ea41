package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andreypopp/configure/internal/app"
)

type validateOptions struct {
	sourceOptions
	MergeOnly bool
}

func newValidateCommand() *cobra.Command {
	opts := validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that documents load, merge and resolve",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd, args, opts)
		},
	}
	addSourceFlags(cmd, &opts.sourceOptions)
	cmd.Flags().BoolVar(&opts.MergeOnly, "merge-only", false, "Stop after merging; do not invoke factories")
	_ = viper.BindPFlag("merge_only", cmd.Flags().Lookup("merge-only"))
	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, files []string, opts validateOptions) error {
	ctx = commandContext(ctx)
	service, err := newAppService()
	if err != nil {
		return err
	}
	mergeOnly := resolveBool(cmd, opts.MergeOnly, "merge_only", "merge-only")
	for _, file := range files {
		req, err := loadRequest(cmd, file, opts.sourceOptions)
		if err != nil {
			return err
		}
		result, err := service.Validate(ctx, app.ValidateRequest{Load: req, MergeOnly: mergeOnly})
		if err != nil {
			return err
		}
		if !result.Resolved {
			fmt.Fprintf(cmd.OutOrStdout(), "merged: %s (%d documents)\n", file, result.Sources)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "validated: %s (%d documents, %d constructed)\n",
			file, result.Sources, result.Constructed)
	}
	return nil
}
