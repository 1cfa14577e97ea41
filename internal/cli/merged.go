package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreypopp/configure/internal/core"
)

func newMergedCommand() *cobra.Command {
	opts := sourceOptions{}
	cmd := &cobra.Command{
		Use:   "merged FILE",
		Short: "Print the merged tree with references and factories unresolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerged(cmd.Context(), cmd, args[0], opts)
		},
	}
	addSourceFlags(cmd, &opts)
	return cmd
}

func runMerged(ctx context.Context, cmd *cobra.Command, file string, opts sourceOptions) error {
	ctx = commandContext(ctx)
	service, err := newAppService()
	if err != nil {
		return err
	}
	req, err := loadRequest(cmd, file, opts)
	if err != nil {
		return err
	}
	loaded, err := service.Load(ctx, req)
	if err != nil {
		return err
	}
	out, err := core.FormatNode(loaded.Tree)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
	return err
}
