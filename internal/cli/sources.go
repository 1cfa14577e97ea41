package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/andreypopp/configure/internal/app"
)

func newSourcesCommand() *cobra.Command {
	opts := sourceOptions{}
	cmd := &cobra.Command{
		Use:   "sources FILE",
		Short: "List the documents a configuration is built from and the markers left to resolve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources(cmd.Context(), cmd, args[0], opts)
		},
	}
	addSourceFlags(cmd, &opts)
	return cmd
}

func runSources(ctx context.Context, cmd *cobra.Command, file string, opts sourceOptions) error {
	ctx = commandContext(ctx)
	service, err := newAppService()
	if err != nil {
		return err
	}
	req, err := loadRequest(cmd, file, opts)
	if err != nil {
		return err
	}
	result, err := service.Inspect(ctx, app.InspectRequest{Load: req})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	digest := color.New(color.FgYellow)
	for _, source := range result.Sources {
		digest.Fprint(out, shortDigest(source.Digest))
		fmt.Fprintf(out, "  %s\n", source.Path)
	}
	if len(result.Markers) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	for _, marker := range result.Markers {
		fmt.Fprintf(out, "%4d  %s\n", marker.Count, marker.Marker)
	}
	return nil
}

func shortDigest(digest string) string {
	if len(digest) > 16 {
		return digest[:16]
	}
	return digest
}
