package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andreypopp/configure/internal/core"
	"github.com/andreypopp/configure/internal/types"
)

type resolveOptions struct {
	sourceOptions
	Path string
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve FILE",
		Short: "Resolve a document and print the result as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd, args[0], opts)
		},
	}
	addSourceFlags(cmd, &opts.sourceOptions)
	cmd.Flags().StringVar(&opts.Path, "path", "", "Print only the value at this dotted path")
	_ = viper.BindPFlag("path", cmd.Flags().Lookup("path"))
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, file string, opts resolveOptions) error {
	ctx = commandContext(ctx)
	service, err := newAppService()
	if err != nil {
		return err
	}
	req, err := loadRequest(cmd, file, opts.sourceOptions)
	if err != nil {
		return err
	}
	_, resolved, err := loadAndResolve(ctx, service, req)
	if err != nil {
		return err
	}

	var value any = resolved.Values
	if path := resolveString(cmd, opts.Path, "path", "path"); path != "" {
		value, err = lookup(resolved.Values, path)
		if err != nil {
			return err
		}
	}
	out, err := core.FormatValue(value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
	return err
}

func lookup(values *types.Mapping, path string) (any, error) {
	parsed, err := types.ParsePath(path)
	if err != nil {
		return nil, types.NewError(types.KindSyntax, "invalid path").WithPath(path).WithCause(err)
	}
	value, err := core.Descend(values, parsed)
	if err != nil {
		return nil, types.NewError(types.KindUnresolvedPath, "no such path").WithPath(path).WithCause(err)
	}
	return value, nil
}
