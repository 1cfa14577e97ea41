package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreypopp/configure/internal/core"
	"github.com/andreypopp/configure/internal/types"
)

func newGetCommand() *cobra.Command {
	opts := sourceOptions{}
	cmd := &cobra.Command{
		Use:   "get FILE PATH",
		Short: "Print one resolved value; scalars are printed bare",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}
	addSourceFlags(cmd, &opts)
	return cmd
}

func runGet(ctx context.Context, cmd *cobra.Command, file string, path string, opts sourceOptions) error {
	ctx = commandContext(ctx)
	service, err := newAppService()
	if err != nil {
		return err
	}
	req, err := loadRequest(cmd, file, opts)
	if err != nil {
		return err
	}
	_, resolved, err := loadAndResolve(ctx, service, req)
	if err != nil {
		return err
	}
	value, err := lookup(resolved.Values, path)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	switch v := value.(type) {
	case *types.Mapping, []any:
		out, err := core.FormatValue(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, string(out))
		return err
	case nil:
		_, err = fmt.Fprintln(w, "null")
	case string:
		_, err = fmt.Fprintln(w, v)
	case bool, int, int64, uint64, float64:
		_, err = fmt.Fprintln(w, v)
	case fmt.Stringer:
		_, err = fmt.Fprintln(w, v.String())
	default:
		_, err = fmt.Fprintf(w, "<%T>\n", v)
	}
	return err
}
