package cli

import (
	"context"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andreypopp/configure/internal/app"
	"github.com/andreypopp/configure/internal/core"
)

type diffOptions struct {
	sourceOptions
	Merged bool
}

func newDiffCommand() *cobra.Command {
	opts := diffOptions{}
	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Show how the resolved configuration differs between two documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}
	addSourceFlags(cmd, &opts.sourceOptions)
	cmd.Flags().BoolVar(&opts.Merged, "merged", false, "Compare merged trees instead of resolved values")
	_ = viper.BindPFlag("diff_merged", cmd.Flags().Lookup("merged"))
	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, oldFile string, newFile string, opts diffOptions) error {
	ctx = commandContext(ctx)
	service, err := newAppService()
	if err != nil {
		return err
	}
	merged := resolveBool(cmd, opts.Merged, "diff_merged", "merged")
	render := func(file string) (string, error) {
		req, err := loadRequest(cmd, file, opts.sourceOptions)
		if err != nil {
			return "", err
		}
		return renderDocument(ctx, service, req, merged)
	}
	before, err := render(oldFile)
	if err != nil {
		return err
	}
	after, err := render(newFile)
	if err != nil {
		return err
	}
	writeLineDiff(cmd.OutOrStdout(), before, after)
	return nil
}

func renderDocument(ctx context.Context, service app.Service, req app.LoadRequest, merged bool) (string, error) {
	loaded, err := service.Load(ctx, req)
	if err != nil {
		return "", err
	}
	if merged {
		out, err := core.FormatNode(loaded.Tree)
		return string(out), err
	}
	resolved, err := service.Resolve(ctx, resolveRequest(loaded))
	if err != nil {
		return "", err
	}
	out, err := core.FormatValue(resolved.Values)
	return string(out), err
}

// writeLineDiff prints a line-oriented diff, unchanged lines indented,
// removed lines prefixed with "-" and added ones with "+".
func writeLineDiff(w io.Writer, before string, after string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				removed.Fprintln(w, "- "+line)
			case diffmatchpatch.DiffInsert:
				added.Fprintln(w, "+ "+line)
			default:
				io.WriteString(w, "  "+line+"\n")
			}
		}
	}
}
