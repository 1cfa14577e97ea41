package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andreypopp/configure/internal/adapters"
	"github.com/andreypopp/configure/internal/app"
	"github.com/andreypopp/configure/internal/factories"
)

// sourceOptions are the flags shared by every command reading documents.
type sourceOptions struct {
	Vars []string
	Sets []string
}

func addSourceFlags(cmd *cobra.Command, opts *sourceOptions) {
	cmd.Flags().StringSliceVar(&opts.Vars, "var", nil, "Interpolation variable as name=value")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "Override as dotted.path=value (repeatable)")
	_ = viper.BindPFlag("vars", cmd.Flags().Lookup("var"))
	_ = viper.BindPFlag("set", cmd.Flags().Lookup("set"))
}

func newAppService() (app.Service, error) {
	registry := adapters.NewRegistryAdapter()
	if err := factories.Register(registry); err != nil {
		return app.Service{}, err
	}
	return app.NewService(registry), nil
}

func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return log.Logger.WithContext(ctx)
}

func loadRequest(cmd *cobra.Command, path string, opts sourceOptions) (app.LoadRequest, error) {
	vars, err := parseVariables(resolveStrings(cmd, opts.Vars, "vars", "var"))
	if err != nil {
		return app.LoadRequest{}, err
	}
	return app.LoadRequest{
		Path:      path,
		Variables: vars,
		Overrides: resolveStrings(cmd, opts.Sets, "set", "set"),
	}, nil
}

// loadAndResolve runs the whole pipeline for one document.
func loadAndResolve(ctx context.Context, service app.Service, req app.LoadRequest) (app.LoadResult, app.ResolveResult, error) {
	loaded, err := service.Load(ctx, req)
	if err != nil {
		return app.LoadResult{}, app.ResolveResult{}, err
	}
	resolved, err := service.Resolve(ctx, resolveRequest(loaded))
	if err != nil {
		return app.LoadResult{}, app.ResolveResult{}, err
	}
	return loaded, resolved, nil
}

func resolveRequest(loaded app.LoadResult) app.ResolveRequest {
	return app.ResolveRequest{Tree: loaded.Tree}
}

func parseVariables(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("variable %q must look like name=value", pair))
		}
		vars[name] = value
	}
	return vars, nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
