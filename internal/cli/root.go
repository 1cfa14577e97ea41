package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andreypopp/configure/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "CONFIGURE"

// RootConfig holds the flags shared by every command.
type RootConfig struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:          "configure",
		Short:        "Load, merge and resolve layered YAML configuration",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := readToolConfig(cfg.ConfigFile); err != nil {
				return err
			}
			return configureLogging(cmd.ErrOrStderr(), viper.GetString("log_level"), viper.GetString("log_format"))
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Tool config file (default: ./configure.yaml or ~/.config/configure/configure.yaml)")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: trace, debug, info, warn or error")
	flags.StringVar(&cfg.LogFormat, "log-format", "console", "Log format: console or json")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", flags.Lookup("log-format"))

	cmd.AddCommand(
		newResolveCommand(),
		newValidateCommand(),
		newMergedCommand(),
		newDiffCommand(),
		newGetCommand(),
		newSourcesCommand(),
	)
	return cmd
}

// readToolConfig loads the tool's own settings. An explicit file must
// exist; the default locations are optional.
func readToolConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configFile == "" {
		viper.SetConfigName("configure")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/configure")
		_ = viper.ReadInConfig()
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to read config file %s", configFile)).
			WithCause(err)
	}
	return nil
}

// configureLogging points the global logger at w. Logs never go to
// stdout, which carries command output.
func configureLogging(w io.Writer, level string, format string) error {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	case "json":
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown log format %q", format))
	}
	return nil
}

// exitCodeForError maps failures onto exit codes: 2 for syntax and
// usage, 3 for cycles, 4 for dangling references and unknown names, 5
// for missing documents and 6 for failing factories.
func exitCodeForError(err error) int {
	switch types.KindOf(err) {
	case types.KindSyntax:
		return 2
	case types.KindCompositionCycle, types.KindCircularReference, types.KindState:
		return 3
	case types.KindUnresolvedPath, types.KindImport:
		return 4
	case types.KindNotFound:
		return 5
	case types.KindConstruction:
		return 6
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition, errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound:
		return 5
	case errbuilder.CodeInternal:
		return 6
	default:
		return 1
	}
}
