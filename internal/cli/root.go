package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type options struct {
	configPath string
	port       string
	verbose    bool
	logFormat  string
	profile    bool
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	v := viper.New()
	v.SetEnvPrefix("MILLIONAIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "millionaire-service",
		Short:         "Millionaire trivia game server",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts)
		},
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVar(&opts.configPath, "config", "config/config.yaml", "path to YAML config (env: MILLIONAIRE_CONFIG)")
	fs.StringVarP(&opts.port, "port", "p", "", "port to listen on, overrides server.port (env: MILLIONAIRE_PORT)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level (env: MILLIONAIRE_VERBOSE)")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log output format: text or json (env: MILLIONAIRE_LOG_FORMAT)")
	fs.BoolVar(&opts.profile, "profile", false, "serve pprof handlers under /debug/pprof (env: MILLIONAIRE_PROFILE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.AddCommand(NewStartCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(NewImportQuestionsCmd(opts))
	return cmd
}

func setupLogging(opts *options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch opts.logFormat {
	case "", "text":
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", opts.logFormat)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
