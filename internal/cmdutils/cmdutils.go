package cmdutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/superquinquin/consigne-desk/internal/config"
)

const (
	// EnvAPIBaseURL overrides api.baseURL.
	EnvAPIBaseURL = "CONSIGNE_API_BASE_URL"

	// OutputFlag is the persistent flag overriding desk.output.
	OutputFlag = "output"

	envFile = ".env"
)

// Invocation is what the command line hands over to an action.
type Invocation struct {
	Args []string
	Out  io.Writer
}

type Action func(ctx context.Context, cfg *config.Config, in Invocation) error

type Wrapper func(context.Context, func(context.Context, *config.Config) error, *config.Config) error

func CobraCommand(use, short, long, buildInfo string, wrapperFunc Wrapper, action Action) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if flag := cmd.Flags().Lookup(OutputFlag); flag != nil && flag.Changed {
				cfg.Desk.Output = flag.Value.String()
			}

			in := Invocation{
				Args: args,
				Out:  cmd.OutOrStdout(),
			}

			err = wrapperFunc(cmd.Context(), func(ctx context.Context, cfg *config.Config) error {
				return action(ctx, cfg, in)
			}, cfg)
			if err != nil {
				return fmt.Errorf("running %s: %w", use, err)
			}

			return nil
		},
	}
}

// RunWithTelemetry is used by the commands talking to the consigne backend.
func RunWithTelemetry(ctx context.Context, fn func(context.Context, *config.Config) error, cfg *config.Config) error {
	return run(ctx, true, fn, cfg)
}

func RunAsJob(ctx context.Context, fn func(context.Context, *config.Config) error, cfg *config.Config) error {
	return run(ctx, false, fn, cfg)
}

func run(ctx context.Context, withTelemetry bool, fn func(context.Context, *config.Config) error, cfg *config.Config) error {
	// LoggerConfig
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}
	slogctx.Debug(ctx, "Starting the command", slog.Any("config", cfg))

	// OpenTelemetry
	if withTelemetry {
		err = otlp.Init(ctx, &cfg.Application, &cfg.Telemetry, &cfg.Logger)
		if err != nil {
			return oops.In("main").Wrapf(err, "Failed to load the telemetry")
		}
	}

	// Business Logic
	err = fn(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to run the command")
	}

	return nil
}

func loadConfig(buildInfo string) (*config.Config, error) {
	err := loadEnvFile(envFile)
	if err != nil {
		return nil, err
	}

	defaultValues := map[string]any{}
	cfg := &config.Config{}

	err = commoncfg.LoadConfig(
		cfg,
		defaultValues,
		"/etc/consigne-desk",
		"$HOME/.consigne-desk",
		".",
	)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	// Update Version
	err = commoncfg.UpdateConfigVersion(
		&cfg.BaseConfig,
		buildInfo,
	)
	if err != nil {
		return nil, fmt.Errorf("updating the version configuration: %w", err)
	}

	applyEnv(cfg)

	return cfg, nil
}

// loadEnvFile exports the variables of path. Variables already set win.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *config.Config) {
	if baseURL := os.Getenv(EnvAPIBaseURL); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
}
