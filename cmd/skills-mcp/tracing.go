package main

import (
	"context"

	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/server"
	"github.com/jingkaihe/skills-mcp/pkg/telemetry"
	"github.com/jingkaihe/skills-mcp/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func tracingConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:        viper.GetBool("tracing.enabled"),
		ServiceName:    server.Name,
		ServiceVersion: version.Get().Version,
		SamplerType:    viper.GetString("tracing.sampler"),
		SamplerRatio:   viper.GetFloat64("tracing.ratio"),
	}
}

// commandAttributes describes the invocation without recording flag values,
// which may hold local paths
func commandAttributes(cmd *cobra.Command, args []string) []attribute.KeyValue {
	var flags []string
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		flags = append(flags, flag.Name)
	})

	return []attribute.KeyValue{
		attribute.String("command.name", cmd.Name()),
		attribute.String("command.path", cmd.CommandPath()),
		attribute.Int("args.count", len(args)),
		attribute.StringSlice("command.flags", flags),
		attribute.Int("skills.dirs", len(viper.GetStringSlice("skills_dirs"))),
	}
}

var tracer = telemetry.Tracer("skills-mcp.cli")

// withTracing wraps a Cobra command so that tracing is initialized before it
// runs and flushed after
func withTracing(cmd *cobra.Command) *cobra.Command {
	run := cmd.Run

	cmd.Run = func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		shutdown, err := telemetry.Init(ctx, tracingConfig())
		if err != nil {
			logger.G(ctx).WithError(err).Warn("failed to initialize tracing, continuing without it")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.G(ctx).WithError(err).Warn("failed to flush traces")
				}
			}()
		}

		ctx, span := tracer.Start(ctx, "cli."+cmd.Name(), trace.WithAttributes(commandAttributes(cmd, args)...))
		defer span.End()

		cmd.SetContext(ctx)
		run(cmd, args)
	}

	return cmd
}

func init() {
	rootCmd.PersistentFlags().Bool("tracing-enabled", false, "Enable OpenTelemetry tracing")
	rootCmd.PersistentFlags().String("tracing-sampler", "ratio", "Tracing sampler type (always, never, ratio)")
	rootCmd.PersistentFlags().Float64("tracing-ratio", 1, "Sampling ratio when using ratio sampler")

	viper.BindPFlag("tracing.enabled", rootCmd.PersistentFlags().Lookup("tracing-enabled"))
	viper.BindPFlag("tracing.sampler", rootCmd.PersistentFlags().Lookup("tracing-sampler"))
	viper.BindPFlag("tracing.ratio", rootCmd.PersistentFlags().Lookup("tracing-ratio"))
}
