// Package main is the entry point for the fluxion binary.
// It provides a CLI for validating and running agent pipeline documents.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fluxionai/fluxion-oss/pkg/config"
	"github.com/fluxionai/fluxion-oss/pkg/engine"
	"github.com/fluxionai/fluxion-oss/pkg/logging"
	"github.com/fluxionai/fluxion-oss/pkg/telemetry"
	"github.com/fluxionai/fluxion-oss/pkg/tool"
)

const defaultLogLevel = "info"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for fluxion
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fluxion",
		Short: "Reactive agent pipeline engine",
		Long: `Fluxion compiles agent pipeline documents into reactive dataflow graphs
and runs them against a tool registry.

Example:
  fluxion run pipeline.yaml --input query="hello" --timeout-ms 5000`,
	}

	rootCmd.PersistentFlags().StringP("log-level", "l", defaultLogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP gRPC endpoint for trace export (empty disables export)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <document>",
		Short: "Run a pipeline from a document",
		Args:  cobra.ExactArgs(1),
		RunE:  runPipeline,
	}

	cmd.Flags().StringP("pipeline", "p", "", "Pipeline name (defaults to the only pipeline in the document)")
	cmd.Flags().StringArrayP("input", "i", nil, "Pipeline input as key=value (repeatable; values parsed as YAML scalars)")
	cmd.Flags().Int("timeout-ms", 0, "Deadline for the whole run in milliseconds (0 = none)")
	cmd.Flags().Int("retries", 0, "Extra run attempts after a failure")
	cmd.Flags().Bool("debug", false, "Log every emission and error of the run")

	return cmd
}

func runPipeline(cmd *cobra.Command, args []string) error {
	logger, shutdown, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	pipelineName, _ := cmd.Flags().GetString("pipeline")
	pairs, _ := cmd.Flags().GetStringArray("input")
	timeoutMS, _ := cmd.Flags().GetInt("timeout-ms")
	retries, _ := cmd.Flags().GetInt("retries")
	debug, _ := cmd.Flags().GetBool("debug")

	inputs, err := parseInputs(pairs)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0]) // #nosec G304 -- document path comes from the operator
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	rt := engine.New(engine.Config{Tools: tool.Default(), Logger: logger})
	out, err := config.RunDocument(rt, data, pipelineName, inputs, engine.Options{
		TimeoutMS: timeoutMS,
		Retries:   retries,
		Debug:     debug,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for item := range out.Subscribe(ctx) {
		if item.Err != nil {
			return item.Err
		}
		if err := enc.Encode(item.Value); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <document>",
		Short: "Validate a pipeline document without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.LoadFile(args[0])
			if err != nil {
				return err
			}
			program := doc.ToDomain()

			for _, d := range program.Warnings {
				fmt.Fprintln(cmd.OutOrStdout(), d.String())
			}
			for _, d := range program.Errors {
				fmt.Fprintln(cmd.OutOrStdout(), d.String())
			}
			if len(program.Errors) > 0 {
				return fmt.Errorf("document has %d error(s)", len(program.Errors))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d pipeline(s)\n", len(program.Pipelines))
			return nil
		},
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to pipelines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range tool.Default().List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// bootstrap wires logging and trace export from the persistent flags.
func bootstrap(cmd *cobra.Command) (*slog.Logger, func(), error) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	endpoint, _ := cmd.Flags().GetString("otlp-endpoint")

	logging.SetupLogger(logging.Config{Level: logLevel, Pretty: true})
	logger := logging.NewLogger(logging.Config{Level: logLevel, Pretty: true})
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.SetupProvider(cmd.Context(), telemetry.Config{
		ServiceName: "fluxion",
		Endpoint:    endpoint,
		Insecure:    true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("setup tracing: %w", err)
	}

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("Error flushing traces", "error", err)
		}
	}
	return logger, shutdown, nil
}

// parseInputs converts repeated key=value flags into a typed input map.
// Values are parsed as YAML scalars so numbers and booleans survive.
func parseInputs(pairs []string) (map[string]any, error) {
	inputs := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("input %q is not key=value", pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		inputs[key] = value
	}
	return inputs, nil
}
