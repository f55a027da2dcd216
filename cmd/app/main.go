// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/anonymizer/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "anonymizer",
		Usage:   "Format-preserving data anonymization",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run vault database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "anonymize",
				Usage: "Anonymize a CSV stream",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Input CSV file (defaults to stdin)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output CSV file (defaults to stdout)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Report format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunAnonymize(
						ctx,
						cmd.String("input"),
						cmd.String("output"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "analyze",
				Usage: "Detect column types from a CSV sample without transforming",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Input CSV file (defaults to stdin)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunAnalyze(
						ctx,
						cmd.String("input"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "reverse",
				Usage: "Look up the original value for an anonymized one",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "column",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Column the value was anonymized under",
					},
					&cli.StringFlag{
						Name:     "value",
						Aliases:  []string{"v"},
						Required: true,
						Usage:    "Anonymized value to reverse",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunReverse(
						ctx,
						cmd.String("column"),
						cmd.String("value"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "vault-stats",
				Usage: "Show mapping counts stored in the vault",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunVaultStats(ctx, cmd.String("format"), commands.DefaultIO())
				},
			},
			{
				Name:  "create-vault-key",
				Usage: "Generate a new vault key and export it to the key file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "key-file",
						Aliases: []string{"k"},
						Usage:   "Destination key file (defaults to the configured path)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateVaultKey(ctx, cmd.String("key-file"), commands.DefaultIO())
				},
			},
			{
				Name:  "profiles",
				Usage: "List the built-in anonymization profiles",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunProfiles(cmd.String("format"), commands.DefaultIO())
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
