// grantctl provisions the credentials and OAuth clients the grant model
// serves. It talks straight to the backing store; the running service never
// creates these records itself.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/app"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
)

func main() {
	cmd := &cli.Command{
		Name:  "grantctl",
		Usage: "Provision OAuth2 credentials and clients",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "stage",
				Usage: "Deployment stage the tables belong to (overrides STAGE)",
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region (overrides AWS_REGION)",
			},
			&cli.BoolFlag{
				Name:  "local",
				Usage: "Target a local DynamoDB endpoint",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			credentialCommands(),
			clientCommands(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("grantctl failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// buildApp loads configuration, applies the global flag overrides, and
// wires the application graph.
func buildApp(ctx context.Context, cmd *cli.Command) (*app.App, error) {
	cfg := app.LoadConfig()

	if stage := cmd.String("stage"); stage != "" {
		cfg.Stage = stage
		cfg.Tables = store.TablesForStage(stage)
	}
	if region := cmd.String("region"); region != "" {
		cfg.Region = region
	}
	if cmd.Bool("local") {
		cfg.Env = "local"
		if cfg.Endpoint == "" {
			cfg.Endpoint = "http://127.0.0.1:8000"
		}
	}
	if cmd.Bool("debug") {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "text"
	}

	return app.New(ctx, cfg)
}

// promptPassword reads a password from the terminal without echo, twice,
// and insists the entries match.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("password must not be empty")
	}
	return string(first), nil
}
