package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/domain"
	"github.com/aussiebroadwan/grantstore/pkg/idx"
)

func credentialCommands() *cli.Command {
	usernameFlag := &cli.StringFlag{
		Name:     "username",
		Aliases:  []string{"u"},
		Required: true,
		Usage:    "Credential username",
	}

	return &cli.Command{
		Name:    "credential",
		Aliases: []string{"cred"},
		Usage:   "Manage resource-owner credentials",
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Create a credential (prompts for a password)",
				Flags:  []cli.Flag{usernameFlag},
				Action: runCredentialCreate,
			},
			{
				Name:   "update",
				Usage:  "Replace a credential's password (prompts for it)",
				Flags:  []cli.Flag{usernameFlag},
				Action: runCredentialUpdate,
			},
			{
				Name:   "delete",
				Usage:  "Delete a credential and every client it owns",
				Flags:  []cli.Flag{usernameFlag},
				Action: runCredentialDelete,
			},
			{
				Name:   "list",
				Usage:  "List credentials",
				Action: runCredentialList,
			},
		},
	}
}

func runCredentialCreate(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	username := cmd.String("username")
	existing, err := a.Credentials.Get(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("credential %q already exists", username)
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	reg := domain.CredentialRegistration{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: a.Hasher.Hash(password),
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := a.Credentials.Put(ctx, reg); err != nil {
		return err
	}

	fmt.Printf("created credential %s (id %s)\n", username, reg.ID)
	return nil
}

func runCredentialUpdate(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	username := cmd.String("username")
	existing, err := a.Credentials.Get(ctx, username)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("credential %q does not exist", username)
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	// Id and username survive; only the hash is replaced.
	reg := domain.CredentialRegistration{
		ID:           existing.String("id"),
		Username:     username,
		PasswordHash: a.Hasher.Hash(password),
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := a.Credentials.Put(ctx, reg); err != nil {
		return err
	}

	fmt.Printf("updated credential %s\n", username)
	return nil
}

func runCredentialDelete(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	username := cmd.String("username")
	if err := a.Credentials.Delete(ctx, username); err != nil {
		return err
	}

	fmt.Printf("deleted credential %s and its clients\n", username)
	return nil
}

func runCredentialList(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	items, err := a.Credentials.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\n", item.String("id"), item.String("username"))
	}
	return w.Flush()
}
