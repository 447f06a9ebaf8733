package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/domain"
	"github.com/aussiebroadwan/grantstore/pkg/cryptox"
)

func clientCommands() *cli.Command {
	grantFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "password",
			Usage: "Allow the password grant",
		},
		&cli.BoolFlag{
			Name:  "client-credentials",
			Usage: "Allow the client_credentials grant",
		},
		&cli.BoolFlag{
			Name:  "refresh-token",
			Usage: "Allow the refresh_token grant",
		},
		&cli.StringSliceFlag{
			Name:  "authorization-code",
			Usage: "Allow the authorization_code grant with this redirect URI (repeatable)",
		},
	}

	return &cli.Command{
		Name:  "client",
		Usage: "Manage OAuth clients",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a client with a generated id and secret",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Required: true,
						Usage:    "Username of the owning credential",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Free-text description",
					},
				}, grantFlags...),
				Action: runClientCreate,
			},
			{
				Name:  "update",
				Usage: "Update a client's description and grants, optionally rotating the secret",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "client-id",
						Required: true,
						Usage:    "Client id",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Free-text description",
					},
					&cli.BoolFlag{
						Name:  "rotate-secret",
						Usage: "Generate and print a new client secret",
					},
				}, grantFlags...),
				Action: runClientUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a client",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client-id",
						Required: true,
						Usage:    "Client id",
					},
				},
				Action: runClientDelete,
			},
			{
				Name:   "list",
				Usage:  "List clients",
				Action: runClientList,
			},
		},
	}
}

// grantsFromFlags builds the grant set and redirect URIs from the shared
// grant flags. Redirect URIs only exist for the authorization_code grant.
func grantsFromFlags(cmd *cli.Command) (grants, redirectURIs []string) {
	if cmd.Bool("password") {
		grants = append(grants, domain.GrantPassword)
	}
	if cmd.Bool("client-credentials") {
		grants = append(grants, domain.GrantClientCredentials)
	}
	if cmd.Bool("refresh-token") {
		grants = append(grants, domain.GrantRefreshToken)
	}
	if uris := cmd.StringSlice("authorization-code"); len(uris) > 0 {
		grants = append(grants, domain.GrantAuthorizationCode)
		redirectURIs = uris
	}
	return grants, redirectURIs
}

func runClientCreate(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	owner, err := a.Credentials.Get(ctx, cmd.String("user"))
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("credential %q does not exist", cmd.String("user"))
	}

	grants, redirectURIs := grantsFromFlags(cmd)
	reg := domain.ClientRegistration{
		ClientID:     uuid.NewString(),
		ClientSecret: cryptox.GenerateSecret(),
		UserID:       owner.String("id"),
		Description:  cmd.String("description"),
		Grants:       grants,
		RedirectURIs: redirectURIs,
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := a.Clients.Put(ctx, reg); err != nil {
		return err
	}

	fmt.Printf("created client %s\n", reg.ClientID)
	fmt.Printf("client_secret: %s\n", reg.ClientSecret)
	return nil
}

func runClientUpdate(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	clientID := cmd.String("client-id")
	existing, err := a.Clients.Get(ctx, clientID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("client %q does not exist", clientID)
	}

	reg := domain.ClientRegistration{
		ClientID:     clientID,
		ClientSecret: existing.String("client_secret"),
		UserID:       existing.String("user_id"),
		Description:  existing.String("description"),
		Grants:       existing.StringSlice("grants"),
		RedirectURIs: existing.StringSlice("redirect_uris"),
	}

	if cmd.Bool("rotate-secret") {
		reg.ClientSecret = cryptox.GenerateSecret()
	}
	if description := cmd.String("description"); description != "" {
		reg.Description = description
	}
	if grants, redirectURIs := grantsFromFlags(cmd); len(grants) > 0 {
		reg.Grants = grants
		reg.RedirectURIs = redirectURIs
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	if err := a.Clients.Put(ctx, reg); err != nil {
		return err
	}

	fmt.Printf("updated client %s\n", clientID)
	if cmd.Bool("rotate-secret") {
		fmt.Printf("client_secret: %s\n", reg.ClientSecret)
	}
	return nil
}

func runClientDelete(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	clientID := cmd.String("client-id")
	existing, err := a.Clients.Get(ctx, clientID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("client %q does not exist", clientID)
	}

	if err := a.Clients.Delete(ctx, clientID); err != nil {
		return err
	}
	fmt.Printf("deleted client %s\n", clientID)
	return nil
}

func runClientList(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	items, err := a.Clients.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLIENT_ID\tUSER_ID\tGRANTS\tDESCRIPTION")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			item.String("client_id"),
			item.String("user_id"),
			strings.Join(item.StringSlice("grants"), ","),
			item.String("description"),
		)
	}
	return w.Flush()
}
