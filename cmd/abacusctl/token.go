package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abacusquest/abacusquest/internal/auth"
	"github.com/abacusquest/abacusquest/internal/config"
	"github.com/spf13/cobra"
)

func newTokenCmd(cfg config.Config) *cobra.Command {
	var (
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <student-id>",
		Short: "Mint a bearer token for a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid student id %q", args[0])
			}
			if len(secret) < 16 {
				return fmt.Errorf("secret must be at least 16 characters (set JWT_SECRET or --secret)")
			}

			token, expires, err := auth.NewIssuer(secret, ttl).Issue(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", cfg.JWTSecret, "signing secret (overrides JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", cfg.TokenTTL, "token lifetime")
	return cmd
}
