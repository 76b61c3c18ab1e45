package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	jwttoken "opsdesk/internal/jwt_token"
)

func newTokenCmd() *cobra.Command {
	var (
		operator string
		role     string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator bearer token signed with JWT_SIGNING_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := os.Getenv("JWT_SIGNING_KEY")
			if key == "" {
				return errors.New("JWT_SIGNING_KEY is not set")
			}
			svc := jwttoken.NewService(key, envOr("JWT_ISSUER", "opsdesk"), envOr("JWT_AUDIENCE", "opsdesk-api"))
			token, err := svc.Issue(operator, role, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "operator subject, usually an email address")
	cmd.Flags().StringVar(&role, "role", "operator", "token role: operator or viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
