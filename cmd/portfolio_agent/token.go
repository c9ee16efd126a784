package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-builder/internal/config"
	"github.com/jonathan/portfolio-builder/internal/server"
	"github.com/jonathan/portfolio-builder/internal/server/middleware"
)

func newTokenCmd() *cobra.Command {
	var id middleware.Identity

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an identity token for local testing of the API",
		Long:  `Signs an identity token with JWT_SECRET that the server accepts as a Bearer token.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jwtConfig, err := config.NewJWTConfig()
			if err != nil {
				return err
			}
			token, err := server.NewJWTService(jwtConfig).GenerateToken(id)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&id.UID, "uid", "", "Identity provider user ID (required)")
	cmd.Flags().StringVar(&id.Email, "email", "", "User email")
	cmd.Flags().StringVar(&id.Name, "name", "", "User display name")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
