package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hugohenrick/talonai-chat/pkg/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userID     string
		expiration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Gera um token JWT de desenvolvimento com o JWT_SECRET local",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")

			svc, err := auth.NewJWTService(secret, expiration)
			if err != nil {
				return err
			}

			token, err := svc.GenerateToken(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "for", "", "ID do usuário do token")
	cmd.Flags().DurationVar(&expiration, "expires", 24*time.Hour, "validade do token")
	_ = cmd.MarkFlagRequired("for")

	return cmd
}
