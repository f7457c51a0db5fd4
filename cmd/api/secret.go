package main

import (
	"github.com/spf13/cobra"

	"github.com/taskboard/taskboard-go/internal/crypto"
)

// NewSecretCmd creates the secret subcommand, which prints a fresh value for JWT_SECRET.
func NewSecretCmd() *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a random token signing secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := crypto.GenerateSecret(length)
			if err != nil {
				return err
			}
			cmd.Println(secret)
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "length", crypto.DefaultSecretLength, "secret length in characters")

	return cmd
}
