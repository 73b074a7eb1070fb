// AngelaMos | 2026
// keys.go

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/lms-backend/internal/auth"
)

func keysCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage JWT signing keys",
	}

	var privatePath, publicPath string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write a new ES256 key pair for jwt token mode",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %s and %s\n", privatePath, publicPath)
			return nil
		},
	}
	generate.Flags().StringVar(&privatePath, "private", "keys/private.pem", "private key path")
	generate.Flags().StringVar(&publicPath, "public", "keys/public.pem", "public key path")

	cmd.AddCommand(generate)
	return cmd
}
