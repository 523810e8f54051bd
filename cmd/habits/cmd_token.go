package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/habitgrid/internal/core/services"
)

const tokenIssuer = "habitgrid"

var tokenCmd = &cobra.Command{
	Use:   "token [board]",
	Short: "Issue a bearer token scoped to one board",
	Long: `Prints a signed token for the HTTP API. Requests carrying it can only
read and change the named board. Requires HABITS_TOKEN_SECRET.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runToken,
}

func newTokenService() *services.TokenService {
	if cfg.TokenSecret == "" {
		return nil
	}
	return services.NewTokenService(cfg.TokenSecret, tokenIssuer, cfg.TokenTTL)
}

func runToken(cmd *cobra.Command, args []string) error {
	tokens := newTokenService()
	if tokens == nil {
		return errors.New("HABITS_TOKEN_SECRET is not set")
	}

	board := cfg.Board
	if len(args) == 1 {
		board = args[0]
	}

	token, err := tokens.GenerateToken(board)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
