package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/grantflow/config"
	"github.com/dev-mohitbeniwal/grantflow/middleware"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token [EMAIL]",
	Args:  cobra.ExactArgs(1),
	Short: "Mint a bearer token for local testing",
	Long:  `Mint an HS256 bearer token signed with auth.jwtSecret for the given identity`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.InitConfig(); err != nil {
			log.Fatalf("Failed to initialize config: %v", err)
		}
		secret := config.GetConfig().Auth.JWTSecret
		if secret == "" {
			log.Fatal("auth.jwtSecret is not set")
		}
		now := time.Now()
		token, err := middleware.SignToken(args[0], []byte(secret), jwt.RegisteredClaims{
			Subject:   args[0],
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
