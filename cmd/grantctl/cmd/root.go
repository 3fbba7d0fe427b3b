package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/grantflow/app"
	"github.com/dev-mohitbeniwal/grantflow/config"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "grantctl",
	Short: "Operator CLI for the grantflow access engine",
	Long: `Operator CLI for the grantflow access engine.

Commands run against the record store named in config/config.yaml,
so admin changes take effect without going through the HTTP API.`,
}

// GetRoot returns the root of all subcommands
func GetRoot() *cobra.Command {
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp loads configuration, builds the application and hands it to fn.
func withApp(fn func(ctx context.Context, a *app.App) error) {
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.GetConfig()
	logger.InitLogger(cfg.Log.Dir)
	defer logger.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	err = fn(ctx, a)
	a.Close()
	if err != nil {
		log.Fatal(err)
	}
}

// prettyPrint writes v to stdout as indented JSON.
func prettyPrint(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
