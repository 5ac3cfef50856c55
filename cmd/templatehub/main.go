// TemplateHub CLI — инструмент командной строки для каталога
// шаблонов workflow.
//
// Использование:
//
//	templatehub [--api-url URL] [--json] [--user ID] [--org ID] <command> <subcommand> [flags]
//
// Команды:
//
//	template  Управление шаблонами
//	events    Просмотр событий шаблонов
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/templatehub/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool
	var identity cli.Identity

	rootCmd := &cobra.Command{
		Use:           "templatehub",
		Short:         "TemplateHub CLI — workflow template catalog",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiURL, "api-url", envOr("TEMPLATEHUB_API_URL", "http://localhost:8080"), "API server URL")
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.StringVar(&identity.UserID, "user", os.Getenv("TEMPLATEHUB_USER"), "User ID")
	flags.StringVar(&identity.Role, "role", "USER", "User role (USER, SUPER_ADMIN)")
	flags.StringVar(&identity.OrganizationID, "org", os.Getenv("TEMPLATEHUB_ORG"), "Organization ID")
	flags.StringVar(&identity.OrganizationRole, "org-role", "MEMBER", "Organization role (OWNER, ADMIN, MEMBER, VIEWER)")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL, identity) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewTemplateCmd(clientFn, outputFn),
		cli.NewEventsCmd(outputFn),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
