// copysmithctl is the admin CLI: encrypted secrets management and LLM usage
// reports from Prometheus.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"copysmith/pkg/config"
	"copysmith/pkg/metrics"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "secrets":
		err = runSecrets(os.Args[2:])
	case "usage":
		err = runUsage(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "copysmithctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage:
  copysmithctl secrets set <NAME>      store one secret in the encrypted file
  copysmithctl secrets list            list stored secret names
  copysmithctl usage [prometheus-url]  print an LLM usage report
`)
}

func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

func runSecrets(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing secrets subcommand")
	}

	switch args[0] {
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: copysmithctl secrets set <NAME>")
		}
		return secretsSet(args[1])
	case "list":
		return secretsList()
	default:
		return fmt.Errorf("unknown secrets subcommand %q", args[0])
	}
}

func secretsSet(name string) error {
	password, err := promptPassword("Secrets file password")
	if err != nil {
		return err
	}

	secrets := map[string]string{}
	if config.SecretsFileExists(".") {
		secrets, err = config.DecryptSecretsFile(".", password)
		if err != nil {
			return err
		}
	}

	value, err := promptPassword(fmt.Sprintf("Value for %s", name))
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("empty value")
	}

	secrets[name] = value
	if err := config.EncryptSecretsFile(".", password, secrets); err != nil {
		return err
	}
	fmt.Printf("Stored %s (%d secrets total)\n", name, len(secrets))
	return nil
}

func secretsList() error {
	if !config.SecretsFileExists(".") {
		fmt.Println("No secrets file")
		return nil
	}
	password, err := promptPassword("Secrets file password")
	if err != nil {
		return err
	}
	secrets, err := config.DecryptSecretsFile(".", password)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(secrets))
	for name := range secrets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runUsage(args []string) error {
	promURL := "http://localhost:9090"
	if len(args) > 0 {
		promURL = args[0]
	}

	svc, err := metrics.NewQueryService(promURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	total, err := svc.GetUsage(ctx)
	if err != nil {
		return err
	}
	byModel, err := svc.GetUsageByModel(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Requests:          %d (%d failed)\n", total.Requests, total.FailedRequests)
	fmt.Printf("Prompt tokens:     %d\n", total.PromptTokens)
	fmt.Printf("Completion tokens: %d\n", total.CompletionTokens)
	fmt.Printf("Total cost:        $%.4f\n", total.TotalCost)

	if len(byModel) > 0 {
		fmt.Println("\nPer model:")
		models := make([]string, 0, len(byModel))
		for name := range byModel {
			models = append(models, name)
		}
		sort.Strings(models)
		for _, name := range models {
			r := byModel[name]
			fmt.Printf("  %-28s %8d tokens  $%.4f\n", name, r.TotalTokens, r.TotalCost)
		}
	}
	return nil
}
