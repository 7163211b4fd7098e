// Command breachcheck checks vault passwords and email accounts against the
// Have I Been Pwned database from the terminal.
//
// Exit codes: 0 when everything checked is clean, 1 when breaches were
// found, 2 when the check could not complete.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for static builds
	"golang.org/x/term"

	"github.com/boscoh/breachwatch/internal/adapter/driven/hibp"
	"github.com/boscoh/breachwatch/internal/adapter/driven/vault"
	"github.com/boscoh/breachwatch/internal/application"
	"github.com/boscoh/breachwatch/internal/config"
	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
	"github.com/boscoh/breachwatch/internal/report"
)

const (
	exitClean      = 0
	exitBreaches   = 1
	exitIncomplete = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	input := flag.String("input", "", "Bitwarden export JSON file (default: fetch via the bw CLI)")
	password := flag.Bool("password", false, "prompt for a single password to check instead of reading a vault")
	emails := flag.String("emails", "", "comma-separated email addresses to check for account breaches")
	format := flag.String("format", report.FormatText, "report format: text, json, or csv")
	output := flag.String("output", "", "write the report to this file instead of stdout")
	compromisedOnly := flag.Bool("compromised-only", false, "omit safe passwords from the report")
	quiet := flag.Bool("quiet", false, "suppress progress output")
	flag.Parse()

	// The CLI logs warnings only; the report is the output.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIncomplete
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiClient := hibp.NewClient(hibp.Config{
		APIKey:          cfg.HIBPAPIKey,
		BaseURL:         cfg.BaseURL,
		PasswordsURL:    cfg.PasswordsURL,
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.RequestTimeout,
		MinRequestDelay: cfg.AuthDelay,
	})

	creds, err := gatherCredentials(ctx, *input, *password, cfg.VaultCommand)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIncomplete
	}

	opts := application.CheckOptions{CompromisedOnly: *compromisedOnly}
	if !*quiet {
		opts.Progress = func(index, total int, label string) {
			fmt.Fprintf(os.Stderr, "\r\033[KChecking %d/%d: %s", index+1, total, label)
		}
	}

	checkSvc := application.NewCheckService(apiClient, cfg.CheckDelay, logger)
	result, err := checkSvc.Run(ctx, creds, opts)
	if !*quiet {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIncomplete
	}

	if accounts := splitEmails(*emails); len(accounts) > 0 {
		if !cfg.HasAPIKey() {
			fmt.Fprintln(os.Stderr, "error: account checks require BREACHWATCH_HIBP_API_KEY")
			return exitIncomplete
		}

		accountSvc := application.NewAccountService(apiClient, logger)
		findings, err := accountSvc.CheckAccounts(ctx, accounts)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return exitIncomplete
		}
		combined := model.Aggregate(result.Items, findings)
		result = &combined
	}

	if err := emit(*result, *format, *output); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIncomplete
	}

	if result.Outcome() == model.OutcomeBreachesFound {
		return exitBreaches
	}
	return exitClean
}

// gatherCredentials resolves the credentials to check from one of three
// places: an interactive prompt, an export file, or the vault CLI.
func gatherCredentials(ctx context.Context, input string, prompt bool, vaultCommand string) ([]model.Credential, error) {
	if prompt {
		return promptCredential()
	}

	var source driven.CredentialSource
	if input != "" {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("open vault export: %w", err)
		}
		defer f.Close()
		source = vault.NewReaderSource(f)
	} else {
		source = vault.NewExecSource(vaultCommand)
		if err := source.Verify(ctx); err != nil {
			return nil, err
		}
	}

	return source.Fetch(ctx)
}

// promptCredential reads one password from the terminal without echo. The
// password stays off the argument list and out of shell history.
func promptCredential() ([]model.Credential, error) {
	fmt.Fprint(os.Stderr, "Password to check: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}

	return []model.Credential{{Label: "Entered password", Secret: string(secret)}}, nil
}

func splitEmails(raw string) []string {
	var out []string
	for _, e := range strings.Split(raw, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// emit renders the report and writes it to the output file or stdout.
func emit(r model.Report, format, output string) error {
	data, err := report.Render(r, format)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	// Reports carry account identifiers, so keep them owner-only.
	if err := os.WriteFile(output, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Report written to", output)
	return nil
}
