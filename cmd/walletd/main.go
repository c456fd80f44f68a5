package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"ledgerline/go-backend/internal/adapters/rpc"
	"ledgerline/go-backend/internal/bootstrap/walletconfig"
	"ledgerline/go-backend/internal/identity"
	"ledgerline/go-backend/internal/platform/privacylog"
	"ledgerline/go-backend/internal/platform/ratelimiter"
	"ledgerline/go-backend/internal/trustline"
)

const (
	exitOK           = 0
	exitInvalidInput = 10
	exitStoreFailed  = 20
	exitLedgerFailed = 30
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitInvalidInput)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(os.Args[2:])
	case "import":
		runImport(os.Args[2:])
	case "export-keystore":
		runExportKeystore(os.Args[2:])
	case "import-keystore":
		runImportKeystore(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "remove":
		runRemove(os.Args[2:])
	case "trustline":
		runTrustline(os.Args[2:])
	case "serve-metrics":
		runServeMetrics(os.Args[2:])
	default:
		printUsage()
		os.Exit(exitInvalidInput)
	}
}

func newLogger() *slog.Logger {
	return slog.New(privacylog.WrapHandler(slog.NewJSONHandler(os.Stderr, nil)))
}

func openStore(configPath string) (*identity.Store, walletconfig.Config) {
	cfg := walletconfig.LoadFromPath(configPath)
	if strings.TrimSpace(cfg.StorePassphrase) == "" {
		writeStderrln("LEDGERLINE_STORE_PASSPHRASE is required", exitInvalidInput)
	}
	store, err := identity.NewStore(cfg.DataDir, cfg.StorePassphrase, cfg.Network, newLogger())
	if err != nil {
		writeStderrln(err.Error(), exitStoreFailed)
	}
	return store, cfg
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	name := fs.String("name", "", "display name")
	description := fs.String("description", "", "description")
	if err := fs.Parse(args); err != nil {
		writeStderrln(err.Error(), exitInvalidInput)
	}

	store, _ := openStore(*configPath)
	info, secret, err := store.Generate(identity.Options{Name: *name, Description: *description})
	if err != nil {
		writeStderrln(err.Error(), exitStoreFailed)
	}
	mustPrintJSON(map[string]any{
		"identity": info,
		"secret":   secret, // shown exactly once; it is not retrievable later
	})
	os.Exit(exitOK)
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	secret := fs.String("secret", "", "family seed or mnemonic")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		writeStderrln(err.Error(), exitInvalidInput)
	}
	if strings.TrimSpace(*secret) == "" {
		writeStderrln("secret is required", exitInvalidInput)
	}

	store, _ := openStore(*configPath)
	info, _, err := store.Import(*secret, identity.Options{Name: *name})
	if err != nil {
		writeStderrln(err.Error(), exitStoreFailed)
	}
	mustPrintJSON(map[string]any{"identity": info})
	os.Exit(exitOK)
}

func runExportKeystore(args []string) {
	fs := flag.NewFlagSet("export-keystore", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	id := fs.String("id", "", "identity id")
	password := fs.String("password", "", "keystore password (min 8 chars)")
	out := fs.String("out", "", "output file path")
	if err := fs.Parse(args); err != nil {
		writeStderrln(err.Error(), exitInvalidInput)
	}
	if *id == "" {
		writeStderrln("id is required", exitInvalidInput)
	}

	store, _ := openStore(*configPath)
	path, err := store.ExportKeystore(*id, *password, *out)
	if err != nil {
		writeStderrln(err.Error(), exitStoreFailed)
	}
	mustPrintJSON(map[string]any{"file_path": path})
	os.Exit(exitOK)
}

func runImportKeystore(args []string) {
	fs := flag.NewFlagSet("import-keystore", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	file := fs.String("file", "", "keystore file path")
	password := fs.String("password", "", "keystore password")
	if err := fs.Parse(args); err != nil {
		writeStderrln(err.Error(), exitInvalidInput)
	}
	if *file == "" {
		writeStderrln("file is required", exitInvalidInput)
	}

	store, _ := openStore(*configPath)
	info, err := store.ImportFromKeystore(*file, *password)
	if err != nil {
		writeStderrln(err.Error(), exitStoreFailed)
	}
	mustPrintJSON(map[string]any{"identity": info})
	os.Exit(exitOK)
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	if err := fs.Parse(args); err != nil {
		writeStderrln(err.Error(), exitInvalidInput)
	}
	store, _ := openStore(*configPath)
	mustPrintJSON(store.List())
	os.Exit(exitOK)
}

func runRemove(args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	id := fs.String("id", "", "identity id")
	if err := fs.Parse(args); err != nil {
		writeStderrln(err.Error(), exitInvalidInput)
	}
	if *id == "" {
		writeStderrln("id is required", exitInvalidInput)
	}
	store, _ := openStore(*configPath)
	if err := store.Remove(*id); err != nil {
		writeStderrln(err.Error(), exitStoreFailed)
	}
	mustPrintJSON(map[string]any{"removed": *id})
	os.Exit(exitOK)
}

func runTrustline(args []string) {
	if len(args) < 1 {
		writeStderrln("trustline action required: create|modify|remove|get|list|capacity", exitInvalidInput)
	}
	action := args[0]

	fs := flag.NewFlagSet("trustline "+action, flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	id := fs.String("id", "", "identity id of the signing wallet")
	account := fs.String("account", "", "account address (read-only actions)")
	currency := fs.String("currency", "", "currency code")
	issuer := fs.String("issuer", "", "issuer address")
	limit := fs.String("limit", "", "trust limit")
	if err := fs.Parse(args[1:]); err != nil {
		writeStderrln(err.Error(), exitInvalidInput)
	}

	store, cfg := openStore(*configPath)
	logger := newLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client, err := rpc.Dial(ctx, cfg.LedgerEndpoint, cfg.SubmitTimeout, logger)
	if err != nil {
		writeStderrln(err.Error(), exitLedgerFailed)
	}
	defer client.Close()

	limiter := ratelimiter.New(cfg.SubmitRPS, cfg.SubmitBurst, 0)
	svc := trustline.NewService(client, reservesFromConfig(cfg), logger,
		trustline.WithCacheTTL(cfg.CacheTTL),
		trustline.WithSubmitLimiter(limiter))

	switch action {
	case "create", "modify", "remove":
		if *id == "" {
			writeStderrln("id is required for mutations", exitInvalidInput)
		}
		signer, err := store.SigningHandle(*id)
		if err != nil {
			writeStderrln(err.Error(), exitStoreFailed)
		}
		var receipt any
		switch action {
		case "create":
			receipt, err = svc.Create(ctx, signer, trustline.CreateRequest{Currency: *currency, Issuer: *issuer, Limit: *limit})
		case "modify":
			receipt, err = svc.Modify(ctx, signer, trustline.ModifyRequest{Currency: *currency, Issuer: *issuer, NewLimit: *limit})
		case "remove":
			receipt, err = svc.Remove(ctx, signer, trustline.RemoveRequest{Currency: *currency, Issuer: *issuer})
		}
		if err != nil {
			writeStderrln(err.Error(), exitLedgerFailed)
		}
		mustPrintJSON(receipt)
	case "get":
		line, exists, err := svc.Get(ctx, readAccount(store, *id, *account), *currency, *issuer)
		if err != nil {
			writeStderrln(err.Error(), exitLedgerFailed)
		}
		mustPrintJSON(map[string]any{"exists": exists, "line": line})
	case "list":
		lines, err := svc.List(ctx, readAccount(store, *id, *account), trustline.Filter{Currency: *currency, Issuer: *issuer})
		if err != nil {
			writeStderrln(err.Error(), exitLedgerFailed)
		}
		mustPrintJSON(lines)
	case "capacity":
		report, err := svc.CheckCapacity(ctx, readAccount(store, *id, *account))
		if err != nil {
			writeStderrln(err.Error(), exitLedgerFailed)
		}
		mustPrintJSON(report)
	default:
		writeStderrln("unknown trustline action "+action, exitInvalidInput)
	}
	os.Exit(exitOK)
}

func readAccount(store *identity.Store, id, account string) string {
	if account != "" {
		return account
	}
	if id == "" {
		writeStderrln("either -account or -id is required", exitInvalidInput)
	}
	info, err := store.Get(id)
	if err != nil {
		writeStderrln(err.Error(), exitStoreFailed)
	}
	return info.Address
}

func runServeMetrics(args []string) {
	fs := flag.NewFlagSet("serve-metrics", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:9321", "metrics listen address")
	if err := fs.Parse(args); err != nil {
		writeStderrln(err.Error(), exitInvalidInput)
	}

	logger := newLogger()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: *listen, Handler: mux}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		_ = server.Close()
	}()

	logger.Info("metrics listening", "addr", *listen)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		writeStderrln(err.Error(), exitLedgerFailed)
	}
	os.Exit(exitOK)
}

func reservesFromConfig(cfg walletconfig.Config) trustline.Reserves {
	reserves := trustline.DefaultReserves()
	if base, err := decimal.NewFromString(cfg.ReserveBaseXRP); err == nil {
		reserves.Base = base
	}
	if inc, err := decimal.NewFromString(cfg.ReserveIncXRP); err == nil {
		reserves.Increment = inc
	}
	return reserves
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: walletd <command> [flags]

commands:
  generate          create a new wallet identity
  import            import an identity from a seed or mnemonic
  export-keystore   write a password-protected keystore file
  import-keystore   restore an identity from a keystore file
  list              list stored identities (public info only)
  remove            soft-delete a stored identity
  trustline         create|modify|remove|get|list|capacity
  serve-metrics     expose prometheus metrics`)
}

func mustPrintJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		writeStderrln(err.Error(), exitStoreFailed)
	}
}

func writeStderrln(msg string, code int) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
