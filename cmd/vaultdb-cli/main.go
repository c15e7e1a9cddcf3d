// Command vaultdb-cli is the interactive client over a single in-process
// Vault instance: flags select how the backing store starts up, then
// control hands off to a read-eval-print loop.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vaultdb/vaultdb/pkg/auditlog"
	"github.com/vaultdb/vaultdb/pkg/seed"
	"github.com/vaultdb/vaultdb/pkg/shell"
	"github.com/vaultdb/vaultdb/pkg/storage"
	"github.com/vaultdb/vaultdb/pkg/vault"
)

var (
	flagHelp      bool
	flagSeed      bool
	flagClient    string
	flagAuditPath string
)

func init() {
	flag.BoolVar(&flagHelp, "help", false, "Show help")
	flag.BoolVar(&flagHelp, "h", false, "Show help (short)")
	flag.BoolVar(&flagSeed, "seed", true, "Populate the standard fixture data on startup")
	flag.StringVar(&flagClient, "client", "cli", "Client identity for this session's transactions")
	flag.StringVar(&flagAuditPath, "audit", "", "Path to a file-backed audit log (default: in-memory)")
}

func main() {
	flag.Parse()

	if flagHelp {
		printHelp()
		os.Exit(0)
	}

	opts := vault.Options{}
	if flagAuditPath != "" {
		backend, err := storage.OpenDisk(flagAuditPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening audit log: %v\n", err)
			os.Exit(1)
		}
		opts.AuditBackend = auditlog.Options{Backend: backend}
	}

	v := vault.New(opts)
	defer v.Close()

	if flagSeed {
		if err := seed.Load(v); err != nil {
			fmt.Fprintf(os.Stderr, "error loading fixture data: %v\n", err)
			os.Exit(1)
		}
	}

	shell.New(v, flagClient, os.Stdout).Run(os.Stdin)
}

func printHelp() {
	fmt.Print(`VaultDB CLI

Usage:
  vaultdb-cli [options]

Options:
  -h, -help         Show this help message
  -seed             Populate the standard fixture data on startup (default true)
  -client <name>    Client identity for this session's transactions (default "cli")
  -audit <path>     Path to a file-backed audit log (default: in-memory)

Once running, type 'help' at the vaultdb> prompt for the command list.
`)
}
