// Package shell is VaultDB's interactive REPL core: a read-a-line,
// dispatch-on-prefix, print-result loop driving
// begin/select/insert/update/delete/commit/rollback against a
// txn.Manager instead of parsing SQL.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vaultdb/vaultdb/pkg/payload"
	"github.com/vaultdb/vaultdb/pkg/txn"
	"github.com/vaultdb/vaultdb/pkg/vault"
)

// Shell is one REPL session bound to a single client identity, matching
// the one-transaction-per-client contract the transaction manager
// enforces.
type Shell struct {
	v      *vault.Vault
	client string
	out    io.Writer
}

// New creates a shell session against v, identified as client.
func New(v *vault.Vault, client string, out io.Writer) *Shell {
	return &Shell{v: v, client: client, out: out}
}

// Run reads commands from in until EOF or a quit command, printing
// results and errors to the shell's output.
func (s *Shell) Run(in io.Reader) {
	reader := bufio.NewReader(in)
	fmt.Fprintln(s.out, "VaultDB interactive shell")
	fmt.Fprintln(s.out, "Type 'help' for commands, 'quit' to exit")

	for {
		fmt.Fprint(s.out, "vaultdb> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if s.dispatch(line) {
			return
		}
	}
}

// dispatch handles one line, returning true if the session should end.
func (s *Shell) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "quit", "exit":
		fmt.Fprintln(s.out, "bye")
		return true
	case "help":
		s.printHelp()
	case "begin":
		s.begin()
	case "commit":
		s.commit()
	case "rollback":
		s.rollback()
	case "select":
		s.selectCmd(fields[1:])
	case "insert":
		s.insertCmd(fields[1:], line)
	case "update":
		s.updateCmd(fields[1:], line)
	case "delete":
		s.deleteCmd(fields[1:])
	case "tables":
		s.tablesCmd()
	case "stats":
		s.statsCmd()
	default:
		fmt.Fprintf(s.out, "unknown command: %s\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `Commands:
  begin
  select <db> <table> [key]
  insert <db> <table> <json-object>
  update <db> <table> <key> <json-object>
  delete <db> <table> <key>
  commit
  rollback
  tables
  stats
  quit
`)
}

func (s *Shell) begin() {
	tid, err := s.v.Manager.Begin(s.client)
	if err != nil {
		s.printErr(err)
		return
	}
	fmt.Fprintf(s.out, "started transaction %s\n", tid)
}

func (s *Shell) commit() {
	if err := s.v.Manager.Commit(s.client); err != nil {
		s.printErr(err)
		return
	}
	fmt.Fprintln(s.out, "committed")
}

func (s *Shell) rollback() {
	if err := s.v.Manager.Rollback(s.client); err != nil {
		s.printErr(err)
		return
	}
	fmt.Fprintln(s.out, "rolled back")
}

func (s *Shell) selectCmd(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: select <db> <table> [key]")
		return
	}
	db, table := args[0], args[1]
	key := ""
	if len(args) >= 3 {
		key = args[2]
	}

	result, err := s.v.Manager.Execute(s.client, txn.OpSelect, db, table, key, nil)
	if err != nil {
		s.printErr(err)
		return
	}
	if result.Scan {
		for _, row := range result.Rows {
			s.printRow(row)
		}
		fmt.Fprintf(s.out, "(%d rows)\n", len(result.Rows))
		return
	}
	if !result.Found {
		fmt.Fprintln(s.out, "(not found)")
		return
	}
	s.printRow(result.Row)
}

func (s *Shell) insertCmd(args []string, line string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: insert <db> <table> <json-object>")
		return
	}
	db, table := args[0], args[1]
	jsonPart := jsonTail(line, 3)
	row, err := payload.FromJSON([]byte(jsonPart))
	if err != nil {
		s.printErr(err)
		return
	}

	result, err := s.v.Manager.Execute(s.client, txn.OpInsert, db, table, "", row)
	if err != nil {
		s.printErr(err)
		return
	}
	fmt.Fprintf(s.out, "inserted key %s\n", result.Key)
}

func (s *Shell) updateCmd(args []string, line string) {
	if len(args) < 3 {
		fmt.Fprintln(s.out, "usage: update <db> <table> <key> <json-object>")
		return
	}
	db, table, key := args[0], args[1], args[2]
	jsonPart := jsonTail(line, 4)
	patch, err := payload.FromJSON([]byte(jsonPart))
	if err != nil {
		s.printErr(err)
		return
	}

	result, err := s.v.Manager.Execute(s.client, txn.OpUpdate, db, table, key, patch)
	if err != nil {
		s.printErr(err)
		return
	}
	fmt.Fprintf(s.out, "matched: %v\n", result.Matched)
}

func (s *Shell) deleteCmd(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.out, "usage: delete <db> <table> <key>")
		return
	}
	db, table, key := args[0], args[1], args[2]
	result, err := s.v.Manager.Execute(s.client, txn.OpDelete, db, table, key, nil)
	if err != nil {
		s.printErr(err)
		return
	}
	fmt.Fprintf(s.out, "matched: %v\n", result.Matched)
}

func (s *Shell) tablesCmd() {
	for _, db := range s.v.Catalog.Databases() {
		for _, table := range s.v.Catalog.Tables(db) {
			fmt.Fprintf(s.out, "%s.%s\n", db, table)
		}
	}
}

func (s *Shell) statsCmd() {
	stats := s.v.Statistics()
	fmt.Fprintf(s.out, "active=%d total=%d log_entries=%d versioned_resources=%d databases=%d tables=%d\n",
		stats.Active, stats.Total, stats.LogEntries, stats.VersionedResources, stats.Databases, stats.Tables)
}

func (s *Shell) printRow(row map[string]any) {
	text, err := payload.ToJSON(row)
	if err != nil {
		s.printErr(err)
		return
	}
	fmt.Fprintln(s.out, text)
}

func (s *Shell) printErr(err error) {
	fmt.Fprintf(s.out, "error: %v\n", err)
}

// jsonTail rejoins the fields of the original line starting at the n-th
// whitespace-separated token, so a JSON object argument (which itself
// contains spaces) survives the earlier Fields() split.
func jsonTail(line string, skipFields int) string {
	fields := strings.Fields(line)
	if skipFields >= len(fields) {
		return ""
	}

	cut := 0
	for i := 0; i < skipFields; i++ {
		idx := strings.Index(line[cut:], fields[i])
		cut += idx + len(fields[i])
	}
	return strings.TrimSpace(line[cut:])
}
