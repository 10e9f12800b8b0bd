package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/unkn0wn-root/encstore/internal/secret"
)

// cli carries the process surface so commands can be driven from tests.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	prompt func(string) (string, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cli{stdout: os.Stdout, stderr: os.Stderr, getenv: os.Getenv, prompt: secret.ReadTerminal}
	os.Exit(c.run(ctx, os.Args[1:]))
}

func (c cli) run(ctx context.Context, args []string) int {
	if len(args) < 1 {
		c.printUsage()
		return 1
	}

	var err error
	switch args[0] {
	case "set":
		err = c.runSet(ctx, args[1:])
	case "get":
		err = c.runGet(ctx, args[1:])
	case "rm":
		err = c.runRm(ctx, args[1:])
	case "keys":
		err = c.runKeys(ctx, args[1:])
	case "len":
		err = c.runLen(ctx, args[1:])
	case "key":
		err = c.runKey(ctx, args[1:])
	case "clear":
		err = c.runClear(ctx, args[1:])
	case "encrypt":
		err = c.runEncrypt(ctx, args[1:])
	case "decrypt":
		err = c.runDecrypt(ctx, args[1:])
	case "hash":
		err = c.runHash(ctx, args[1:])
	case "keyring":
		err = c.runKeyring(ctx, args[1:])
	case "help", "-h", "--help":
		c.printUsage()
		return 0
	default:
		fmt.Fprintf(c.stderr, "Unknown command: %s\n", args[0])
		c.printUsage()
		return 1
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

func (c cli) printUsage() {
	w := c.stderr
	fmt.Fprintln(w, "encstore - encrypted key-value storage")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  encstore <command> [flags] [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  set <key> <value>      Encrypt and store a value (-json, -ttl, -plain)")
	fmt.Fprintln(w, "  get <key>              Read and decrypt a value (-pattern, -single, -raw)")
	fmt.Fprintln(w, "  rm <key> [key...]      Remove keys (-pattern)")
	fmt.Fprintln(w, "  keys [pattern]         List keys matching a substring (-regexp, -exact)")
	fmt.Fprintln(w, "  len                    Count stored items")
	fmt.Fprintln(w, "  key <index>            Show the physical key at index")
	fmt.Fprintln(w, "  clear                  Remove every item (-force)")
	fmt.Fprintln(w, "  encrypt <value>        Encrypt a value without storing it")
	fmt.Fprintln(w, "  decrypt <payload>      Decrypt a payload produced by encrypt")
	fmt.Fprintln(w, "  hash <value>           HMAC-SHA256 of a value keyed by the secret (-md5)")
	fmt.Fprintln(w, "  keyring save|delete    Manage the secret in the OS keyring")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every command accepts -config <file> (or ENCSTORE_CONFIG).")
	fmt.Fprintln(w, "The secret comes from ENCSTORE_SECRET, the OS keyring, or a prompt.")
}
