package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"regexp"
	"strconv"

	"github.com/unkn0wn-root/encstore"
	"github.com/unkn0wn-root/encstore/backend"
	"github.com/unkn0wn-root/encstore/internal/secret"
)

func (c cli) runSet(ctx context.Context, args []string) error {
	fs, g := c.flagSet("set")
	asJSON := fs.Bool("json", false, "Parse the value as JSON")
	ttl := fs.Duration("ttl", 0, "Expire the value after this duration (backend permitting)")
	plain := fs.Bool("plain", false, "Store the value without encryption")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: encstore set [-json] [-ttl d] [-plain] <key> <value>")
	}

	var value any = fs.Arg(1)
	if *asJSON {
		if err := json.Unmarshal([]byte(fs.Arg(1)), &value); err != nil {
			return fmt.Errorf("value is not valid JSON: %w", err)
		}
	}
	opts := []encstore.CallOption{encstore.WithBackendOptions(backend.SetOptions{TTL: *ttl})}
	if *plain {
		opts = append(opts, encstore.DoNotEncrypt())
	}

	return c.withStorage(ctx, g, func(st encstore.Storage) error {
		return st.SetItem(ctx, fs.Arg(0), value, opts...)
	})
}

func (c cli) runGet(ctx context.Context, args []string) error {
	fs, g := c.flagSet("get")
	pattern := fs.Bool("pattern", false, "Treat the argument as a substring pattern")
	single := fs.Bool("single", false, "With -pattern, return only the first match")
	raw := fs.Bool("raw", false, "Print the stored payload without decrypting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: encstore get [-pattern [-single]] [-raw] <key>")
	}

	var opts []encstore.CallOption
	if *raw {
		opts = append(opts, encstore.DoNotDecrypt())
	}
	if *single {
		opts = append(opts, encstore.Single())
	}

	return c.withStorage(ctx, g, func(st encstore.Storage) error {
		var (
			v   any
			ok  bool
			err error
		)
		if *pattern {
			v, ok, err = st.GetItemFromPattern(ctx, encstore.Substring(fs.Arg(0)), opts...)
		} else {
			v, ok, err = st.GetItem(ctx, fs.Arg(0), opts...)
		}
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: not found", fs.Arg(0))
		}
		return c.print(v)
	})
}

func (c cli) runRm(ctx context.Context, args []string) error {
	fs, g := c.flagSet("rm")
	pattern := fs.Bool("pattern", false, "Remove every key containing the argument")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 || (*pattern && fs.NArg() != 1) {
		return errors.New("usage: encstore rm <key> [key...] | encstore rm -pattern <substring>")
	}

	return c.withStorage(ctx, g, func(st encstore.Storage) error {
		switch {
		case *pattern:
			return st.RemoveItemFromPattern(ctx, encstore.Substring(fs.Arg(0)))
		case fs.NArg() == 1:
			return st.RemoveItem(ctx, fs.Arg(0))
		default:
			return st.RemoveMultipleItems(ctx, fs.Args())
		}
	})
}

func (c cli) runKeys(ctx context.Context, args []string) error {
	fs, g := c.flagSet("keys")
	isRegexp := fs.Bool("regexp", false, "Treat the pattern as a regular expression")
	exact := fs.Bool("exact", false, "Only the key equal to the pattern")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return errors.New("usage: encstore keys [-regexp|-exact] [pattern]")
	}

	p := encstore.Substring(fs.Arg(0))
	if *isRegexp {
		re, err := regexp.Compile(fs.Arg(0))
		if err != nil {
			return err
		}
		p = encstore.Regexp(re)
	}
	var opts []encstore.CallOption
	if *exact {
		opts = append(opts, encstore.Exact())
	}

	return c.withStorage(ctx, g, func(st encstore.Storage) error {
		keys, err := st.KeysFromPattern(ctx, p, opts...)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(c.stdout, k)
		}
		return nil
	})
}

func (c cli) runLen(ctx context.Context, args []string) error {
	fs, g := c.flagSet("len")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.withStorage(ctx, g, func(st encstore.Storage) error {
		n, err := st.Length(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, n)
		return nil
	})
}

func (c cli) runKey(ctx context.Context, args []string) error {
	fs, g := c.flagSet("key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: encstore key <index>")
	}
	idx, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return c.withStorage(ctx, g, func(st encstore.Storage) error {
		k, ok, err := st.Key(ctx, idx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no key at index %d", idx)
		}
		fmt.Fprintln(c.stdout, k)
		return nil
	})
}

func (c cli) runClear(ctx context.Context, args []string) error {
	fs, g := c.flagSet("clear")
	force := fs.Bool("force", false, "Required: confirm removal of every item")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*force {
		return errors.New("clear removes every item in the backend; rerun with -force")
	}
	return c.withStorage(ctx, g, func(st encstore.Storage) error {
		return st.Clear(ctx)
	})
}

func (c cli) runEncrypt(ctx context.Context, args []string) error {
	fs, g := c.flagSet("encrypt")
	asJSON := fs.Bool("json", false, "Parse the value as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: encstore encrypt [-json] <value>")
	}
	var value any = fs.Arg(0)
	if *asJSON {
		if err := json.Unmarshal([]byte(fs.Arg(0)), &value); err != nil {
			return fmt.Errorf("value is not valid JSON: %w", err)
		}
	}
	return c.withCrypto(ctx, g, func(st encstore.Storage) error {
		out, err := st.EncryptValue(value)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, out)
		return nil
	})
}

func (c cli) runDecrypt(ctx context.Context, args []string) error {
	fs, g := c.flagSet("decrypt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: encstore decrypt <payload>")
	}
	return c.withCrypto(ctx, g, func(st encstore.Storage) error {
		v, err := st.DecryptValue(fs.Arg(0))
		if err != nil {
			return err
		}
		return c.print(v)
	})
}

func (c cli) runHash(ctx context.Context, args []string) error {
	fs, g := c.flagSet("hash")
	md5 := fs.Bool("md5", false, "Use HMAC-MD5 instead of HMAC-SHA256")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: encstore hash [-md5] <value>")
	}
	return c.withCrypto(ctx, g, func(st encstore.Storage) error {
		if *md5 {
			fmt.Fprintln(c.stdout, st.MD5Hash(fs.Arg(0)))
		} else {
			fmt.Fprintln(c.stdout, st.Hash(fs.Arg(0)))
		}
		return nil
	})
}

func (c cli) runKeyring(_ context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: encstore keyring save|delete [-config file]")
	}
	fs, g := c.flagSet("keyring " + args[0])
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	cfg, err := c.loadConfig(g)
	if err != nil {
		return err
	}
	account := cfg.Account()

	switch args[0] {
	case "save":
		s, err := c.prompt("Secret to save: ")
		if err != nil {
			return err
		}
		if len([]rune(s)) < encstore.MinSecretLength {
			return &encstore.InvalidSecretError{Length: len([]rune(s))}
		}
		if err := secret.Save(account, s); err != nil {
			return fmt.Errorf("failed to save to keyring: %w", err)
		}
		fmt.Fprintf(c.stdout, "Secret saved to keyring (%s)\n", account)
	case "delete":
		if err := secret.Delete(account); err != nil {
			return fmt.Errorf("failed to delete from keyring: %w", err)
		}
		fmt.Fprintf(c.stdout, "Secret removed from keyring (%s)\n", account)
	default:
		return fmt.Errorf("unknown keyring command: %s", args[0])
	}
	return nil
}

// print writes strings verbatim and everything else as JSON.
func (c cli) print(v any) error {
	if s, ok := v.(string); ok {
		fmt.Fprintln(c.stdout, s)
		return nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, string(b))
	return nil
}

func (c cli) flagSet(name string) (*flag.FlagSet, *globalFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	g := &globalFlags{}
	fs.StringVar(&g.config, "config", "", "Path to a YAML config file (default $ENCSTORE_CONFIG)")
	fs.StringVar(&g.prefix, "prefix", "", "Override storage.prefix")
	return fs, g
}
