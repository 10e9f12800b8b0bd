package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

const testSecret = "cli-test-secret-value"

type harness struct {
	t      *testing.T
	config string
	env    map[string]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "encstore.yaml")
	body := "backend:\n  kind: bolt\n  bolt:\n    path: " + filepath.Join(dir, "store.db") + "\nstorage:\n  kdf_iterations: 64\n"
	if err := os.WriteFile(cfg, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return &harness{
		t:      t,
		config: cfg,
		env:    map[string]string{"ENCSTORE_SECRET": testSecret, "ENCSTORE_CONFIG": cfg},
	}
}

func (h *harness) run(args ...string) (code int, stdout, stderr string) {
	h.t.Helper()
	var out, errb bytes.Buffer
	c := cli{
		stdout: &out,
		stderr: &errb,
		getenv: func(k string) string { return h.env[k] },
		prompt: func(string) (string, error) { return "", errors.New("no terminal in tests") },
	}
	code = c.run(context.Background(), args)
	return code, out.String(), errb.String()
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	code, out, errOut := h.run(args...)
	if code != 0 {
		h.t.Fatalf("%v exited %d: %s", args, code, errOut)
	}
	return out
}

func TestSetGetRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.mustRun("set", "greeting", "hello")
	h.mustRun("set", "-json", "user", `{"name":"ann","age":3}`)

	if out := h.mustRun("get", "greeting"); out != "hello\n" {
		t.Fatalf("get greeting = %q", out)
	}
	out := h.mustRun("get", "user")
	if !strings.Contains(out, `"name": "ann"`) || !strings.Contains(out, `"age": 3`) {
		t.Fatalf("get user = %q", out)
	}

	raw := h.mustRun("get", "-raw", "greeting")
	if strings.TrimSpace(raw) == "hello" {
		t.Fatalf("-raw should print the ciphertext")
	}

	if code, _, errOut := h.run("get", "missing"); code == 0 || !strings.Contains(errOut, "not found") {
		t.Fatalf("missing key: code=%d stderr=%q", code, errOut)
	}
}

func TestKeysLenKeyRm(t *testing.T) {
	h := newHarness(t)
	h.mustRun("set", "app:a", "1")
	h.mustRun("set", "app:b", "2")
	h.mustRun("set", "other", "3")

	if out := h.mustRun("keys", "app:"); out != "app:a\napp:b\n" {
		t.Fatalf("keys = %q", out)
	}
	if out := h.mustRun("keys", "-regexp", "^o"); out != "other\n" {
		t.Fatalf("keys -regexp = %q", out)
	}
	if out := h.mustRun("keys", "-exact", "app:a"); out != "app:a\n" {
		t.Fatalf("keys -exact = %q", out)
	}
	if out := h.mustRun("len"); out != "3\n" {
		t.Fatalf("len = %q", out)
	}
	if out := h.mustRun("key", "0"); out != "app:a\n" {
		t.Fatalf("key 0 = %q", out)
	}

	out := h.mustRun("get", "-pattern", "app:")
	if !strings.Contains(out, `"app:a": 1`) || !strings.Contains(out, `"app:b": 2`) {
		t.Fatalf("get -pattern = %q", out)
	}

	h.mustRun("rm", "-pattern", "app:")
	h.mustRun("rm", "other")
	if out := h.mustRun("len"); out != "0\n" {
		t.Fatalf("len after rm = %q", out)
	}
}

func TestClearNeedsForce(t *testing.T) {
	h := newHarness(t)
	h.mustRun("set", "k", "v")
	if code, _, _ := h.run("clear"); code == 0 {
		t.Fatalf("clear without -force should fail")
	}
	h.mustRun("clear", "-force")
	if out := h.mustRun("len"); out != "0\n" {
		t.Fatalf("len after clear = %q", out)
	}
}

func TestPrefixFlag(t *testing.T) {
	h := newHarness(t)
	h.mustRun("set", "-prefix", "ns", "k", "v")
	if out := h.mustRun("key", "0"); out != "ns:k\n" {
		t.Fatalf("physical key = %q", out)
	}
	if out := h.mustRun("get", "-prefix", "ns", "k"); out != "v\n" {
		t.Fatalf("get with prefix = %q", out)
	}
}

func TestEncryptDecryptHash(t *testing.T) {
	h := newHarness(t)
	ct := strings.TrimSpace(h.mustRun("encrypt", "-json", `[1,2]`))
	if out := h.mustRun("decrypt", ct); !strings.Contains(out, "1,") {
		t.Fatalf("decrypt = %q", out)
	}
	ct = strings.TrimSpace(h.mustRun("encrypt", "plain words"))
	if out := h.mustRun("decrypt", ct); out != "plain words\n" {
		t.Fatalf("decrypt string = %q", out)
	}

	sha := strings.TrimSpace(h.mustRun("hash", "v"))
	md5 := strings.TrimSpace(h.mustRun("hash", "-md5", "v"))
	if len(sha) != 64 || len(md5) != 32 {
		t.Fatalf("hash lengths = %d %d", len(sha), len(md5))
	}
}

func TestWrongSecretFails(t *testing.T) {
	h := newHarness(t)
	h.mustRun("set", "k", "v")
	h.env["ENCSTORE_SECRET"] = "a-different-secret"
	if code, _, errOut := h.run("get", "k"); code == 0 || !strings.Contains(errOut, "authentication failed") {
		t.Fatalf("wrong secret: code=%d stderr=%q", code, errOut)
	}
}

func TestShortSecretRejected(t *testing.T) {
	h := newHarness(t)
	h.env["ENCSTORE_SECRET"] = "short"
	if code, _, errOut := h.run("len"); code == 0 || !strings.Contains(errOut, "at least 10") {
		t.Fatalf("short secret: code=%d stderr=%q", code, errOut)
	}
}

func TestKeyringCommands(t *testing.T) {
	keyring.MockInit()
	h := newHarness(t)
	delete(h.env, "ENCSTORE_SECRET")

	var out, errb bytes.Buffer
	c := cli{
		stdout: &out,
		stderr: &errb,
		getenv: func(k string) string { return h.env[k] },
		prompt: func(string) (string, error) { return testSecret, nil },
	}
	if code := c.run(context.Background(), []string{"keyring", "save"}); code != 0 {
		t.Fatalf("keyring save: %s", errb.String())
	}

	// the keyring now supplies the secret; the prompt must not be needed
	h.mustRun("set", "k", "v")
	if got := h.mustRun("get", "k"); got != "v\n" {
		t.Fatalf("get via keyring = %q", got)
	}

	if code := c.run(context.Background(), []string{"keyring", "delete"}); code != 0 {
		t.Fatalf("keyring delete: %s", errb.String())
	}
	if code, _, _ := h.run("len"); code == 0 {
		t.Fatalf("without env, keyring or prompt the command must fail")
	}
}

func TestUsage(t *testing.T) {
	h := newHarness(t)
	if code, _, errOut := h.run(); code != 1 || !strings.Contains(errOut, "Usage:") {
		t.Fatalf("no args: %d %q", code, errOut)
	}
	if code, _, errOut := h.run("bogus"); code != 1 || !strings.Contains(errOut, "Unknown command: bogus") {
		t.Fatalf("unknown: %d %q", code, errOut)
	}
	if code, _, _ := h.run("help"); code != 0 {
		t.Fatalf("help should succeed")
	}
}
