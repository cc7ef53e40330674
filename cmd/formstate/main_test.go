package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/formstate/pkg/form"
)

const checkYAML = `
name: signup
fields:
  - key: email
    rules: required,email
  - key: password
    rules: required,minlen=8
  - key: confirm
    rules: eqfield=password
validators:
  - key: contact
    kind: any_required
    fields: [email]
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formstate.yaml")
	if err := os.WriteFile(path, []byte(checkYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCheckReportsErrors(t *testing.T) {
	colors = false
	var out bytes.Buffer

	validity, err := runCheck(&out, writeConfig(t), nil)
	if err != nil {
		t.Fatalf("runCheck() error = %v", err)
	}
	if validity != form.ValidityInvalid {
		t.Errorf("validity = %v, want invalid", validity)
	}
	for _, want := range []string{
		"✗ email: This field is required",
		"✗ password: This field is required",
		"✓ confirm",
		"✗ [contact]: One of email is required",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunCheckWithValues(t *testing.T) {
	colors = false
	var out bytes.Buffer

	validity, err := runCheck(&out, writeConfig(t), []string{
		"email=ada@example.com",
		"password=correct horse",
		"confirm=correct horse",
		"unknown=ignored",
	})
	if err != nil {
		t.Fatalf("runCheck() error = %v", err)
	}
	if validity != form.ValidityValid {
		t.Errorf("validity = %v, want valid\n%s", validity, out.String())
	}
}

func TestRunCheckBadSet(t *testing.T) {
	if _, err := runCheck(&bytes.Buffer{}, writeConfig(t), []string{"novalue"}); err == nil {
		t.Error("runCheck() should reject --set without '='")
	}
}

func TestRunCheckMissingConfig(t *testing.T) {
	_, err := runCheck(&bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.yaml"), nil)
	if err == nil || !strings.Contains(err.Error(), "F006") {
		t.Errorf("runCheck() error = %v, want F006", err)
	}
}

func TestVersionShort(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version = %q, want %q", got, version)
	}
}

func TestVersionJSON(t *testing.T) {
	var out bytes.Buffer
	if err := printVersion(&out, false, true); err != nil {
		t.Fatal(err)
	}
	var info buildInfo
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if info.Version != version || info.Commit != commit {
		t.Errorf("info = %+v", info)
	}
}
