package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ferrors "github.com/vango-dev/formstate/internal/errors"
	"github.com/vango-dev/formstate/pkg/form"
)

const signupYAML = `
name: signup
fields:
  - key: user.email
    rules: required,email
  - key: user.password
    initial: secret
    rules: required,minlen=6
  - key: user.confirm
    rules: eqfield=user.password
  - key: user.phone
  - key: age
    initial: 30
    rules: min=18
validators:
  - key: contact
    kind: any_required
    fields: [user.email, user.phone]
    message: Give us a way to reach you
  - key: short
    kind: none_invalid
    rule: maxlen=64
server:
  addr: ":9090"
  async_rate: 5
`

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Server.MetricsPath != DefaultMetricsPath {
		t.Errorf("Server.MetricsPath = %q, want %q", cfg.Server.MetricsPath, DefaultMetricsPath)
	}
	if cfg.Server.ReadBufferSize != DefaultBufferSize || cfg.Server.WriteBufferSize != DefaultBufferSize {
		t.Errorf("buffer sizes = %d/%d, want %d", cfg.Server.ReadBufferSize, cfg.Server.WriteBufferSize, DefaultBufferSize)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if !errors.Is(err, ferrors.New(ferrors.CodeInvalidConfig)) {
		t.Fatalf("Load() on empty dir error = %v, want invalid config", err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(signupYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "signup" {
		t.Errorf("Name = %q, want signup", cfg.Name)
	}
	if len(cfg.Fields) != 5 {
		t.Errorf("len(Fields) = %d, want 5", len(cfg.Fields))
	}
	if cfg.Fields[4].Initial != 30 {
		t.Errorf("age initial = %#v, want 30", cfg.Fields[4].Initial)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Server.AsyncBurst != 1 {
		t.Errorf("Server.AsyncBurst = %d, want 1", cfg.Server.AsyncBurst)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv(EnvAddr, "0.0.0.0:7000")

	cfg, err := Parse([]byte(signupYAML))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != "0.0.0.0:7000" {
		t.Errorf("Server.Addr = %q, want env override", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "fields: [", "Failed to parse"},
		{"missing key", "fields:\n  - rules: required\n", "key is required"},
		{"duplicate key", "fields:\n  - key: a\n  - key: a\n", "duplicate key"},
		{"bad rule", "fields:\n  - key: a\n    rules: bogus\n", "unknown rule"},
		{"unknown kind", "fields:\n  - key: a\nvalidators:\n  - key: v\n    kind: nope\n", "unknown kind"},
		{"unknown field", "fields:\n  - key: a\nvalidators:\n  - key: v\n    kind: fields_equal\n    fields: [a, b]\n", "unknown field"},
		{"no rule", "validators:\n  - key: v\n    kind: none_invalid\n", "exactly one rule"},
		{"cross-field rule", "fields:\n  - key: a\n  - key: b\nvalidators:\n  - key: v\n    kind: none_invalid\n    rule: eqfield=a\n", "reads other fields"},
		{"nefield rule", "fields:\n  - key: a\nvalidators:\n  - key: v\n    kind: none_invalid\n    rule: nefield=a\n", "reads other fields"},
		{"negative rate", "server:\n  async_rate: -1\n", "async_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			var fe *ferrors.FormError
			if !errors.As(err, &fe) || fe.Code != ferrors.CodeInvalidConfig {
				t.Fatalf("error = %v, want %s", err, ferrors.CodeInvalidConfig)
			}
			if !strings.Contains(fe.Detail, tt.want) {
				t.Errorf("Detail = %q, want it to contain %q", fe.Detail, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	cfg, err := Parse([]byte(signupYAML))
	if err != nil {
		t.Fatal(err)
	}

	f, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer f.Close()

	want := []string{"user.email", "user.password", "user.confirm", "user.phone", "age"}
	if got := f.Keys(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	var errs form.Errors
	obs := f.ObserveErrors(func(e form.Errors) { errs = e })
	defer obs.Close()

	if _, ok := errs["user.email"]; !ok {
		t.Error("empty email should be invalid")
	}
	if _, ok := errs["user.confirm"]; !ok {
		t.Error("confirm should not match password")
	}
	if _, ok := errs["age"]; ok {
		t.Error("age 30 should be valid")
	}

	if st, _ := f.ValidatorStatus("contact"); !st.Equal(form.Invalid("Give us a way to reach you")) {
		t.Errorf("contact = %v", st)
	}

	f.WriteMany(map[string]any{"user.email": "ada@example.com", "user.confirm": "secret"})
	if len(errs) != 0 {
		t.Errorf("errors after fixing = %v, want none", errs)
	}
	if st, _ := f.ValidatorStatus("contact"); !st.IsValid() {
		t.Errorf("contact = %v, want valid", st)
	}
}
