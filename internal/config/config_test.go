package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestViperConfigGetString(t *testing.T) {
	v := viper.New()
	v.Set("name", "test")
	cfg := New(v)

	if got := cfg.GetString("name"); got != "test" {
		t.Errorf("GetString('name') = %q, want %q", got, "test")
	}
}

func TestViperConfigGetInt(t *testing.T) {
	v := viper.New()
	v.Set("port", 8080)
	cfg := New(v)

	if got := cfg.GetInt("port"); got != 8080 {
		t.Errorf("GetInt('port') = %d, want %d", got, 8080)
	}
}

func TestViperConfigGetBool(t *testing.T) {
	v := viper.New()
	v.Set("enabled", true)
	cfg := New(v)

	if got := cfg.GetBool("enabled"); !got {
		t.Error("GetBool('enabled') = false, want true")
	}
}

func TestViperConfigGetDuration(t *testing.T) {
	v := viper.New()
	v.Set("timeout", "5s")
	cfg := New(v)

	want := 5 * time.Second
	if got := cfg.GetDuration("timeout"); got != want {
		t.Errorf("GetDuration('timeout') = %v, want %v", got, want)
	}
}

func TestViperConfigIsSet(t *testing.T) {
	v := viper.New()
	v.Set("exists", true)
	cfg := New(v)

	if !cfg.IsSet("exists") {
		t.Error("IsSet('exists') = false, want true")
	}
	if cfg.IsSet("missing") {
		t.Error("IsSet('missing') = true, want false")
	}
}

func TestViperConfigUnmarshal(t *testing.T) {
	v := viper.New()
	v.Set("host", "localhost")
	v.Set("port", 9090)
	cfg := New(v)

	var target struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	}
	if err := cfg.Unmarshal(&target); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if target.Host != "localhost" {
		t.Errorf("Host = %q, want %q", target.Host, "localhost")
	}
	if target.Port != 9090 {
		t.Errorf("Port = %d, want %d", target.Port, 9090)
	}
}

func TestNilViper(t *testing.T) {
	cfg := New(nil)
	// Should not panic and return zero values.
	if got := cfg.GetString("key"); got != "" {
		t.Errorf("nil viper GetString() = %q, want empty", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.GetInt("server.port"); got != 8080 {
		t.Errorf("server.port = %d, want 8080", got)
	}
	if got := cfg.GetInt("list.max_page_size"); got != 100 {
		t.Errorf("list.max_page_size = %d, want 100", got)
	}
	if cfg.GetBool("log.development") {
		t.Error("log.development = true, want false")
	}
	if cfg.IsSet("log.level") {
		t.Error("log.level should have no default")
	}

	s, err := cfg.Serve()
	if err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if got := s.Server.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:8080")
	}
	if s.Server.RateLimit.RPS != 20 || s.Server.RateLimit.Burst != 40 {
		t.Errorf("rate limit = %+v, want 20 rps burst 40", s.Server.RateLimit)
	}
	if s.List.DefaultPageSize != 10 || s.List.MaxPageSize != 100 {
		t.Errorf("list = %+v, want 10/100", s.List)
	}
}

func TestServeSettingsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradeboard.yaml")
	data := []byte("server:\n  port: 9191\n  rate_limit:\n    burst: 5\nlist:\n  default_page_size: 25\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRADEBOARD_SERVER_SEED_ON_START", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s, err := cfg.Serve()
	if err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if got := s.Server.Addr(); got != "0.0.0.0:9191" {
		t.Errorf("Addr() = %q, want 0.0.0.0:9191", got)
	}
	if s.Server.RateLimit.RPS != 20 {
		t.Errorf("rps = %v, want default 20", s.Server.RateLimit.RPS)
	}
	if s.Server.RateLimit.Burst != 5 {
		t.Errorf("burst = %d, want 5 from file", s.Server.RateLimit.Burst)
	}
	if !s.Server.SeedOnStart {
		t.Error("seed_on_start = false, want true from env")
	}
	if s.List.DefaultPageSize != 25 || s.List.MaxPageSize != 100 {
		t.Errorf("list = %+v, want 25/100", s.List)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradeboard.yaml")
	data := []byte("server:\n  port: 9191\ndatabase:\n  path: /tmp/market.db\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRADEBOARD_LIST_MAX_PAGE_SIZE", "250")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.GetInt("server.port"); got != 9191 {
		t.Errorf("server.port = %d, want 9191", got)
	}
	if got := cfg.GetString("database.path"); got != "/tmp/market.db" {
		t.Errorf("database.path = %q, want /tmp/market.db", got)
	}
	if got := cfg.GetInt("list.max_page_size"); got != 250 {
		t.Errorf("list.max_page_size = %d, want 250 from env", got)
	}
	if got := cfg.GetString("server.host"); got != "0.0.0.0" {
		t.Errorf("server.host = %q, want default", got)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing explicit file should fail")
	}
}
