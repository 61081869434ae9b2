package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 8080},
		OpenAI: OpenAIConfig{APIKey: "sk-test"},
	}
}

func TestValidate_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_APIKey(t *testing.T) {
	for _, key := range []string{"", "  ", "dummy", "DUMMY"} {
		cfg := validConfig()
		cfg.OpenAI.APIKey = key
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for api key %q", key)
		}
	}

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for valid config: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("default model = %q, want gpt-4o", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.EmbedBatchSize != 100 {
		t.Errorf("default embed batch size = %d, want 100", cfg.OpenAI.EmbedBatchSize)
	}
	if cfg.Advisor.MaxTurns != 5 {
		t.Errorf("default max turns = %d, want 5", cfg.Advisor.MaxTurns)
	}
	if cfg.Advisor.MaxAttempts != 3 {
		t.Errorf("default max attempts = %d, want 3", cfg.Advisor.MaxAttempts)
	}
	if cfg.Catalogue.DataDir != "data" {
		t.Errorf("default data dir = %q, want data", cfg.Catalogue.DataDir)
	}
	if cfg.RateLimit.Burst != 3 {
		t.Errorf("default burst = %d, want 3", cfg.RateLimit.Burst)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TA_TEST_KEY", "sk-live")

	in := []byte("api_key: ${TA_TEST_KEY}\nmodel: ${TA_TEST_MODEL:-gpt-4o}\n")
	out := string(expandEnvVars(in))

	want := "api_key: sk-live\nmodel: gpt-4o\n"
	if out != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}

	yaml := `
http:
  port: 9090
openai:
  api_key: sk-file-test
  model: gpt-4o-mini
advisor:
  max_turns: 4
`
	if err := os.WriteFile(filepath.Join(cfgDir, "test.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", cfg.OpenAI.Model)
	}
	if cfg.Advisor.MaxTurns != 4 {
		t.Errorf("max_turns = %d, want 4", cfg.Advisor.MaxTurns)
	}
	// Defaults still fill in the gaps.
	if cfg.Advisor.MaxAttempts != 3 {
		t.Errorf("max_attempts = %d, want default 3", cfg.Advisor.MaxAttempts)
	}
}

func TestMustLoad_PanicsOnMissingConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected MustLoad to panic for a missing config file")
		}
	}()
	MustLoad("no-such-env")
}
