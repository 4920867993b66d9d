package providerfactory

import (
	"errors"
	"testing"
	"time"

	"stratus-hq/helios/pkg/config"
	"stratus-hq/helios/pkg/providers"
)

func providerCfg(ptype string) config.ProviderConfig {
	return config.ProviderConfig{
		Type:      ptype,
		BaseURL:   "https://example.test",
		APIKey:    "key",
		Model:     "model",
		MaxTokens: 1024,
		Timeout:   time.Second,
	}
}

func TestNewProviderTypes(t *testing.T) {
	for _, ptype := range []string{"anthropic", "openai", "gemini"} {
		p, err := NewProvider("test", providerCfg(ptype))
		if err != nil {
			t.Fatalf("NewProvider(%s): %v", ptype, err)
		}
		if p.Name() != "test" {
			t.Errorf("Name() = %q, want test", p.Name())
		}
	}
}

func TestNewProviderUnknownType(t *testing.T) {
	_, err := NewProvider("test", providerCfg("bedrock"))

	var cfgErr *providers.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
}

func TestNewChainRespectsFallbackOrder(t *testing.T) {
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"a-first":  providerCfg("anthropic"),
			"b-backup": providerCfg("openai"),
		},
		Fallback: config.FallbackConfig{Order: []string{"b-backup", "a-first"}},
	}
	config.ApplyDefaults(cfg)

	chain, err := NewChain(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	names := chain.ProviderNames()
	if len(names) != 2 || names[0] != "b-backup" || names[1] != "a-first" {
		t.Errorf("chain order = %v, want [b-backup a-first]", names)
	}
}

func TestNewChainDefaultsToLexicalOrder(t *testing.T) {
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"zeta":  providerCfg("openai"),
			"alpha": providerCfg("anthropic"),
		},
	}
	config.ApplyDefaults(cfg)

	chain, err := NewChain(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	names := chain.ProviderNames()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("chain order = %v, want [alpha zeta]", names)
	}
}

func TestNewChainSkipsDisabledProviders(t *testing.T) {
	disabled := false
	pc := providerCfg("openai")
	pc.Enabled = &disabled

	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"on":  providerCfg("anthropic"),
			"off": pc,
		},
	}
	config.ApplyDefaults(cfg)

	chain, err := NewChain(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	names := chain.ProviderNames()
	if len(names) != 1 || names[0] != "on" {
		t.Errorf("chain = %v, want [on]", names)
	}
}

func TestNewChainUnknownProviderInOrder(t *testing.T) {
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{"a": providerCfg("anthropic")},
		Fallback:  config.FallbackConfig{Order: []string{"a", "ghost"}},
	}
	config.ApplyDefaults(cfg)

	if _, err := NewChain(cfg, nil, nil); err == nil {
		t.Fatal("NewChain with unknown provider succeeded, want error")
	}
}

func TestNewChainAllDisabledFails(t *testing.T) {
	disabled := false
	pc := providerCfg("anthropic")
	pc.Enabled = &disabled

	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{"off": pc},
	}
	config.ApplyDefaults(cfg)

	if _, err := NewChain(cfg, nil, nil); err == nil {
		t.Fatal("NewChain with all providers disabled succeeded, want error")
	}
}
