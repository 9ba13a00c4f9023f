package configfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRead_MissingFileYieldsDefault(t *testing.T) {
	cfg, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.ApiKeys) != 0 {
		t.Errorf("default api_keys = %v", cfg.ApiKeys)
	}
	want := []string{"timestamp", "time", "created_at", "meta.time"}
	if len(cfg.TimePaths) != len(want) {
		t.Fatalf("default time_paths = %v", cfg.TimePaths)
	}
	for i, p := range want {
		if cfg.TimePaths[i] != p {
			t.Errorf("time_paths[%d] = %s, want %s", i, cfg.TimePaths[i], p)
		}
	}
}

func TestWriteRead_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	in := Config{
		ApiKeys: []ApiKey{{
			Name: "ci",
			Hash: strings.Repeat("ab", 32),
		}},
		TimePaths: []string{"ts", "meta.ts"},
	}
	if err := Write(path, in); err != nil {
		t.Fatal(err)
	}

	out, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.ApiKeys) != 1 || out.ApiKeys[0].Name != "ci" || out.ApiKeys[0].Hash != in.ApiKeys[0].Hash {
		t.Errorf("api_keys = %v", out.ApiKeys)
	}
	if len(out.TimePaths) != 2 || out.TimePaths[0] != "ts" {
		t.Errorf("time_paths = %v", out.TimePaths)
	}
}

func TestRead_EmptyTimePathsGetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"api_keys":[],"time_paths":[]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.TimePaths) == 0 {
		t.Error("empty time_paths should fall back to defaults")
	}
}

func TestValidate_RejectsBadHashes(t *testing.T) {
	bad := []string{
		"",
		"short",
		strings.Repeat("g", 64),
		strings.Repeat("ab", 33),
	}
	for _, hash := range bad {
		cfg := Config{ApiKeys: []ApiKey{{Name: "x", Hash: hash}}}
		if err := cfg.Validate(); err == nil {
			t.Errorf("hash %q: expected validation error", hash)
		}
	}
}

func TestValidate_AcceptsEitherHashCase(t *testing.T) {
	for _, hash := range []string{
		strings.Repeat("ab", 32),
		strings.ToUpper(strings.Repeat("ab", 32)),
		"AbCd" + strings.Repeat("01", 30),
	} {
		cfg := Config{ApiKeys: []ApiKey{{Name: "x", Hash: hash}}}
		if err := cfg.Validate(); err != nil {
			t.Errorf("hash %q: %v", hash, err)
		}
	}
}

func TestRead_MalformedJSONErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Error("expected parse error")
	}
}
