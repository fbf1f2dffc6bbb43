package main

import (
	"encoding/json"
	"testing"

	"movs/internal/configcache"
)

func TestCacheShowAndClear(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cache", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	requireContains(t, out, "No cached configuration")

	if _, _, err := runCLI(t, []string{"load"}, env.configPath); err != nil {
		t.Fatalf("load: %v", err)
	}

	out, _, err = runCLI(t, []string{"cache", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	requireContains(t, out, "Cached at:")
	requireContains(t, out, "Comedy")

	out, _, err = runCLI(t, []string{"cache", "show", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("cache show --json: %v", err)
	}
	var snapshot configcache.Snapshot
	if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v\n%s", err, out)
	}
	if len(snapshot.Config.Genres) != 3 || snapshot.CachedAt.IsZero() {
		t.Errorf("snapshot = %+v", snapshot)
	}

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared cached configuration")

	out, _, err = runCLI(t, []string{"cache", "show", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("cache show --json: %v", err)
	}
	requireContains(t, out, `"cached": false`)
}
