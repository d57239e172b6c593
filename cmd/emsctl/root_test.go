package main

import (
	"bytes"
	"testing"
)

func TestFetchRequiresYear(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"fetch", "--org", "987654321"})

	err := rootCmd.Execute()
	if err == nil || err.Error() != "--year is required" {
		t.Fatalf("expected missing year error, got %v", err)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"fetch", "warmup"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, cmd, err)
		}
	}

	for _, flag := range []string{"force", "years", "enqueue"} {
		if warmupCmd.Flags().Lookup(flag) == nil {
			t.Fatalf("warmup is missing --%s", flag)
		}
	}
}
