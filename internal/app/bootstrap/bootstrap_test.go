package bootstrap

import "testing"

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":       ":8080",
		"  ":     ":8080",
		"9090":   ":9090",
		":7000":  ":7000",
		" 8081 ": ":8081",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestBuildAPIRequiresPostgres(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("POSTGRES_DSN", "")

	if _, err := BuildAPI(); err == nil {
		t.Fatal("expected an error without a postgres dsn")
	}
}
