package httpapi

import (
	"reflect"
	"testing"
)

func TestConfigValidateAppliesDefaults(test *testing.T) {
	test.Parallel()
	cfg := Config{
		JWTSigningKey: "key",
		WebhookSecret: "secret",
	}
	if err := cfg.Validate(); err != nil {
		test.Fatalf("validate: %v", err)
	}
	if cfg.ListenAddr != defaultListenAddr {
		test.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != defaultAllowedOrigin {
		test.Fatalf("expected default origin, got %v", cfg.AllowedOrigins)
	}
	if cfg.HistoryLimit != defaultHistoryLimit {
		test.Fatalf("expected default history limit, got %d", cfg.HistoryLimit)
	}
}

func TestConfigValidateRequiresSecrets(test *testing.T) {
	test.Parallel()
	cfg := Config{WebhookSecret: "secret"}
	if err := cfg.Validate(); err == nil {
		test.Fatal("expected error for missing signing key")
	}
	cfg = Config{JWTSigningKey: "key"}
	if err := cfg.Validate(); err == nil {
		test.Fatal("expected error for missing webhook secret")
	}
}

func TestParseAllowedOrigins(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{}},
		{name: "single", raw: "https://example.com", want: []string{"https://example.com"}},
		{name: "multiple with spaces", raw: " https://a.example , https://b.example ", want: []string{"https://a.example", "https://b.example"}},
		{name: "trailing comma", raw: "https://a.example,", want: []string{"https://a.example"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			got := ParseAllowedOrigins(testCase.raw)
			if !reflect.DeepEqual(got, testCase.want) {
				test.Fatalf("expected %v, got %v", testCase.want, got)
			}
		})
	}
}
