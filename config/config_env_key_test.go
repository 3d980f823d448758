package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"loyalty": map[string]any{
			"txMaxRetries": 3,
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
		"secretKey": map[string]any{
			"access": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "LOYALTY_TXMAXRETRIES", want: "loyalty.txMaxRetries"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestLoyaltyConfig_ApplyDefaults(t *testing.T) {
	cfg := &LoyaltyConfig{TxMaxRetries: -2, HistoryPageLimit: 20}
	cfg.applyDefaults()

	if cfg.DefaultCoinValue != defaultCoinValue {
		t.Fatalf("DefaultCoinValue = %d, want %d", cfg.DefaultCoinValue, defaultCoinValue)
	}
	if cfg.TxTimeout != defaultTxTimeout {
		t.Fatalf("TxTimeout = %s, want %s", cfg.TxTimeout, defaultTxTimeout)
	}
	if cfg.TxMaxRetries != 0 {
		t.Fatalf("TxMaxRetries = %d, want 0", cfg.TxMaxRetries)
	}
	if cfg.ReservationTTL != defaultReservationTTL {
		t.Fatalf("ReservationTTL = %s, want %s", cfg.ReservationTTL, defaultReservationTTL)
	}
	if cfg.HistoryPageLimit != 20 {
		t.Fatalf("HistoryPageLimit = %d, want 20", cfg.HistoryPageLimit)
	}
}
