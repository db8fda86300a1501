package testutil

import (
	"github.com/paxiitdevteam/retentionos/config"
)

// TestConfig returns an engine config with production defaults, suitable for
// service tests that do not read a config file.
func TestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret",
			ExpireHours: 24,
		},
		Retention: config.RetentionConfig{
			DefaultLanguage:      "en",
			DiscountSavePercent:  config.DefaultDiscountSavePercent,
			DowngradeSavePercent: config.DefaultDowngradeSavePercent,
			RecommendMinSample:   5,
		},
	}
}
