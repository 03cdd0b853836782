package vpg

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("expected default config to validate but got: %v", err)
	}
}

func TestValidateRejectsIllegalValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero max steps", func(c *Config) { c.MaxSteps = 0 }},
		{"zero value grad steps", func(c *Config) { c.ValueGradSteps = 0 }},
		{"gamma of 1", func(c *Config) { c.Gamma = 1.0 }},
		{"negative gamma", func(c *Config) { c.Gamma = -0.5 }},
		{"lambda of 0", func(c *Config) { c.Lambda = 0.0 }},
	}

	for _, test := range tests {
		config := DefaultConfig()
		test.mutate(&config)
		if err := config.Validate(); err == nil {
			t.Errorf("%v: expected a validation error", test.name)
		}
	}
}
