package config

import "testing"

func TestNormalizeEnvironment(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"", EnvDevelopment},
		{"  ", EnvDevelopment},
		{"Production", EnvProduction},
		{" staging ", EnvStaging},
		{"qa", "qa"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := NormalizeEnvironment(tt.env); got != tt.want {
				t.Errorf("NormalizeEnvironment(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestIsProductionLike(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"", false},
		{"development", false},
		{"STAGING", true},
		{"production", true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := IsProductionLike(tt.env); got != tt.want {
				t.Errorf("IsProductionLike(%q) = %v, want %v", tt.env, got, tt.want)
			}
		})
	}
}
