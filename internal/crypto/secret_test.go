package crypto

import (
	"strings"
	"testing"
)

func TestGenerateSecret(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{name: "default length", length: DefaultSecretLength},
		{name: "minimum", length: MinSecretLength},
		{name: "maximum", length: MaxSecretLength},
		{name: "too short", length: MinSecretLength - 1, wantErr: true},
		{name: "too long", length: MaxSecretLength + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := GenerateSecret(tt.length)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(secret) != tt.length {
				t.Errorf("len = %d, want %d", len(secret), tt.length)
			}
			for _, c := range secret {
				if !strings.ContainsRune(secretAlphabet, c) {
					t.Errorf("unexpected character %q", c)
				}
			}
		})
	}
}

func TestGenerateSecret_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s, err := GenerateSecret(DefaultSecretLength)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[s] {
			t.Fatal("generated duplicate secret")
		}
		seen[s] = true
	}
}
