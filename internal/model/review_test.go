package model

import "testing"

func TestValidateScore(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		wantErr bool
	}{
		{"lower bound", 0, false},
		{"upper bound", 10, false},
		{"middle", 5, false},
		{"just above", 11, true},
		{"just below", -1, true},
		{"far out", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScore(tt.score)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScore(%d) error = %v, wantErr %v", tt.score, err, tt.wantErr)
			}
			if err != nil && err != ErrInvalidScore {
				t.Errorf("ValidateScore(%d) = %v, want ErrInvalidScore", tt.score, err)
			}
		})
	}
}
