package matching

import (
	"math"
	"testing"
)

func TestSubstringMatcher_MatchRatio(t *testing.T) {
	m := NewSubstringMatcher()

	tests := []struct {
		name      string
		required  []string
		possessed []string
		want      float64
	}{
		{
			name:      "empty required set never penalizes",
			required:  nil,
			possessed: nil,
			want:      1.0,
		},
		{
			name:      "empty required with possessed terms",
			required:  []string{},
			possessed: []string{"infirmier"},
			want:      1.0,
		},
		{
			name:      "exact match",
			required:  []string{"infirmier"},
			possessed: []string{"infirmier"},
			want:      1.0,
		},
		{
			name:      "case insensitive",
			required:  []string{"Infirmier"},
			possessed: []string{"INFIRMIER"},
			want:      1.0,
		},
		{
			name:      "required contained in possessed",
			required:  []string{"infirmier"},
			possessed: []string{"Infirmier diplômé d'État"},
			want:      1.0,
		},
		{
			name:      "possessed contained in required",
			required:  []string{"aide-soignant de nuit"},
			possessed: []string{"aide-soignant"},
			want:      1.0,
		},
		{
			name:      "no overlap",
			required:  []string{"chirurgien"},
			possessed: []string{"infirmier", "aide-soignant"},
			want:      0.0,
		},
		{
			name:      "partial overlap",
			required:  []string{"infirmier", "anesthésiste"},
			possessed: []string{"infirmier"},
			want:      0.5,
		},
		{
			name:      "whitespace trimmed before comparison",
			required:  []string{"  infirmier  "},
			possessed: []string{"infirmier"},
			want:      1.0,
		},
		{
			name:      "blank required term counts as matched",
			required:  []string{"", "infirmier"},
			possessed: []string{"infirmier"},
			want:      1.0,
		},
		{
			name:      "blank possessed term matches nothing",
			required:  []string{"infirmier"},
			possessed: []string{"   "},
			want:      0.0,
		},
		{
			name:      "empty possessed set",
			required:  []string{"infirmier", "urgentiste"},
			possessed: nil,
			want:      0.0,
		},
		{
			name:      "one possessed term satisfies one requirement only once",
			required:  []string{"infirmier", "infirmier de bloc", "kinésithérapeute"},
			possessed: []string{"infirmier"},
			want:      2.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MatchRatio(tt.required, tt.possessed)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MatchRatio(%v, %v) = %v, want %v", tt.required, tt.possessed, got, tt.want)
			}
		})
	}
}

func TestCredentialNames(t *testing.T) {
	if got := CredentialNames(nil); got != nil {
		t.Errorf("CredentialNames(nil) = %v, want nil", got)
	}

	creds := []Credential{
		{Name: "Diplôme d'État d'infirmier", Issuer: "IFSI Paris"},
		{Name: "AFGSU 2"},
	}
	got := CredentialNames(creds)
	if len(got) != 2 || got[0] != "Diplôme d'État d'infirmier" || got[1] != "AFGSU 2" {
		t.Errorf("CredentialNames() = %v", got)
	}
}
