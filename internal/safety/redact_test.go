package safety

import (
	"strings"
	"testing"
)

func TestRedactText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		secrets []string
		want    []string
	}{
		{
			name:    "assignments",
			input:   "AWS_SECRET_ACCESS_KEY=abc123 token: xyz password='hunter2'",
			secrets: []string{"abc123", "xyz", "hunter2"},
			want:    []string{"AWS_SECRET_ACCESS_KEY=<redacted>"},
		},
		{
			name:    "bearer header",
			input:   "Authorization: Bearer verysecrettoken",
			secrets: []string{"verysecrettoken"},
			want:    []string{"Authorization: Bearer <redacted>"},
		},
		{
			name:    "long flags",
			input:   "helper --password hunter2 --token=abc123 --api-key \"xyz\" --user bob",
			secrets: []string{"hunter2", "abc123", "xyz"},
			want:    []string{"--password <redacted>", "--token=<redacted>", "--api-key <redacted>", "--user bob"},
		},
		{
			name:    "short flags",
			input:   "helper login -p hunter2 -k=abc123 -t \"tok-xyz\" --port 5432",
			secrets: []string{"hunter2", "abc123", "tok-xyz"},
			want:    []string{"-p <redacted>", "-k=<redacted>", "-t <redacted>", "--port 5432"},
		},
		{
			name:    "positional keyword",
			input:   "pasang 'vpn' dengan password \"rahasia\" lalu token abc123",
			secrets: []string{"rahasia", "abc123"},
			want:    []string{"password <redacted>", "token <redacted>", "pasang 'vpn'"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RedactText(tc.input)
			for _, secret := range tc.secrets {
				if strings.Contains(got, secret) {
					t.Fatalf("expected %q to be redacted, got %q", secret, got)
				}
			}
			for _, want := range tc.want {
				if !strings.Contains(got, want) {
					t.Fatalf("expected %q in %q", want, got)
				}
			}
		})
	}
}

func TestRedactTextLeavesUtterancesAlone(t *testing.T) {
	for _, input := range []string{
		"buka excel",
		"tulis cell A1 'Total Pendapatan'",
		"copy file 'source.txt' ke 'backup.txt'",
	} {
		if got := RedactText(input); got != input {
			t.Fatalf("expected %q unchanged, got %q", input, got)
		}
	}
}

func TestRedactLog(t *testing.T) {
	input := "kirim abcdef0123456789abcdef0123456789 ke test@example.com atau 081234567890"
	got := RedactLog(input)

	for _, leaked := range []string{"abcdef0123456789abcdef0123456789", "test@example.com", "081234567890"} {
		if strings.Contains(got, leaked) {
			t.Fatalf("expected %q to be masked, got %q", leaked, got)
		}
	}
	want := "kirim [REDACTED] ke [REDACTED_EMAIL] atau [REDACTED_PHONE]"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRedactLogAppliesSecretRulesFirst(t *testing.T) {
	got := RedactLog("token abcdef0123456789abcdef0123456789 email test@example.com phone 081234567890")
	if strings.Contains(got, "abcdef0123456789") || strings.Contains(got, "example.com") || strings.Contains(got, "081234567890") {
		t.Fatalf("expected all sensitive values masked, got %q", got)
	}
	if !strings.Contains(got, "token <redacted>") {
		t.Fatalf("expected keyword redaction, got %q", got)
	}
}

func TestRedactLogKeepsShortNumbers(t *testing.T) {
	input := "hapus slide 5 lalu tulis cell B12 '12345678'"
	if got := RedactLog(input); got != input {
		t.Fatalf("expected %q unchanged, got %q", input, got)
	}
}
