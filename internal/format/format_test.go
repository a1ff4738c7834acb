package format

import (
	"strings"
	"testing"
	"time"
)

func TestIRR(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{100000, "100,000"},
		{1250000, "1,250,000"},
		{999, "999"},
		{1500.5, "1,500.5"},
	}
	for _, tt := range tests {
		if got := IRR(tt.in); got != tt.want {
			t.Errorf("IRR(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUSDT(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.5, "2.50"},
		{0, "0.00"},
		{10, "10.00"},
		{3.14159, "3.14"},
	}
	for _, tt := range tests {
		if got := USDT(tt.in); got != tt.want {
			t.Errorf("USDT(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGB(t *testing.T) {
	if got := GB(50); got != "50 GB" {
		t.Errorf("GB(50) = %q", got)
	}
	if got := GB(0); got != "Unlimited" {
		t.Errorf("GB(0) = %q", got)
	}
}

func TestDateAndAgo(t *testing.T) {
	if Date(time.Time{}) != "-" || Ago(time.Time{}) != "-" {
		t.Errorf("zero time should render as -")
	}
	ts := time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)
	if got := Date(ts); got != "2024-03-01 09:05" {
		t.Errorf("Date = %q", got)
	}
	if got := Ago(time.Now().Add(-3 * time.Hour)); !strings.Contains(got, "hours ago") {
		t.Errorf("Ago = %q", got)
	}
}

func TestMarkdown(t *testing.T) {
	if Markdown("   ") != "" {
		t.Errorf("blank draft should render empty")
	}
	got := string(Markdown("**Sale** today"))
	if !strings.Contains(got, "<strong>Sale</strong>") {
		t.Errorf("Markdown = %q", got)
	}
	got = string(Markdown("<script>alert(1)</script>"))
	if strings.Contains(got, "<script>") {
		t.Errorf("raw html passed through: %q", got)
	}
}
