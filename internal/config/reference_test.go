package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultReference(t *testing.T) {
	ref, err := LoadReference("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if err := ref.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	branding := ref.Branding()
	if len(branding.BankLogos) != 5 || branding.BankLogos[0].URL != "https://www.absa.co.za" {
		t.Fatalf("unexpected bank logos %+v", branding.BankLogos)
	}
	if branding.Banking.BranchCode != "632005" || branding.Title == "" {
		t.Fatalf("unexpected branding %+v", branding)
	}
	if ref.Collections.AccountMaster != "account_master" {
		t.Fatalf("unexpected collections %+v", ref.Collections)
	}
}

func TestReferenceAssetNames(t *testing.T) {
	ref := Reference{
		HeaderLogo:  LogoRef{Name: "crest", Asset: "crest.png"},
		PaymentLogo: LogoRef{Name: "yebopay"},
		BankLogos: []LogoRef{
			{Name: "absa", Asset: "absa.png"},
			{Name: "absa-business", Asset: "absa.png"},
			{Name: "fnb", Asset: "fnb.png"},
		},
	}
	got := ref.AssetNames()
	want := []string{"crest.png", "absa.png", "fnb.png"}
	if len(got) != len(want) {
		t.Fatalf("asset names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("asset names = %v, want %v", got, want)
		}
	}
	if n := len(DefaultReference().AssetNames()); n != 7 {
		t.Fatalf("expected 7 default assets, got %d", n)
	}
}

func TestLoadReferenceOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	content := `
municipality:
  name: City of Mbombela
  lines:
    - 1 Nel Street
banking:
  account_number: "62000000001"
bank_logos:
  - name: fnb
    label: FNB
    asset: fnb.png
    url: https://www.fnb.co.za
collections:
  levy_lines: levies
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write reference: %v", err)
	}
	ref, err := LoadReference(path)
	if err != nil {
		t.Fatalf("load reference: %v", err)
	}
	if ref.Municipality.Name != "City of Mbombela" || len(ref.Municipality.Lines) != 1 {
		t.Fatalf("municipality not overlaid: %+v", ref.Municipality)
	}
	if ref.Banking.AccountNumber != "62000000001" || ref.Banking.BranchCode != "632005" {
		t.Fatalf("banking overlay must keep unspecified defaults: %+v", ref.Banking)
	}
	if len(ref.BankLogos) != 1 {
		t.Fatalf("bank logos must be replaced, got %d", len(ref.BankLogos))
	}
	if ref.Collections.LevyLines != "levies" || ref.Collections.AccountMaster != "account_master" {
		t.Fatalf("unexpected collections %+v", ref.Collections)
	}
}

func TestLoadReferenceErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadReference(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("bank_logos:\n  - name: x\n    url: ftp://x\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadReference(bad); err == nil {
		t.Fatalf("expected error for non-http bank url")
	}
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("municipality: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadReference(broken); err == nil {
		t.Fatalf("expected parse error")
	}
}
