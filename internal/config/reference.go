package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"municipal-statements/internal/statement/application"
	statement "municipal-statements/internal/statement/domain"
	"municipal-statements/internal/statement/layout"
)

// LogoRef describes a logo in the reference file.
type LogoRef struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Asset string `yaml:"asset"`
	URL   string `yaml:"url"`
}

// Municipality is the issuer block printed in the statement header.
type Municipality struct {
	Name  string   `yaml:"name"`
	Lines []string `yaml:"lines"`
}

// Banking is the static remittance account.
type Banking struct {
	BankName      string `yaml:"bank_name"`
	AccountName   string `yaml:"account_name"`
	AccountNumber string `yaml:"account_number"`
	BranchCode    string `yaml:"branch_code"`
	AccountType   string `yaml:"account_type"`
}

// Reference is the static data printed on every statement.
type Reference struct {
	Title        string                  `yaml:"title"`
	Municipality Municipality            `yaml:"municipality"`
	Banking      Banking                 `yaml:"banking"`
	HeaderLogo   LogoRef                 `yaml:"header_logo"`
	PaymentLogo  LogoRef                 `yaml:"payment_logo"`
	BankLogos    []LogoRef               `yaml:"bank_logos"`
	Disclaimer   []string                `yaml:"disclaimer"`
	Collections  application.Collections `yaml:"collections"`
}

// DefaultReference returns the built-in reference data.
func DefaultReference() Reference {
	return Reference{
		Title: layout.DefaultTitle,
		Municipality: Municipality{
			Name:  "Local Municipality",
			Lines: []string{"Civic Centre, Main Street", "Private Bag X1001", "Tel: 013 000 0000"},
		},
		Banking: Banking{
			BankName:      "ABSA",
			AccountName:   "Local Municipality Revenue",
			AccountNumber: "4000000000",
			BranchCode:    "632005",
			AccountType:   "Cheque",
		},
		HeaderLogo:  LogoRef{Name: "municipality", Label: "Municipality", Asset: "municipality.png"},
		PaymentLogo: LogoRef{Name: "yebopay", Label: "Pay online", Asset: "yebopay.png"},
		BankLogos: []LogoRef{
			{Name: "absa", Label: "ABSA", Asset: "absa.png", URL: "https://www.absa.co.za"},
			{Name: "fnb", Label: "FNB", Asset: "fnb.png", URL: "https://www.fnb.co.za"},
			{Name: "standardbank", Label: "Standard Bank", Asset: "standardbank.png", URL: "https://www.standardbank.co.za"},
			{Name: "nedbank", Label: "Nedbank", Asset: "nedbank.png", URL: "https://www.nedbank.co.za"},
			{Name: "capitec", Label: "Capitec", Asset: "capitec.png", URL: "https://www.capitecbank.co.za"},
		},
		Disclaimer: []string{
			"Please use your account number as the payment reference.",
			"Payments made after the statement date will reflect on your next statement.",
			"Queries regarding this account must be lodged before the due date.",
		},
		Collections: application.DefaultCollections(),
	}
}

// LoadReference overlays the YAML file at path on DefaultReference. An
// empty path returns the defaults.
func LoadReference(path string) (Reference, error) {
	ref := DefaultReference()
	if path == "" {
		return ref, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ref, fmt.Errorf("config: read reference: %w", err)
	}
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return ref, fmt.Errorf("config: parse reference: %w", err)
	}
	if err := ref.Validate(); err != nil {
		return ref, err
	}
	return ref, nil
}

// Validate checks the reference data for entries that cannot be rendered.
func (r Reference) Validate() error {
	if strings.TrimSpace(r.Municipality.Name) == "" {
		return errors.New("config: municipality name is required")
	}
	for i, logo := range r.BankLogos {
		if logo.Name == "" && logo.Asset == "" {
			return fmt.Errorf("config: bank logo %d has no name or asset", i)
		}
		if logo.URL != "" && !strings.HasPrefix(logo.URL, "https://") && !strings.HasPrefix(logo.URL, "http://") {
			return fmt.Errorf("config: bank logo %s url must be absolute", logo.Name)
		}
	}
	return nil
}

// AssetNames lists the distinct logo assets referenced, in display order.
func (r Reference) AssetNames() []string {
	logos := append([]LogoRef{r.HeaderLogo, r.PaymentLogo}, r.BankLogos...)
	seen := make(map[string]bool, len(logos))
	names := make([]string, 0, len(logos))
	for _, logo := range logos {
		if logo.Asset == "" || seen[logo.Asset] {
			continue
		}
		seen[logo.Asset] = true
		names = append(names, logo.Asset)
	}
	return names
}

// Branding converts the reference data into generator branding.
func (r Reference) Branding() application.Branding {
	banks := make([]application.LogoRef, 0, len(r.BankLogos))
	for _, logo := range r.BankLogos {
		banks = append(banks, application.LogoRef(logo))
	}
	return application.Branding{
		Title:        r.Title,
		Municipality: layout.Municipality{Name: r.Municipality.Name, Lines: r.Municipality.Lines},
		HeaderLogo:   application.LogoRef(r.HeaderLogo),
		PaymentLogo:  application.LogoRef(r.PaymentLogo),
		BankLogos:    banks,
		Disclaimer:   r.Disclaimer,
		Banking: statement.BankingDetails{
			BankName:      r.Banking.BankName,
			AccountName:   r.Banking.AccountName,
			AccountNumber: r.Banking.AccountNumber,
			BranchCode:    r.Banking.BranchCode,
			AccountType:   r.Banking.AccountType,
		},
	}
}
