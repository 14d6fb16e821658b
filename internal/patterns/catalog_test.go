package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, c.Companies())
	assert.NotEmpty(t, c.StatementTypes())
	assert.Equal(t, "chase", c.Companies()[0].Name)
	assert.Equal(t, "bank statement", c.StatementTypes()[0].Name)
}

func TestCatalog_MatchCompany(t *testing.T) {
	c := MustDefault()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"filename", "chase_bank_statement_january_2024.pdf", "chase"},
		{"mixed case", "SCHWAB_investment_statement.pdf", "schwab"},
		{"alias in table", "amex_credit_card_statement.pdf", "american express"},
		{"no company", "random_document.pdf", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.MatchCompany(tt.text))
		})
	}
}

func TestCatalog_MatchStatementType(t *testing.T) {
	c := MustDefault()

	assert.Equal(t, "bank statement", c.MatchStatementType("chase_bank_statement_january_2024.pdf"))
	assert.Equal(t, "investment statement", c.MatchStatementType("schwab_investment_statement_account_1234-5678.pdf"))
	assert.Equal(t, "utility statement", c.MatchStatementType("verizon_phone_bill_2024-03.pdf"))
	assert.Equal(t, "", c.MatchStatementType("random_document.pdf"))
}

func TestParse_FirstGroupWins(t *testing.T) {
	data := []byte(`
companies:
  - name: Alpha
    patterns: [shared, alpha]
  - name: beta
    patterns: [shared, beta]
statement_types:
  - name: generic
    patterns: [doc]
`)
	c, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "alpha", c.MatchCompany("the SHARED token"))
	assert.Equal(t, "beta", c.MatchCompany("beta only"))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "companies: [unterminated"},
		{"no companies", "statement_types:\n  - name: a\n    patterns: [a]\n"},
		{"no statement types", "companies:\n  - name: a\n    patterns: [a]\n"},
		{"duplicate label", "companies:\n  - name: a\n    patterns: [a]\n  - name: A\n    patterns: [b]\nstatement_types:\n  - name: s\n    patterns: [s]\n"},
		{"unnamed group", "companies:\n  - patterns: [a]\nstatement_types:\n  - name: s\n    patterns: [s]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestCatalog_Aliases(t *testing.T) {
	c := MustDefault()

	assert.Contains(t, c.CompanyAliases("Chase"), "chase")
	assert.Contains(t, c.StatementAliases("credit card statement"), "card")
	assert.Nil(t, c.CompanyAliases("no such company"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultCatalog, 0600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(MustDefault().Companies()), len(c.Companies()))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCompanies_ReturnsCopy(t *testing.T) {
	c := MustDefault()
	groups := c.Companies()
	groups[0].Name = "mutated"

	assert.Equal(t, "chase", c.Companies()[0].Name)
}
