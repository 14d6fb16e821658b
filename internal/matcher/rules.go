package matcher

import (
	"strings"

	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/patterns"
)

// Reason tags reported in MatchResult.Reasons.
const (
	ReasonCompanyAlias   = "company_alias"
	ReasonAccountDigits  = "account_digits"
	ReasonAccountSuffix  = "account_suffix"
	ReasonStatementAlias = "statement_alias"
)

// Rule weights.
const (
	WeightCompanyAlias   = 10
	WeightAccountDigits  = 50
	WeightAccountSuffix  = 20 // plus the suffix length
	WeightStatementAlias = 5
)

// Candidate is what a rule sees: the folder name plus the derived values of
// the classification being placed.
type Candidate struct {
	FolderName     string
	Classification models.Classification
	AccountDigits  string
}

// Rule scores one aspect of a folder. It returns the points awarded and the
// reason tag, or 0 when it does not apply.
type Rule struct {
	Name  string
	Apply func(aliases *patterns.Catalog, c Candidate) (int, string)
}

// Rules is the fixed, ordered scoring list.
var Rules = []Rule{
	{Name: "company alias", Apply: companyAliasRule},
	{Name: "account digits", Apply: accountDigitsRule},
	{Name: "statement alias", Apply: statementAliasRule},
}

// companyAliasRule awards once when any curated alias of the company occurs
// in the lowercased folder name.
func companyAliasRule(aliases *patterns.Catalog, c Candidate) (int, string) {
	if c.Classification.Company == "" {
		return 0, ""
	}
	lower := strings.ToLower(c.FolderName)
	for _, alias := range aliases.CompanyAliases(c.Classification.Company) {
		if strings.Contains(lower, alias) {
			return WeightCompanyAlias, ReasonCompanyAlias
		}
	}
	return 0, ""
}

// accountDigitsRule awards the full weight when the account digits occur in
// the folder name, otherwise 20+n for the longest suffix of length 3..5 found.
func accountDigitsRule(_ *patterns.Catalog, c Candidate) (int, string) {
	digits := c.AccountDigits
	if digits == "" {
		return 0, ""
	}
	if strings.Contains(c.FolderName, digits) {
		return WeightAccountDigits, ReasonAccountDigits
	}
	best := 0
	for n := 3; n <= 5 && n <= len(digits); n++ {
		if strings.Contains(c.FolderName, digits[len(digits)-n:]) {
			best = WeightAccountSuffix + n
		}
	}
	if best == 0 {
		return 0, ""
	}
	return best, ReasonAccountSuffix
}

func statementAliasRule(aliases *patterns.Catalog, c Candidate) (int, string) {
	if c.Classification.StatementType == "" {
		return 0, ""
	}
	lower := strings.ToLower(c.FolderName)
	for _, alias := range aliases.StatementAliases(c.Classification.StatementType) {
		if strings.Contains(lower, alias) {
			return WeightStatementAlias, ReasonStatementAlias
		}
	}
	return 0, ""
}
