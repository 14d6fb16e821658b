// Package patterns holds the ordered company and statement-type tables used to
// classify documents, plus the curated folder alias tokens used when scoring
// destination folders.
package patterns

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// PatternGroup pairs a label with the lowercase substrings that identify it.
type PatternGroup struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Matches reports whether any pattern of the group is contained in text.
// text is expected to be lowercased already.
func (g PatternGroup) Matches(text string) bool {
	for _, p := range g.Patterns {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// AliasGroup maps a company or statement type to folder-name tokens.
type AliasGroup struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// FolderAliasTable holds the folder-name tokens used only by folder scoring.
type FolderAliasTable struct {
	Companies      []AliasGroup `yaml:"companies"`
	StatementTypes []AliasGroup `yaml:"statement_types"`
}

// Catalog is the immutable, explicitly ordered classification configuration.
// Order of groups is significant: the first matching group wins.
type Catalog struct {
	companies      []PatternGroup
	statementTypes []PatternGroup
	aliases        FolderAliasTable
	companyIdx     map[string][]string
	statementIdx   map[string][]string
}

type catalogFile struct {
	Companies      []PatternGroup   `yaml:"companies"`
	StatementTypes []PatternGroup   `yaml:"statement_types"`
	FolderAliases  FolderAliasTable `yaml:"folder_aliases"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// MustDefault is like Default but panics if the embedded catalog is invalid.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pattern catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from YAML. Labels and patterns are lowercased.
// Duplicate labels within a table are rejected.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse pattern catalog: %w", err)
	}
	if len(f.Companies) == 0 {
		return nil, fmt.Errorf("pattern catalog has no company groups")
	}
	if len(f.StatementTypes) == 0 {
		return nil, fmt.Errorf("pattern catalog has no statement type groups")
	}

	companies, err := normalizeGroups("companies", f.Companies)
	if err != nil {
		return nil, err
	}
	statements, err := normalizeGroups("statement_types", f.StatementTypes)
	if err != nil {
		return nil, err
	}

	return &Catalog{
		companies:      companies,
		statementTypes: statements,
		aliases:        f.FolderAliases,
		companyIdx:     aliasIndex(f.FolderAliases.Companies),
		statementIdx:   aliasIndex(f.FolderAliases.StatementTypes),
	}, nil
}

func normalizeGroups(table string, groups []PatternGroup) ([]PatternGroup, error) {
	seen := make(map[string]bool, len(groups))
	out := make([]PatternGroup, 0, len(groups))
	for _, g := range groups {
		name := strings.ToLower(strings.TrimSpace(g.Name))
		if name == "" {
			return nil, fmt.Errorf("%s: group without a name", table)
		}
		if seen[name] {
			return nil, fmt.Errorf("%s: duplicate group %q", table, name)
		}
		seen[name] = true

		patterns := make([]string, 0, len(g.Patterns))
		for _, p := range g.Patterns {
			if p = strings.ToLower(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		out = append(out, PatternGroup{Name: name, Patterns: patterns})
	}
	return out, nil
}

func aliasIndex(groups []AliasGroup) map[string][]string {
	idx := make(map[string][]string, len(groups))
	for _, g := range groups {
		name := strings.ToLower(strings.TrimSpace(g.Name))
		for _, a := range g.Aliases {
			if a = strings.ToLower(a); a != "" {
				idx[name] = append(idx[name], a)
			}
		}
	}
	return idx
}

// MatchCompany returns the first company whose patterns occur in text.
func (c *Catalog) MatchCompany(text string) string {
	return firstMatch(c.companies, strings.ToLower(text))
}

// MatchStatementType returns the first statement type whose patterns occur in text.
func (c *Catalog) MatchStatementType(text string) string {
	return firstMatch(c.statementTypes, strings.ToLower(text))
}

func firstMatch(groups []PatternGroup, text string) string {
	if text == "" {
		return ""
	}
	for _, g := range groups {
		if g.Matches(text) {
			return g.Name
		}
	}
	return ""
}

// Companies returns a copy of the company groups in table order.
func (c *Catalog) Companies() []PatternGroup {
	return append([]PatternGroup(nil), c.companies...)
}

// StatementTypes returns a copy of the statement-type groups in table order.
func (c *Catalog) StatementTypes() []PatternGroup {
	return append([]PatternGroup(nil), c.statementTypes...)
}

// CompanyAliases returns the folder-name tokens for company, or nil.
func (c *Catalog) CompanyAliases(company string) []string {
	return c.companyIdx[strings.ToLower(company)]
}

// StatementAliases returns the folder-name tokens for statementType, or nil.
func (c *Catalog) StatementAliases(statementType string) []string {
	return c.statementIdx[strings.ToLower(statementType)]
}
