package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/statement-organizer/internal/config"
	"fjacquet/statement-organizer/internal/drive"
	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/organizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Drive.CredentialsFile = filepath.Join(dir, "credentials.json")
	cfg.Drive.TokenFile = filepath.Join(dir, "token.json")
	cfg.Cache.File = filepath.Join(dir, "cache.json")
	cfg.Tracker.File = filepath.Join(dir, "processed.json")
	cfg.Organize.Extensions = []string{".pdf"}
	return cfg
}

type staticText string

func (s staticText) ExtractText([]byte) string { return string(s) }

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      func(t *testing.T) *config.Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "nil config",
			config:      func(*testing.T) *config.Config { return nil },
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:   "default catalog",
			config: testConfig,
		},
		{
			name: "missing pattern file",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(t)
				cfg.Patterns.File = filepath.Join(t.TempDir(), "missing.yaml")
				return cfg
			},
			expectError: true,
			errorMsg:    "pattern catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(tt.config(t), WithLogger(logging.NewMockLogger()))
			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, c)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c.GetCatalog())
			assert.NotNil(t, c.GetCache())
			assert.NotNil(t, c.GetTracker())
			assert.NotNil(t, c.GetClassifier())
		})
	}
}

func TestNewContainer_CustomCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Patterns.File = filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(cfg.Patterns.File, []byte(`
companies:
  - name: acme bank
    patterns: [acme]
statement_types:
  - name: bank statement
    patterns: [statement]
`), 0600))

	c, err := NewContainer(cfg, WithLogger(logging.Nop()))
	require.NoError(t, err)
	assert.Equal(t, "acme bank", c.GetCatalog().MatchCompany("ACME_statement.pdf"))
}

func TestContainer_ClassifierUsesPersistentCache(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainer(cfg, WithLogger(logging.Nop()), WithTextExtractor(staticText("")))
	require.NoError(t, err)

	identity := &models.DocumentIdentity{ID: "abc", Name: "chase_bank_statement.pdf"}
	got := c.GetClassifier().Classify(identity, identity.Name, nil)
	assert.Equal(t, "chase", got.Company)
	assert.FileExists(t, cfg.Cache.File)

	reopened, err := NewContainer(cfg, WithLogger(logging.Nop()))
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.GetCache().Len())
}

func TestContainer_DocumentStoreInjected(t *testing.T) {
	ds := drive.NewMemoryStore()
	c, err := NewContainer(testConfig(t), WithLogger(logging.Nop()), WithDocumentStore(ds))
	require.NoError(t, err)

	got, err := c.DocumentStore(context.Background())
	require.NoError(t, err)
	assert.Same(t, ds, got)

	m, err := c.Matcher(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, m)

	o, err := c.Organizer(context.Background(), organizer.Options{DryRun: true})
	require.NoError(t, err)
	assert.NotNil(t, o)
}

func TestContainer_DocumentStoreNeedsCredentials(t *testing.T) {
	c, err := NewContainer(testConfig(t), WithLogger(logging.Nop()))
	require.NoError(t, err)

	_, err = c.DocumentStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to authorize Google Drive access")

	_, err = c.Organizer(context.Background(), organizer.Options{})
	assert.Error(t, err)
}

func TestContainer_ConvenienceMethods(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainer(cfg)
	require.NoError(t, err)

	assert.NotNil(t, c.GetLogger())
	assert.Equal(t, cfg, c.GetConfig())
	assert.NoError(t, c.Close())
}
