package config

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/statement-organizer/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	chdirTemp(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "credentials.json", config.Drive.CredentialsFile)
	assert.Equal(t, "token.json", config.Drive.TokenFile)
	assert.Empty(t, config.Drive.SourceFolderID)
	assert.Empty(t, config.Drive.DestFolderID)
	assert.Equal(t, "Monthly Statements", config.Drive.SourceFolderName)
	assert.Equal(t, "Statements by Account", config.Drive.DestFolderName)
	assert.Equal(t, "file_mapping_cache.json", config.Cache.File)
	assert.Equal(t, "file_mapping_export.json", config.Cache.ExportFile)
	assert.Equal(t, "processed_files.json", config.Tracker.File)
	assert.Empty(t, config.Patterns.File)
	assert.Equal(t, []string{".pdf"}, config.Organize.Extensions)
	assert.False(t, config.Organize.DryRun)
	assert.False(t, config.Organize.TagAccountFolders)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	chdirTemp(t)

	testEnvVars := map[string]string{
		"STMT_LOG_LEVEL":                    "debug",
		"STMT_LOG_FORMAT":                   "json",
		"STMT_CACHE_FILE":                   "/tmp/cache.json",
		"STMT_ORGANIZE_DRY_RUN":             "true",
		"STMT_ORGANIZE_TAG_ACCOUNT_FOLDERS": "true",
		"SOURCE_FOLDER_ID":                  "src-123",
		"DEST_FOLDER_ID":                    "dst-456",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "/tmp/cache.json", config.Cache.File)
	assert.True(t, config.Organize.DryRun)
	assert.True(t, config.Organize.TagAccountFolders)
	assert.Equal(t, "src-123", config.Drive.SourceFolderID)
	assert.Equal(t, "dst-456", config.Drive.DestFolderID)
}

func TestInitializeConfig_PrefixedFolderIDWins(t *testing.T) {
	clearTestEnvVars(t)
	chdirTemp(t)

	t.Setenv("STMT_DRIVE_SOURCE_FOLDER_ID", "prefixed")
	t.Setenv("SOURCE_FOLDER_ID", "plain")

	config, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, "prefixed", config.Drive.SourceFolderID)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := chdirTemp(t)

	configContent := `
log:
  level: "warn"
  format: "json"
drive:
  source_folder_name: "Inbox"
  dest_folder_id: "dest-1"
organize:
  extensions: ["PDF", ".txt"]
  tag_account_folders: true
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0644))

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "Inbox", config.Drive.SourceFolderName)
	assert.Equal(t, "dest-1", config.Drive.DestFolderID)
	assert.Equal(t, []string{".pdf", ".txt"}, config.Organize.Extensions)
	assert.True(t, config.Organize.TagAccountFolders)
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := chdirTemp(t)

	configContent := `
log:
  level: "warn"
cache:
  file: "from-file.json"
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0644))
	t.Setenv("STMT_LOG_LEVEL", "error")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level)          // env var wins
	assert.Equal(t, "from-file.json", config.Cache.File) // config file value
}

func TestLoad_ExplicitFile(t *testing.T) {
	clearTestEnvVars(t)
	chdirTemp(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracker:\n  file: ledger.json\n"), 0644))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ledger.json", config.Tracker.File)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{
			name:         "invalid log level",
			modifyConfig: func(c *Config) { c.Log.Level = "invalid" },
			expectError:  "invalid log level",
		},
		{
			name:         "invalid log format",
			modifyConfig: func(c *Config) { c.Log.Format = "invalid" },
			expectError:  "invalid log format",
		},
		{
			name: "no source folder",
			modifyConfig: func(c *Config) {
				c.Drive.SourceFolderID = ""
				c.Drive.SourceFolderName = ""
			},
			expectError: "drive.source_folder_id",
		},
		{
			name: "no destination folder",
			modifyConfig: func(c *Config) {
				c.Drive.DestFolderID = ""
				c.Drive.DestFolderName = ""
			},
			expectError: "drive.dest_folder_id",
		},
		{
			name:         "empty cache file",
			modifyConfig: func(c *Config) { c.Cache.File = "" },
			expectError:  "cache.file",
		},
		{
			name:         "empty tracker file",
			modifyConfig: func(c *Config) { c.Tracker.File = "" },
			expectError:  "tracker.file",
		},
		{
			name:         "no extensions",
			modifyConfig: func(c *Config) { c.Organize.Extensions = nil },
			expectError:  "organize.extensions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.modifyConfig(config)

			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	assert.NoError(t, validateConfig(validConfig()))
}

func TestNormalizeExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf", ".txt"}, normalizeExtensions([]string{" PDF ", "", ".TXT"}))
	assert.Empty(t, normalizeExtensions(nil))
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	config := validConfig()
	config.Log.Level = "debug"
	config.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(config)
	require.NotNil(t, logger)
	_, ok := logger.(*logging.LogrusAdapter)
	assert.True(t, ok)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("STMT_TEST_FROM_DOTENV=loaded\n"), 0600))
	t.Setenv("STMT_TEST_FROM_DOTENV", "")
	require.NoError(t, os.Unsetenv("STMT_TEST_FROM_DOTENV"))

	logger := logging.NewMockLogger()
	used := loadEnvFile(logger, filepath.Join(dir, "missing.env"), envFile)

	assert.Equal(t, envFile, used)
	assert.Equal(t, "loaded", GetEnv("STMT_TEST_FROM_DOTENV", "fallback"))
	assert.True(t, logger.HasEntry("DEBUG", "Loaded environment variables"))
}

func TestLoadEnvFile_NoneFound(t *testing.T) {
	logger := logging.NewMockLogger()
	assert.Empty(t, loadEnvFile(logger, filepath.Join(t.TempDir(), ".env")))
	assert.True(t, logger.HasEntry("DEBUG", "No .env file found, using environment variables"))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("STMT_TEST_GETENV", "value")
	assert.Equal(t, "value", GetEnv("STMT_TEST_GETENV", "fallback"))
	assert.Equal(t, "fallback", GetEnv("STMT_TEST_GETENV_UNSET", "fallback"))
}

func validConfig() *Config {
	c := &Config{}
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Drive.SourceFolderName = "Monthly Statements"
	c.Drive.DestFolderName = "Statements by Account"
	c.Cache.File = "cache.json"
	c.Tracker.File = "processed.json"
	c.Organize.Extensions = []string{".pdf"}
	return c
}

// chdirTemp moves into an empty directory so no stray config.yaml is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(originalDir)
	})
	return dir
}

// clearTestEnvVars clears environment variables that might interfere with tests
func clearTestEnvVars(t *testing.T) {
	envVars := []string{
		"STMT_LOG_LEVEL",
		"STMT_LOG_FORMAT",
		"STMT_DRIVE_CREDENTIALS_FILE",
		"STMT_DRIVE_TOKEN_FILE",
		"STMT_DRIVE_SOURCE_FOLDER_ID",
		"STMT_DRIVE_DEST_FOLDER_ID",
		"STMT_DRIVE_SOURCE_FOLDER_NAME",
		"STMT_DRIVE_DEST_FOLDER_NAME",
		"STMT_CACHE_FILE",
		"STMT_CACHE_EXPORT_FILE",
		"STMT_TRACKER_FILE",
		"STMT_PATTERNS_FILE",
		"STMT_ORGANIZE_EXTENSIONS",
		"STMT_ORGANIZE_DRY_RUN",
		"STMT_ORGANIZE_TAG_ACCOUNT_FOLDERS",
		"SOURCE_FOLDER_ID",
		"DEST_FOLDER_ID",
	}

	for _, envVar := range envVars {
		t.Setenv(envVar, "")
		if err := os.Unsetenv(envVar); err != nil {
			t.Fatalf("failed to unset %s: %v", envVar, err)
		}
	}
}
