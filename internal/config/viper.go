// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"os"
	"strings"

	"fjacquet/statement-organizer/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Drive struct {
		CredentialsFile  string `mapstructure:"credentials_file" yaml:"credentials_file"`
		TokenFile        string `mapstructure:"token_file" yaml:"token_file"`
		SourceFolderID   string `mapstructure:"source_folder_id" yaml:"source_folder_id"`
		DestFolderID     string `mapstructure:"dest_folder_id" yaml:"dest_folder_id"`
		SourceFolderName string `mapstructure:"source_folder_name" yaml:"source_folder_name"`
		DestFolderName   string `mapstructure:"dest_folder_name" yaml:"dest_folder_name"`
	} `mapstructure:"drive" yaml:"drive"`

	Cache struct {
		File       string `mapstructure:"file" yaml:"file"`
		ExportFile string `mapstructure:"export_file" yaml:"export_file"`
	} `mapstructure:"cache" yaml:"cache"`

	Tracker struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"tracker" yaml:"tracker"`

	Patterns struct {
		// File overrides the built-in catalog when set.
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"patterns" yaml:"patterns"`

	Organize struct {
		Extensions        []string `mapstructure:"extensions" yaml:"extensions"`
		DryRun            bool     `mapstructure:"dry_run" yaml:"dry_run"`
		TagAccountFolders bool     `mapstructure:"tag_account_folders" yaml:"tag_account_folders"`
	} `mapstructure:"organize" yaml:"organize"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load is InitializeConfig with an explicit config file. An empty configFile
// searches the default locations; a named file that cannot be read is an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.statement-organizer")
		v.AddConfigPath(".statement-organizer")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("STMT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. Folder ids are also accepted under their historical unprefixed names
	if err := v.BindEnv("drive.source_folder_id", "STMT_DRIVE_SOURCE_FOLDER_ID", "SOURCE_FOLDER_ID"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind SOURCE_FOLDER_ID environment variable: %v\n", err)
	}
	if err := v.BindEnv("drive.dest_folder_id", "STMT_DRIVE_DEST_FOLDER_ID", "DEST_FOLDER_ID"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind DEST_FOLDER_ID environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Organize.Extensions = normalizeExtensions(config.Organize.Extensions)

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("drive.credentials_file", "credentials.json")
	v.SetDefault("drive.token_file", "token.json")
	v.SetDefault("drive.source_folder_id", "")
	v.SetDefault("drive.dest_folder_id", "")
	v.SetDefault("drive.source_folder_name", "Monthly Statements")
	v.SetDefault("drive.dest_folder_name", "Statements by Account")

	v.SetDefault("cache.file", "file_mapping_cache.json")
	v.SetDefault("cache.export_file", "file_mapping_export.json")

	v.SetDefault("tracker.file", "processed_files.json")

	v.SetDefault("patterns.file", "")

	v.SetDefault("organize.extensions", []string{".pdf"})
	v.SetDefault("organize.dry_run", false)
	v.SetDefault("organize.tag_account_folders", false)
}

// normalizeExtensions lowercases each extension and ensures a leading dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Drive.SourceFolderID == "" && config.Drive.SourceFolderName == "" {
		return fmt.Errorf("drive.source_folder_id or drive.source_folder_name is required")
	}
	if config.Drive.DestFolderID == "" && config.Drive.DestFolderName == "" {
		return fmt.Errorf("drive.dest_folder_id or drive.dest_folder_name is required")
	}

	if config.Cache.File == "" {
		return fmt.Errorf("cache.file must not be empty")
	}
	if config.Tracker.File == "" {
		return fmt.Errorf("tracker.file must not be empty")
	}

	if len(config.Organize.Extensions) == 0 {
		return fmt.Errorf("organize.extensions must list at least one extension")
	}

	return nil
}

// ConfigureLoggingFromConfig builds the application logger from the Config struct
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}
