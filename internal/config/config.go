package config

import (
    "fmt"
    "os"
    "path/filepath"
    "time"

    "martdrop/internal/common"
    "martdrop/pkg/errors"
    "martdrop/pkg/models"
    "gopkg.in/yaml.v3"
)

const (
    DefaultSchema     = "warehouse"
    DefaultMartSchema = "marts"
    DefaultTimeout    = 5 * time.Minute
)

func GetConfigPath() string {
    // Check for environment variable first
    if configPath := os.Getenv("MARTDROP_CONFIG"); configPath != "" {
        return filepath.Dir(configPath)
    }
    home, _ := os.UserHomeDir()
    return filepath.Join(home, ".martdrop")
}

func GetConfigFile() string {
    // Check for environment variable first
    if configFile := os.Getenv("MARTDROP_CONFIG"); configFile != "" {
        // Validate the path to prevent directory traversal
        cleaned, err := common.CleanPath(configFile)
        if err != nil {
            // Fall back to default if invalid
            return filepath.Join(GetConfigPath(), "config.yaml")
        }
        return cleaned
    }
    return filepath.Join(GetConfigPath(), "config.yaml")
}

func Load() (*models.Config, error) {
    configFile := GetConfigFile()

    cleanedPath, err := common.CleanPath(configFile)
    if err != nil {
        return nil, fmt.Errorf("invalid config file path: %w", err)
    }

    if _, err := os.Stat(cleanedPath); os.IsNotExist(err) {
        return &models.Config{}, nil
    }

    data, err := os.ReadFile(cleanedPath) // #nosec G304 - path is validated
    if err != nil {
        return nil, fmt.Errorf("failed to read config file: %w", err)
    }

    var config models.Config
    if err := yaml.Unmarshal(data, &config); err != nil {
        return nil, fmt.Errorf("failed to unmarshal config: %w", err)
    }

    applyDefaults(&config)
    return &config, nil
}

func Save(config *models.Config) error {
    configPath := GetConfigPath()
    if err := os.MkdirAll(configPath, common.DirPermissionSecure); err != nil {
        return fmt.Errorf("failed to create config directory: %w", err)
    }

    data, err := yaml.Marshal(config)
    if err != nil {
        return fmt.Errorf("failed to marshal config: %w", err)
    }

    if err := os.WriteFile(GetConfigFile(), data, common.FilePermissionSecure); err != nil {
        return fmt.Errorf("failed to write config file: %w", err)
    }

    return nil
}

func Exists() bool {
    _, err := os.Stat(GetConfigFile())
    return err == nil
}

func applyDefaults(config *models.Config) {
    if config.Warehouse.Schema == "" {
        config.Warehouse.Schema = DefaultSchema
    }
    if config.Warehouse.MartSchema == "" {
        config.Warehouse.MartSchema = DefaultMartSchema
    }
    for i := range config.Sources {
        if config.Sources[i].Landing == "" {
            config.Sources[i].Landing = "stg_" + config.Sources[i].Name
        }
    }
    for i := range config.Marts {
        if config.Marts[i].Strategy == "" {
            config.Marts[i].Strategy = models.StrategyReplace
        }
    }
}

// Timeout returns the configured per-statement timeout, or the default.
func Timeout(config *models.Config) time.Duration {
    if config.Warehouse.Timeout == "" {
        return DefaultTimeout
    }
    d, err := time.ParseDuration(config.Warehouse.Timeout)
    if err != nil {
        return DefaultTimeout
    }
    return d
}

// Validate checks the config for the fields a build needs.
func Validate(config *models.Config) error {
    if len(config.Sources) == 0 {
        return errors.ConfigError("no sources configured", "sources")
    }
    for _, s := range config.Sources {
        if s.Name == "" {
            return errors.ValidationError("sources", s.URL, "source missing name")
        }
        if s.URL == "" {
            return errors.ValidationError(fmt.Sprintf("sources.%s.url", s.Name), s.URL, "source missing url")
        }
    }
    for _, m := range config.Marts {
        // Built-in kinds carry default key columns; custom queries must
        // name theirs.
        if m.Strategy == models.StrategyReconcile && m.Key == "" && m.Kind == "" {
            return errors.ValidationError(fmt.Sprintf("marts.%s.key", m.Name), m.Key,
                "reconcile strategy set but no key column given")
        }
        if m.Kind == "" && m.Query == "" {
            return errors.ValidationError("marts."+m.Name, m.Kind, "mart has neither a kind nor a query")
        }
    }
    return nil
}
