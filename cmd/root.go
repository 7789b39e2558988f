package cmd

import (
    "fmt"
    "os"
    "strings"

    "github.com/spf13/cobra"
    "github.com/spf13/viper"

    "martdrop/internal/config"
    "martdrop/pkg/models"
)

var rootCmd = &cobra.Command{
    Use:   "martdrop",
    Short: "Build and refresh a star-schema warehouse in DuckDB",
    Long: `martdrop - A CLI tool that builds a star-schema data warehouse of
job postings in DuckDB from remote CSV extracts, and keeps derived
marts in agreement with the warehouse through incremental
reconciliation.`,
}

func Execute() {
    if err := rootCmd.Execute(); err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}

func init() {
    cobra.OnInitialize(initConfig)
}

func initConfig() {
    viper.SetConfigName("config")
    viper.SetConfigType("yaml")
    viper.AddConfigPath(".")

    home, err := os.UserHomeDir()
    if err == nil {
        viper.AddConfigPath(home + "/.martdrop")
    }

    viper.SetEnvPrefix("martdrop")
    viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    viper.AutomaticEnv()

    if err := viper.ReadInConfig(); err != nil {
        // Config file not found is okay for now
    }
}

// loadConfig reads the config file and overlays the warehouse keys
// viper resolves, so a config.yaml in the working directory or a
// MARTDROP_WAREHOUSE_* environment variable overrides the stored file.
func loadConfig() (*models.Config, error) {
    cfg, err := config.Load()
    if err != nil {
        return nil, err
    }

    if v := viper.GetString("warehouse.path"); v != "" {
        cfg.Warehouse.Path = v
    }
    if v := viper.GetString("warehouse.schema"); v != "" {
        cfg.Warehouse.Schema = v
    }
    if v := viper.GetString("warehouse.mart_schema"); v != "" {
        cfg.Warehouse.MartSchema = v
    }
    if v := viper.GetString("warehouse.timeout"); v != "" {
        cfg.Warehouse.Timeout = v
    }

    return cfg, nil
}
