package cmd

import (
    "martdrop/internal/config"
    "martdrop/internal/duckdb"
    "martdrop/pkg/models"
)

// openService connects to the configured database, resolving the
// hosted-variant token when one is set.
func openService(cfg *models.Config) (*duckdb.Service, error) {
    token, err := config.ResolveCloudToken(cfg)
    if err != nil {
        return nil, err
    }

    svcConfig := duckdb.Config{
        Path:    cfg.Warehouse.Path,
        Timeout: config.Timeout(cfg),
    }
    if token != "" {
        // Hosted variant: the path field names the cloud database.
        svcConfig.CloudToken = token
        svcConfig.CloudDatabase = cfg.Warehouse.Path
        svcConfig.Path = ""
    }

    svc := duckdb.NewService(svcConfig)
    if err := svc.Connect(); err != nil {
        return nil, err
    }
    return svc, nil
}
