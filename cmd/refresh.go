package cmd

import (
    "fmt"

    "github.com/spf13/cobra"

    "martdrop/internal/config"
    "martdrop/internal/mart"
    "martdrop/internal/reconcile"
    "martdrop/internal/ui"
    "martdrop/internal/warehouse"
    "martdrop/pkg/models"
)

var (
    refreshMarts    []string
    refreshNoExtract bool
)

var refreshCmd = &cobra.Command{
    Use:   "refresh",
    Short: "Incrementally refresh the warehouse and marts",
    Long: `Stage a fresh extract, grow the dimensions with any new members,
then reconcile the fact table and each mart against the staged
snapshot: changed rows are updated, new rows inserted, vanished rows
deleted, atomically per table. Re-running with an unchanged source is
a no-op.`,
    RunE: runRefresh,
}

func init() {
    rootCmd.AddCommand(refreshCmd)

    refreshCmd.Flags().StringSliceVar(&refreshMarts, "mart", nil, "Refresh only the named marts")
    refreshCmd.Flags().BoolVar(&refreshNoExtract, "no-extract", false, "Reconcile against the already-staged extract")
}

func runRefresh(cmd *cobra.Command, args []string) error {
    appConfig, err := loadConfig()
    if err != nil {
        ui.ShowError(fmt.Errorf("failed to load configuration: %w", err))
        return err
    }
    if err := config.Validate(appConfig); err != nil {
        ui.ShowError(err)
        return err
    }

    svc, err := openService(appConfig)
    if err != nil {
        ui.ShowError(err)
        return err
    }
    defer svc.Close()

    ui.ShowHeader("martdrop - Incremental Refresh")

    builder := warehouse.NewBuilder(svc, appConfig.Warehouse.Schema)

    if !refreshNoExtract {
        spinner := ui.NewSpinner("Staging fresh extracts")
        spinner.Start()
        if err := builder.StageAll(appConfig.Sources); err != nil {
            spinner.Stop(false, "Staging failed")
            ui.ShowError(err)
            return err
        }
        if err := builder.AppendDimensions(); err != nil {
            spinner.Stop(false, "Dimension refresh failed")
            ui.ShowError(err)
            return err
        }
        spinner.Stop(true, "Extracts staged, dimensions current")
    }

    // The bridge references the fact, so it empties before the fact
    // reconciliation and reloads once the fact is current.
    if err := builder.ClearBridge(); err != nil {
        ui.ShowError(err)
        return err
    }

    reconciler := reconcile.New(svc)
    factResult, err := reconciler.Run(reconcile.Spec{
        Schema:    appConfig.Warehouse.Schema,
        Target:    "fact_job",
        Key:       warehouse.FactKey,
        Columns:   warehouse.FactColumns(),
        SourceSQL: warehouse.RenderFactSource(appConfig.Warehouse.Schema, warehouse.JobsStaging),
    })
    if err != nil {
        ui.ShowError(err)
        return err
    }
    ui.RenderChangeSummary("fact_job", factResult.Updated, factResult.Inserted, factResult.Deleted)

    if err := builder.ReloadBridge(); err != nil {
        ui.ShowError(err)
        return err
    }

    marts := selectMarts(appConfig.Marts, refreshMarts)
    if len(marts) == 0 {
        ui.ShowWarning("No marts selected for refresh")
        return nil
    }

    materializer := mart.NewMaterializer(svc, appConfig.Warehouse.Schema, appConfig.Warehouse.MartSchema)

    ui.PrintSection("Mart reconciliation")
    for _, m := range marts {
        result, err := materializer.Build(m)
        if err != nil {
            ui.ShowError(err)
            return err
        }
        ui.RenderChangeSummary(m.Name, result.Updated, result.Inserted, result.Deleted)
    }

    ui.ShowSuccess("Refresh complete")
    return nil
}

func selectMarts(configured []models.Mart, names []string) []models.Mart {
    if len(names) == 0 {
        return configured
    }
    wanted := make(map[string]bool, len(names))
    for _, name := range names {
        wanted[name] = true
    }
    var selected []models.Mart
    for _, m := range configured {
        if wanted[m.Name] {
            selected = append(selected, m)
        }
    }
    return selected
}
