package cmd

import (
    "fmt"

    "github.com/spf13/cobra"

    "martdrop/internal/mart"
    "martdrop/internal/ui"
)

var martCmd = &cobra.Command{
    Use:   "mart",
    Short: "Manage derived marts",
}

var martListCmd = &cobra.Command{
    Use:   "list",
    Short: "List the configured marts",
    RunE: func(cmd *cobra.Command, args []string) error {
        appConfig, err := loadConfig()
        if err != nil {
            ui.ShowError(err)
            return err
        }

        rows := make([][]string, 0, len(appConfig.Marts))
        for _, m := range appConfig.Marts {
            kind := m.Kind
            if kind == "" {
                kind = "custom"
            }
            rows = append(rows, []string{m.Name, kind, string(m.Strategy), mart.KeyColumn(m)})
        }
        ui.RenderTable([]string{"name", "kind", "strategy", "key"}, rows)
        return nil
    },
}

var martBuildCmd = &cobra.Command{
    Use:   "build [name]",
    Short: "Build one mart",
    Args:  cobra.ExactArgs(1),
    RunE: func(cmd *cobra.Command, args []string) error {
        appConfig, err := loadConfig()
        if err != nil {
            ui.ShowError(err)
            return err
        }

        selected := selectMarts(appConfig.Marts, args[:1])
        if len(selected) == 0 {
            err := fmt.Errorf("mart %s is not configured", args[0])
            ui.ShowError(err)
            return err
        }

        svc, err := openService(appConfig)
        if err != nil {
            ui.ShowError(err)
            return err
        }
        defer svc.Close()

        materializer := mart.NewMaterializer(svc, appConfig.Warehouse.Schema, appConfig.Warehouse.MartSchema)
        result, err := materializer.Build(selected[0])
        if err != nil {
            ui.ShowError(err)
            return err
        }

        ui.RenderChangeSummary(selected[0].Name, result.Updated, result.Inserted, result.Deleted)
        return nil
    },
}

func init() {
    rootCmd.AddCommand(martCmd)
    martCmd.AddCommand(martListCmd)
    martCmd.AddCommand(martBuildCmd)
}
