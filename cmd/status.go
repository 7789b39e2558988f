package cmd

import (
    "database/sql"
    "fmt"

    "github.com/spf13/cobra"

    "martdrop/internal/duckdb"
    "martdrop/internal/ui"
    "martdrop/internal/warehouse"
    "martdrop/pkg/models"
)

var statusCmd = &cobra.Command{
    Use:   "status",
    Short: "Show warehouse and mart row counts",
    RunE:  runStatus,
}

func init() {
    rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
    appConfig, err := loadConfig()
    if err != nil {
        ui.ShowError(err)
        return err
    }

    svc, err := openService(appConfig)
    if err != nil {
        ui.ShowError(err)
        return err
    }
    defer svc.Close()

    ui.ShowHeader("martdrop - Status")
    ui.PrintKeyValue("Database", appConfig.Warehouse.Path)
    ui.PrintKeyValue("Schema", appConfig.Warehouse.Schema)

    var rows [][]string
    for _, table := range warehouse.Tables() {
        rows = append(rows, append(tableRow(svc, appConfig.Warehouse.Schema, table), "-"))
    }
    for _, m := range appConfig.Marts {
        row := tableRow(svc, appConfig.Warehouse.MartSchema, m.Name)
        rows = append(rows, append(row, lastRefresh(svc, appConfig.Warehouse.MartSchema, m)))
    }

    ui.RenderTable([]string{"schema", "table", "rows", "last refresh"}, rows)
    return nil
}

// lastRefresh reports the newest reconciliation timestamp of a mart.
// Replace-strategy marts carry no timestamp column.
func lastRefresh(svc *duckdb.Service, schema string, m models.Mart) string {
    if m.Strategy != models.StrategyReconcile {
        return "-"
    }
    if exists, err := svc.TableExists(schema, m.Name); err != nil || !exists {
        return "-"
    }
    var last sql.NullString
    row := svc.QueryRow(fmt.Sprintf("SELECT max(last_updated) FROM %s.%s", schema, m.Name))
    if err := row.Scan(&last); err != nil || !last.Valid {
        return "-"
    }
    return last.String
}

func tableRow(svc interface {
    TableExists(schema, table string) (bool, error)
    RowCount(schema, table string) (int64, error)
}, schema, table string) []string {
    exists, err := svc.TableExists(schema, table)
    if err != nil || !exists {
        return []string{schema, table, "-"}
    }
    count, err := svc.RowCount(schema, table)
    if err != nil {
        return []string{schema, table, "-"}
    }
    return []string{schema, table, fmt.Sprintf("%d", count)}
}
