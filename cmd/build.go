package cmd

import (
    "fmt"

    "github.com/spf13/cobra"

    "martdrop/internal/config"
    "martdrop/internal/mart"
    "martdrop/internal/pipeline"
    "martdrop/internal/ui"
    "martdrop/internal/warehouse"
    "martdrop/pkg/models"
)

var (
    buildDryRun    bool
    buildWithMarts bool
    buildYes       bool
    buildOnly      []string
    buildFrom      string
    buildSkip      []string
)

var buildCmd = &cobra.Command{
    Use:   "build",
    Short: "Build the star-schema warehouse",
    Long: `Run the build sequence: declare the star schema, stage the remote
CSV extracts, load the dimensions with surrogate keys, then populate
the fact and bridge tables. Stages run in order and the build halts
on the first error. Every stage is idempotent, so a failed build is
simply re-run.`,
    RunE: runBuild,
}

func init() {
    rootCmd.AddCommand(buildCmd)

    buildCmd.Flags().BoolVarP(&buildDryRun, "dry-run", "d", false, "Print the planned SQL without executing")
    buildCmd.Flags().BoolVarP(&buildWithMarts, "marts", "m", false, "Also build the configured marts")
    buildCmd.Flags().BoolVarP(&buildYes, "yes", "y", false, "Skip the rebuild confirmation")
    buildCmd.Flags().StringSliceVar(&buildOnly, "only", nil, "Run only the named stages")
    buildCmd.Flags().StringVar(&buildFrom, "from", "", "Start at the named stage")
    buildCmd.Flags().StringSliceVar(&buildSkip, "skip", nil, "Skip the named stages")
}

func runBuild(cmd *cobra.Command, args []string) error {
    appConfig, err := loadConfig()
    if err != nil {
        ui.ShowError(fmt.Errorf("failed to load configuration: %w", err))
        return err
    }
    if err := config.Validate(appConfig); err != nil {
        ui.ShowError(err)
        return err
    }

    if buildDryRun || appConfig.Pipeline.DryRun {
        return printBuildPlan(appConfig)
    }

    svc, err := openService(appConfig)
    if err != nil {
        ui.ShowError(err)
        return err
    }
    defer svc.Close()

    if !buildYes {
        if ok, err := confirmRebuild(svc, appConfig.Warehouse.Schema); err != nil {
            ui.ShowError(err)
            return err
        } else if !ok {
            ui.ShowInfo("Build cancelled")
            return nil
        }
    }

    builder := warehouse.NewBuilder(svc, appConfig.Warehouse.Schema)
    materializer := mart.NewMaterializer(svc, appConfig.Warehouse.Schema, appConfig.Warehouse.MartSchema)

    ui.ShowHeader("martdrop - Warehouse Build")

    stages := []pipeline.Stage{
        {Name: "schema", Description: "Declaring star schema", Run: builder.CreateSchema},
        {Name: "extract", Description: "Staging remote extracts", Run: func() error {
            return builder.StageAll(appConfig.Sources)
        }},
        {Name: "dimensions", Description: "Loading dimensions", Run: builder.LoadDimensions},
        {Name: "facts", Description: "Loading fact and bridge tables", Run: builder.LoadFacts},
    }
    if buildWithMarts {
        stages = append(stages, pipeline.Stage{
            Name: "marts", Description: "Building marts", Run: func() error {
                _, err := materializer.BuildAll(appConfig.Marts)
                return err
            },
        })
    }

    runner := pipeline.NewRunner(stages)
    results, err := runner.Run(pipeline.Options{
        Only: buildOnly,
        From: buildFrom,
        Skip: append(buildSkip, appConfig.Pipeline.Skip...),
    })
    if err != nil {
        ui.ShowError(err)
        return err
    }

    ui.ShowSuccess(fmt.Sprintf("Build finished: %d stages", len(results)))
    return nil
}

// confirmRebuild prompts before replacing a warehouse that already
// holds data. A fresh database builds without a prompt.
func confirmRebuild(svc interface {
    TableExists(schema, table string) (bool, error)
    RowCount(schema, table string) (int64, error)
}, schema string) (bool, error) {
    exists, err := svc.TableExists(schema, "fact_job")
    if err != nil || !exists {
        return true, nil
    }
    count, err := svc.RowCount(schema, "fact_job")
    if err != nil || count == 0 {
        return true, nil
    }
    return ui.Confirm(fmt.Sprintf("Warehouse already holds %d fact rows; rebuild replaces them. Continue?", count))
}

// printBuildPlan renders every statement the build would execute.
func printBuildPlan(appConfig *models.Config) error {
    schema := appConfig.Warehouse.Schema

    ui.PrintSection("schema")
    fmt.Println(warehouse.RenderDDL(schema))

    ui.PrintSection("extract")
    for _, source := range appConfig.Sources {
        fmt.Println(warehouse.RenderStaging(schema, source.Landing, source.URL) + ";")
    }

    ui.PrintSection("dimensions")
    fmt.Println(warehouse.RenderTruncate(schema) + ";")
    fmt.Println(warehouse.RenderDimensionLoad(schema, "dim_company", "company_id", "company_name", warehouse.JobsStaging, "company_name") + ";")
    fmt.Println(warehouse.RenderDimensionLoad(schema, "dim_skill", "skill_id", "skill_name", warehouse.SkillsStaging, "skill_name") + ";")

    ui.PrintSection("facts")
    fmt.Println(warehouse.RenderFactLoad(schema, warehouse.JobsStaging) + ";")
    fmt.Println(warehouse.RenderBridgeLoad(schema, warehouse.SkillsStaging) + ";")

    if buildWithMarts {
        ui.PrintSection("marts")
        for _, m := range appConfig.Marts {
            query, err := mart.Query(m, schema)
            if err != nil {
                return err
            }
            fmt.Println(mart.RenderReplace(appConfig.Warehouse.MartSchema, m.Name, query) + ";")
        }
    }

    return nil
}
