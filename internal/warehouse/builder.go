package warehouse

import (
	"fmt"

	"martdrop/internal/duckdb"
	"martdrop/pkg/errors"
	"martdrop/pkg/models"
)

// Landing table names the population statements expect. Sources named
// "jobs" and "skills" land here by default.
const (
	JobsStaging   = "stg_jobs"
	SkillsStaging = "stg_skills"
)

// Builder creates and populates the star schema.
type Builder struct {
	svc    *duckdb.Service
	schema string
}

// NewBuilder creates a Builder targeting the given schema.
func NewBuilder(svc *duckdb.Service, schema string) *Builder {
	return &Builder{svc: svc, schema: schema}
}

// CreateSchema declares the star-schema tables. Idempotent.
func (b *Builder) CreateSchema() error {
	if err := b.svc.ExecuteSQL(RenderDDL(b.schema)); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to create warehouse schema").
			WithContext("schema", b.schema)
	}
	return nil
}

// Stage pulls one remote CSV extract into its landing table, replacing
// any previous extract. No transformation happens here.
func (b *Builder) Stage(source models.Source) error {
	if err := b.svc.ExecuteSQL(RenderStaging(b.schema, source.Landing, source.URL)); err != nil {
		return errors.SourceError(
			fmt.Sprintf("Failed to stage source %s", source.Name),
			source.URL, err,
		)
	}
	return nil
}

// StageAll stages every configured source in order.
func (b *Builder) StageAll(sources []models.Source) error {
	for _, source := range sources {
		if err := b.Stage(source); err != nil {
			return err
		}
	}
	return nil
}

// LoadDimensions rebuilds both dimensions from the staged extracts.
// The truncate runs in the same transaction, so a failed load leaves
// the previous dimension contents intact.
func (b *Builder) LoadDimensions() error {
	script := RenderTruncate(b.schema) + ";\n" +
		RenderDimensionLoad(b.schema, "dim_company", "company_id", "company_name", JobsStaging, "company_name") + ";\n" +
		RenderDimensionLoad(b.schema, "dim_skill", "skill_id", "skill_name", SkillsStaging, "skill_name")

	if err := b.svc.ExecuteSQL(script); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to load dimensions")
	}
	return nil
}

// AppendDimensions grows both dimensions with natural keys that
// appeared in a fresh extract. Existing surrogate keys are untouched,
// which keeps fact rows from prior refreshes valid.
func (b *Builder) AppendDimensions() error {
	script := RenderDimensionAppend(b.schema, "dim_company", "company_id", "company_name", JobsStaging, "company_name") + ";\n" +
		RenderDimensionAppend(b.schema, "dim_skill", "skill_id", "skill_name", SkillsStaging, "skill_name")

	if err := b.svc.ExecuteSQL(script); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to append dimension members")
	}
	return nil
}

// ReloadBridge rebuilds the job/skill bridge from the staged extract.
// The bridge has no measures of its own, so a full reload is the
// incremental refresh; it must run after the fact table is current so
// the FK joins resolve.
func (b *Builder) ReloadBridge() error {
	script := fmt.Sprintf("DELETE FROM %s.bridge_job_skill", b.schema) + ";\n" +
		RenderBridgeLoad(b.schema, SkillsStaging)

	if err := b.svc.ExecuteSQL(script); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to reload bridge table")
	}
	return nil
}

// ClearBridge empties the bridge so fact rows that vanished from the
// source can be deleted without violating its foreign keys.
func (b *Builder) ClearBridge() error {
	if err := b.svc.ExecuteSQL(fmt.Sprintf("DELETE FROM %s.bridge_job_skill", b.schema)); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to clear bridge table")
	}
	return nil
}

// LoadFacts populates the fact and bridge tables by joining staged rows
// to the dimensions. Dimensions must already be loaded.
func (b *Builder) LoadFacts() error {
	script := RenderFactLoad(b.schema, JobsStaging) + ";\n" +
		RenderBridgeLoad(b.schema, SkillsStaging)

	if err := b.svc.ExecuteSQL(script); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to load fact and bridge tables")
	}
	return nil
}

// Tables lists the star-schema tables in dependency order.
func Tables() []string {
	return []string{"dim_company", "dim_skill", "fact_job", "bridge_job_skill"}
}
