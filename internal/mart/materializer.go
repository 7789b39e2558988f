package mart

import (
	"fmt"

	"martdrop/internal/duckdb"
	"martdrop/internal/reconcile"
	"martdrop/pkg/errors"
	"martdrop/pkg/models"
)

// Materializer builds marts in their own schema, either by full
// rebuild or by reconciling against a fresh snapshot.
type Materializer struct {
	svc             *duckdb.Service
	reconciler      *reconcile.Reconciler
	warehouseSchema string
	martSchema      string
}

// NewMaterializer creates a Materializer.
func NewMaterializer(svc *duckdb.Service, warehouseSchema, martSchema string) *Materializer {
	return &Materializer{
		svc:             svc,
		reconciler:      reconcile.New(svc),
		warehouseSchema: warehouseSchema,
		martSchema:      martSchema,
	}
}

// RenderReplace returns the full-rebuild script for a mart.
func RenderReplace(martSchema, name, query string) string {
	return fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %[1]s;
DROP TABLE IF EXISTS %[1]s.%[2]s;
CREATE TABLE %[1]s.%[2]s AS
%[3]s`, martSchema, name, query)
}

// Build materializes one mart. Replace-strategy marts are dropped and
// recreated; reconcile-strategy marts are brought into agreement with
// the snapshot (the result reports how much actually changed).
func (m *Materializer) Build(mart models.Mart) (reconcile.Result, error) {
	query, err := Query(mart, m.warehouseSchema)
	if err != nil {
		return reconcile.Result{}, err
	}

	switch mart.Strategy {
	case models.StrategyReconcile:
		if err := m.svc.ExecuteSQL(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", m.martSchema)); err != nil {
			return reconcile.Result{}, errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to create mart schema")
		}
		return m.reconciler.Run(reconcile.Spec{
			Schema:    m.martSchema,
			Target:    mart.Name,
			Key:       KeyColumn(mart),
			Columns:   ComparedColumns(mart),
			SourceSQL: query,
			Timestamp: "last_updated",
		})
	case models.StrategyReplace, "":
		if err := m.svc.ExecuteSQL(RenderReplace(m.martSchema, mart.Name, query)); err != nil {
			return reconcile.Result{}, errors.Wrap(err, errors.ErrCodeSQLExecution,
				fmt.Sprintf("Failed to rebuild mart %s", mart.Name))
		}
		inserted, err := m.svc.RowCount(m.martSchema, mart.Name)
		if err != nil {
			return reconcile.Result{}, err
		}
		return reconcile.Result{Inserted: inserted}, nil
	default:
		return reconcile.Result{}, errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("Unknown mart strategy %q", mart.Strategy)).
			WithContext("mart", mart.Name).
			WithSuggestions("Valid strategies: replace, reconcile")
	}
}

// BuildAll materializes every configured mart in order, halting on
// the first failure.
func (m *Materializer) BuildAll(marts []models.Mart) (map[string]reconcile.Result, error) {
	results := make(map[string]reconcile.Result, len(marts))
	for _, mart := range marts {
		result, err := m.Build(mart)
		if err != nil {
			return results, err
		}
		results[mart.Name] = result
	}
	return results, nil
}
