package reconcile

import (
	"fmt"

	"martdrop/internal/duckdb"
	"martdrop/pkg/errors"
)

// Result reports per-branch row counts. A re-run against an unchanged
// source yields the zero value.
type Result struct {
	Updated  int64
	Inserted int64
	Deleted  int64
}

// IsNoop reports whether the run changed nothing.
func (r Result) IsNoop() bool {
	return r.Updated == 0 && r.Inserted == 0 && r.Deleted == 0
}

func (r Result) String() string {
	return fmt.Sprintf("%d updated, %d inserted, %d deleted", r.Updated, r.Inserted, r.Deleted)
}

// Reconciler brings target tables into agreement with source snapshots.
type Reconciler struct {
	svc          *duckdb.Service
	errorHandler *errors.ErrorHandler
}

// New creates a Reconciler on the given service.
func New(svc *duckdb.Service) *Reconciler {
	return &Reconciler{
		svc:          svc,
		errorHandler: errors.GetGlobalErrorHandler(),
	}
}

// Run applies one reconciliation: materialize the snapshot, then
// update changed rows, insert new ones, and delete vanished ones, all
// inside a single transaction. Either all three branches commit or
// none do; a failed run can simply be re-run.
func (r *Reconciler) Run(spec Spec) (Result, error) {
	var result Result

	if spec.Key == "" {
		return result, errors.New(errors.ErrCodeKeyColumnMissing, "Reconciliation requires a key column").
			WithContext("target", spec.Target)
	}
	if len(spec.Columns) == 0 {
		return result, errors.New(errors.ErrCodeInvalidInput, "Reconciliation requires at least one compared column").
			WithContext("target", spec.Target)
	}

	exists, err := r.svc.TableExists(spec.Schema, spec.Target)
	if err != nil {
		return result, errors.Wrap(err, errors.ErrCodeReconcileFailed, "Failed to inspect reconciliation target")
	}

	tx, err := r.svc.BeginTransaction()
	if err != nil {
		return result, errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin reconciliation transaction")
	}

	txHandler := r.errorHandler.NewTransactionHandler(tx.Rollback)

	err = txHandler.Execute(func() error {
		// One consistent snapshot for all three branches.
		if _, err := tx.Exec(RenderSnapshot(spec)); err != nil {
			return errors.Wrap(err, errors.ErrCodeSnapshotFailed, "Failed to materialize source snapshot").
				WithContext("target", spec.Target)
		}

		if !exists {
			if _, err := tx.Exec(RenderCreateTarget(spec)); err != nil {
				return errors.SQLError("Failed to create reconciliation target", RenderCreateTarget(spec), err)
			}
		}

		branches := []struct {
			sql   string
			count *int64
		}{
			{RenderUpdate(spec), &result.Updated},
			{RenderInsert(spec), &result.Inserted},
			{RenderDelete(spec), &result.Deleted},
		}

		for _, branch := range branches {
			res, err := tx.Exec(branch.sql)
			if err != nil {
				return errors.SQLError("Reconciliation branch failed", branch.sql, err).
					WithContext("target", spec.Target)
			}
			if n, err := res.RowsAffected(); err == nil {
				*branch.count = n
			}
		}

		if _, err := tx.Exec(RenderDropSnapshot()); err != nil {
			return errors.SQLError("Failed to drop snapshot table", RenderDropSnapshot(), err)
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to commit reconciliation")
		}
		txHandler.MarkCommitted()
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return result, nil
}
