package reconcile

import (
	"fmt"
	"strings"
)

// snapshotTable is the session-local holding table the three branches
// read from, so all of them observe the same source data.
const snapshotTable = "reconcile_snapshot"

// Spec describes one reconciliation: a keyed target table and the
// query producing its authoritative snapshot.
type Spec struct {
	Schema    string   // target schema
	Target    string   // target table
	Key       string   // stable identifier column
	Columns   []string // compared attribute columns, key excluded
	SourceSQL string   // snapshot query
	Timestamp string   // optional last-modified column, set on update/insert
}

func (s Spec) qualifiedTarget() string {
	return fmt.Sprintf("%s.%s", s.Schema, s.Target)
}

// RenderSnapshot materializes the source query into the temp holding
// table. The branches never re-run the source query.
func RenderSnapshot(spec Spec) string {
	return fmt.Sprintf("CREATE OR REPLACE TEMP TABLE %s AS %s", snapshotTable, spec.SourceSQL)
}

// RenderUpdate overwrites attributes of rows present in both sides
// whose values differ. IS DISTINCT FROM is the comparison: two nulls
// are equal, null against a value is a difference. Plain equality
// would return unknown for null operands and silently skip those rows.
func RenderUpdate(spec Spec) string {
	sets := make([]string, 0, len(spec.Columns)+1)
	diffs := make([]string, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		sets = append(sets, fmt.Sprintf("%s = s.%s", col, col))
		diffs = append(diffs, fmt.Sprintf("t.%s IS DISTINCT FROM s.%s", col, col))
	}
	if spec.Timestamp != "" {
		sets = append(sets, fmt.Sprintf("%s = now()", spec.Timestamp))
	}

	return fmt.Sprintf(`UPDATE %s AS t
SET %s
FROM %s AS s
WHERE t.%s = s.%s
  AND (%s)`,
		spec.qualifiedTarget(),
		strings.Join(sets, ", "),
		snapshotTable,
		spec.Key, spec.Key,
		strings.Join(diffs, " OR "),
	)
}

// RenderInsert adds snapshot rows whose identifier is absent from the
// target.
func RenderInsert(spec Spec) string {
	cols := append([]string{spec.Key}, spec.Columns...)
	selects := make([]string, len(cols))
	for i, col := range cols {
		selects[i] = "s." + col
	}
	if spec.Timestamp != "" {
		cols = append(cols, spec.Timestamp)
		selects = append(selects, "now()")
	}

	return fmt.Sprintf(`INSERT INTO %s (%s)
SELECT %s
FROM %s AS s
WHERE NOT EXISTS (
    SELECT 1 FROM %s AS t WHERE t.%s = s.%s
)`,
		spec.qualifiedTarget(),
		strings.Join(cols, ", "),
		strings.Join(selects, ", "),
		snapshotTable,
		spec.qualifiedTarget(), spec.Key, spec.Key,
	)
}

// RenderDelete removes target rows whose identifier vanished from the
// snapshot. NOT EXISTS rather than NOT IN, so a null identifier in the
// snapshot cannot suppress every deletion.
func RenderDelete(spec Spec) string {
	return fmt.Sprintf(`DELETE FROM %s
WHERE NOT EXISTS (
    SELECT 1 FROM %s AS s WHERE s.%s = %s.%s
)`,
		spec.qualifiedTarget(),
		snapshotTable, spec.Key, spec.Target, spec.Key,
	)
}

// RenderCreateTarget declares a missing target from the snapshot's
// shape. A missing target behaves like an empty table; every snapshot
// row then arrives through the insert branch.
func RenderCreateTarget(spec Spec) string {
	extra := ""
	if spec.Timestamp != "" {
		extra = fmt.Sprintf(", now() AS %s", spec.Timestamp)
	}
	return fmt.Sprintf("CREATE TABLE %s AS SELECT *%s FROM %s LIMIT 0",
		spec.qualifiedTarget(), extra, snapshotTable)
}

// RenderDropSnapshot discards the holding table after the run.
func RenderDropSnapshot() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", snapshotTable)
}
