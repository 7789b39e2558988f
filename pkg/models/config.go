package models

type Config struct {
    Warehouse Warehouse `yaml:"warehouse"`
    Sources   []Source  `yaml:"sources"`
    Marts     []Mart    `yaml:"marts"`
    Pipeline  Pipeline  `yaml:"pipeline"`
}

// Warehouse describes the DuckDB database the pipeline builds into.
type Warehouse struct {
    Path        string `yaml:"path"`         // Database file path; empty means in-memory
    Schema      string `yaml:"schema"`       // Schema holding the star schema (default "warehouse")
    MartSchema  string `yaml:"mart_schema"`  // Schema holding derived marts (default "marts")
    CloudToken  string `yaml:"cloud_token"`  // Optional hosted-variant auth token, may be ENC[...]
    UseKeyring  bool   `yaml:"use_keyring"`  // Resolve the cloud token from the OS keyring
    Timeout     string `yaml:"timeout"`      // Per-statement timeout, e.g. "5m"
}

// Source is one remote CSV extract feeding the staging layer.
type Source struct {
    Name    string `yaml:"name"`
    URL     string `yaml:"url"`      // HTTPS URL read via the engine's CSV reader
    Landing string `yaml:"landing"`  // Landing table name (default "stg_" + Name)
}

// MartStrategy selects how a mart is materialized on refresh.
type MartStrategy string

const (
    // StrategyReplace drops and recreates the mart from its query.
    StrategyReplace MartStrategy = "replace"
    // StrategyReconcile updates/inserts/deletes against a fresh snapshot.
    StrategyReconcile MartStrategy = "reconcile"
)

// Mart is a derived table built from the warehouse.
type Mart struct {
    Name     string       `yaml:"name"`
    Kind     string       `yaml:"kind"`      // Built-in kind: flat, monthly, priority, hiring
    Query    string       `yaml:"query"`     // Custom SQL; ignored when Kind is set
    Strategy MartStrategy `yaml:"strategy"`  // Default: replace
    Key      string       `yaml:"key"`       // Identifier column, required for reconcile
    Columns  []string     `yaml:"columns"`   // Compared columns for reconcile; defaulted for built-in kinds
    Titles   []string     `yaml:"titles"`    // Tracked titles for the priority kind
}

// Pipeline holds build execution settings.
type Pipeline struct {
    DryRun bool     `yaml:"dry_run"` // Print planned SQL without executing
    Skip   []string `yaml:"skip"`    // Stage names to skip
}
