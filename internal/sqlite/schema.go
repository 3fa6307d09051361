package sqlite

// Schema DDL. Records are stored document-style: a JSON document column
// plus the key columns needed for filtering and the optimistic
// concurrency version.
const (
	createLifecycles = `CREATE TABLE IF NOT EXISTS lifecycles (
    user_id TEXT PRIMARY KEY,
    current_state TEXT NOT NULL,
    record TEXT NOT NULL,
    version INTEGER NOT NULL,
    updated_at TEXT NOT NULL
);`

	createActivations = `CREATE TABLE IF NOT EXISTS activations (
    user_id TEXT PRIMARY KEY,
    assigned_path TEXT NOT NULL DEFAULT '',
    is_activated INTEGER NOT NULL DEFAULT 0,
    record TEXT NOT NULL,
    version INTEGER NOT NULL,
    updated_at TEXT NOT NULL
);`

	createSignals = `CREATE TABLE IF NOT EXISTS signals (
    user_id TEXT PRIMARY KEY,
    record TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// schemaDDL lists every table creation statement executed on Attach.
var schemaDDL = []string{
	createLifecycles,
	createActivations,
	createSignals,
}
