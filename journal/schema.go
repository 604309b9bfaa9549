package journal

const Schema = `
CREATE TABLE IF NOT EXISTS audit (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time DATETIME NOT NULL,
	current_equity REAL NOT NULL,
	peak_equity REAL NOT NULL,
	trailing_limit REAL NOT NULL,
	daily_limit REAL NOT NULL,
	permitted BOOLEAN NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	time DATETIME NOT NULL,
	equity REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
	cycle_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	kind TEXT NOT NULL,
	reason TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	size REAL NOT NULL,
	entry REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	intent_id TEXT NOT NULL,
	detail TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_time ON audit(time);
CREATE INDEX IF NOT EXISTS idx_snapshots_time ON snapshots(time);
CREATE INDEX IF NOT EXISTS idx_outcomes_time ON outcomes(time);
`
