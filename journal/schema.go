package journal

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	fill_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	date TEXT NOT NULL,
	side TEXT NOT NULL,
	code TEXT NOT NULL,
	volume REAL NOT NULL,
	price REAL NOT NULL,
	cash_change REAL NOT NULL,
	fee REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	date TEXT NOT NULL,
	total_assets REAL NOT NULL,
	balance REAL NOT NULL,
	available REAL NOT NULL,
	value REAL NOT NULL,
	day_pnl REAL NOT NULL,
	day_fee REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	policy TEXT NOT NULL,
	strategy TEXT NOT NULL,
	codes TEXT NOT NULL,
	investment REAL NOT NULL,
	start TEXT NOT NULL,
	end TEXT NOT NULL,
	final_value REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_run ON fills(run_id, date);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, date);
`
