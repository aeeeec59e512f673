// Package persistence provides SQLite-based state storage and
// compressed snapshot archives.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/soratane/aicity/internal/engine"
	"github.com/soratane/aicity/internal/ledger"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS citizens (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		gender TEXT NOT NULL,
		role TEXT NOT NULL,
		home TEXT NOT NULL,
		location TEXT NOT NULL,
		money INTEGER NOT NULL,
		health INTEGER NOT NULL,
		happiness INTEGER NOT NULL,
		hunger INTEGER NOT NULL,
		employer TEXT,
		is_external INTEGER NOT NULL,
		personality_json TEXT NOT NULL,
		family_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		time TEXT NOT NULL,
		text TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		tx_hash TEXT PRIMARY KEY,
		prev_hash TEXT NOT NULL,
		sender TEXT NOT NULL,
		receiver TEXT NOT NULL,
		amount REAL NOT NULL,
		fee REAL NOT NULL,
		reason TEXT NOT NULL,
		tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_news_tick ON news(tick);
	CREATE INDEX IF NOT EXISTS idx_transactions_tick ON transactions(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveCitizens writes the whole population (full replace).
func (db *DB) SaveCitizens(views []engine.CitizenView) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM citizens"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO citizens
		(id, name, age, gender, role, home, location, money, health,
		 happiness, hunger, employer, is_external, personality_json, family_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range views {
		personalityJSON, _ := json.Marshal(v.Personality)
		familyJSON, _ := json.Marshal(map[string]any{"spouse_id": v.SpouseID})

		external := 0
		if v.External {
			external = 1
		}

		_, err := stmt.Exec(
			v.ID, v.Name, v.Age, v.Gender, v.Role, v.Home, v.Location,
			v.Money, v.Health, v.Happiness, v.Hunger, v.Employer,
			external, string(personalityJSON), string(familyJSON),
		)
		if err != nil {
			return fmt.Errorf("insert citizen %s: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

// SaveNews appends feed items to the database.
func (db *DB) SaveNews(items []engine.NewsItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		_, err := tx.Exec(
			"INSERT INTO news (tick, time, text, category) VALUES (?, ?, ?, ?)",
			item.Tick, item.Time, item.Text, item.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveTransactions upserts the ledger window; the hash chain makes the
// tx_hash key stable across saves.
func (db *DB) SaveTransactions(txs []ledger.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range txs {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO transactions
			 (tx_hash, prev_hash, sender, receiver, amount, fee, reason, tick)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.TxHash, t.PrevHash, t.From, t.To, t.Amount, t.Fee, t.Reason, t.Tick,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorldState performs a full save from one snapshot.
func (db *DB) SaveWorldState(snap engine.Snapshot) error {
	slog.Info("saving world state", "tick", snap.World.Tick, "citizens", len(snap.Citizens))

	if err := db.SaveCitizens(snap.Citizens); err != nil {
		return fmt.Errorf("save citizens: %w", err)
	}
	if err := db.SaveNews(snap.News); err != nil {
		return fmt.Errorf("save news: %w", err)
	}
	if err := db.SaveTransactions(snap.Ledger.Transactions); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	if err := db.SaveMeta("last_tick", fmt.Sprintf("%d", snap.World.Tick)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}

// NewsRow is a stored feed item.
type NewsRow struct {
	Tick     int    `db:"tick"`
	Time     string `db:"time"`
	Text     string `db:"text"`
	Category string `db:"category"`
}

// RecentNews returns the most recent N stored feed items.
func (db *DB) RecentNews(limit int) ([]NewsRow, error) {
	var rows []NewsRow
	err := db.conn.Select(&rows,
		"SELECT tick, time, text, category FROM news ORDER BY id DESC LIMIT ?",
		limit,
	)
	return rows, err
}
