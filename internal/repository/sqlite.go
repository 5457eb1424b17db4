package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mr1hm/battlescape/internal/models"
	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS battles (
			position INTEGER PRIMARY KEY,
			battle TEXT NOT NULL,
			year INTEGER NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			war TEXT NOT NULL,
			battle_type TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			belligerents_a TEXT NOT NULL DEFAULT '',
			belligerents_b TEXT NOT NULL DEFAULT '',
			commanders_a TEXT NOT NULL DEFAULT '',
			commanders_b TEXT NOT NULL DEFAULT '',
			result TEXT NOT NULL DEFAULT '',
			wiki_url TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS loads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			loaded_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_battles_war ON battles(war);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ReplaceRecords swaps the stored dataset for records in one transaction.
func (s *SQLiteDB) ReplaceRecords(ctx context.Context, source string, records []models.BattleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM battles`); err != nil {
		return fmt.Errorf("error clearing battles: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO battles (
			position, battle, year, latitude, longitude, war, battle_type, description,
			belligerents_a, belligerents_b, commanders_a, commanders_b, result, wiki_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			i, r.Battle, r.Year, r.Latitude, r.Longitude, r.War, string(r.BattleType), r.Description,
			r.BelligerentsA, r.BelligerentsB, r.CommandersA, r.CommandersB, r.Result, r.WikiURL,
		)
		if err != nil {
			return fmt.Errorf("error inserting battle %q: %w", r.Battle, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO loads (source, record_count, loaded_at) VALUES (?, ?, ?)`,
		source, len(records), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error recording load: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteDB) ListRecords(ctx context.Context) ([]models.BattleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, battle, year, latitude, longitude, war, battle_type, description,
			belligerents_a, belligerents_b, commanders_a, commanders_b, result, wiki_url
		FROM battles
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("error querying battles: %w", err)
	}
	defer rows.Close()

	var records []models.BattleRecord
	for rows.Next() {
		var (
			r          models.BattleRecord
			battleType string
		)
		err := rows.Scan(
			&r.ID, &r.Battle, &r.Year, &r.Latitude, &r.Longitude, &r.War, &battleType, &r.Description,
			&r.BelligerentsA, &r.BelligerentsB, &r.CommandersA, &r.CommandersB, &r.Result, &r.WikiURL,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning battle: %w", err)
		}
		r.BattleType = models.BattleType(battleType)
		records = append(records, r)
	}

	return records, rows.Err()
}

// LastLoad returns nil when nothing has been stored yet.
func (s *SQLiteDB) LastLoad(ctx context.Context) (*LoadInfo, error) {
	var info LoadInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT source, record_count, loaded_at FROM loads ORDER BY id DESC LIMIT 1`,
	).Scan(&info.Source, &info.Count, &info.LoadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying last load: %w", err)
	}
	return &info, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
