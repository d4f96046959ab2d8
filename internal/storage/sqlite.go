package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"paisa/internal/core"

	_ "modernc.org/sqlite"
)

// Timestamps are stored as local wall-clock text so month filters via
// strftime stay in the user's calendar, not UTC's.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLiteStore is the durable Store backend.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const transactionColumns = `id, timestamp, amount_paise, direction, description, merchant_name, category, source, sms_body, sms_id`

func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if tx.SMSID != "" {
		exists, err := s.ExistsBySMSID(ctx, tx.SMSID)
		if err != nil {
			return core.Transaction{}, err
		}
		if exists {
			return core.Transaction{}, ErrDuplicateSMSID
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (timestamp, amount_paise, direction, description, merchant_name, category, source, sms_body, sms_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.Timestamp.Format(sqliteTimeLayout),
		tx.Amount.Paise,
		string(tx.Direction),
		tx.Description,
		tx.MerchantName,
		string(tx.Category),
		string(tx.Source),
		tx.SMSBody,
		nullableString(tx.SMSID),
	)
	if err != nil {
		// The partial unique index on sms_id backstops the pre-check when
		// two inserts race.
		if strings.Contains(err.Error(), "UNIQUE constraint failed: transactions.sms_id") {
			return core.Transaction{}, ErrDuplicateSMSID
		}
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}
	tx.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"description", tx.Description,
		"amount_paise", tx.Amount.Paise,
		"category", tx.Category,
		"source", tx.Source)

	return tx, nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET timestamp = ?, amount_paise = ?, direction = ?, description = ?, merchant_name = ?, category = ?, source = ?
		WHERE id = ?`,
		tx.Timestamp.Format(sqliteTimeLayout),
		tx.Amount.Paise,
		string(tx.Direction),
		tx.Description,
		tx.MerchantName,
		string(tx.Category),
		string(tx.Source),
		tx.ID,
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.Transaction{}, ErrNotFound
	}
	return s.GetTransaction(ctx, tx.ID)
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY timestamp DESC, id DESC`)
}

func (s *SQLiteStore) ListTransactionsByMonth(ctx context.Context, year, month int) ([]core.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE strftime('%Y-%m', timestamp) = printf('%04d-%02d', ?, ?)
		ORDER BY timestamp DESC, id DESC`, year, month)
}

func (s *SQLiteStore) MonthsWithActivity(ctx context.Context) ([]core.YearMonth, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT CAST(strftime('%Y', timestamp) AS INTEGER) AS y,
		                CAST(strftime('%m', timestamp) AS INTEGER) AS m
		FROM transactions
		ORDER BY y DESC, m DESC`)
	if err != nil {
		return nil, fmt.Errorf("months with activity: %w", err)
	}
	defer rows.Close()

	out := make([]core.YearMonth, 0)
	for rows.Next() {
		var ym core.YearMonth
		if err := rows.Scan(&ym.Year, &ym.Month); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		out = append(out, ym)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CategorySummary(ctx context.Context, year, month int) ([]core.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(amount_paise) AS total
		FROM transactions
		WHERE direction = 'debit'
		  AND strftime('%Y-%m', timestamp) = printf('%04d-%02d', ?, ?)
		GROUP BY category
		HAVING total > 0
		ORDER BY total DESC, category ASC`, year, month)
	if err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	defer rows.Close()

	out := make([]core.CategoryTotal, 0)
	for rows.Next() {
		var (
			name  string
			paise int64
		)
		if err := rows.Scan(&name, &paise); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		out = append(out, core.CategoryTotal{
			Category: core.Category(name),
			Total:    core.Money{Paise: paise},
		})
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ExistsBySMSID(ctx context.Context, smsID string) (bool, error) {
	if smsID == "" {
		return false, nil
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions WHERE sms_id = ?`, smsID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("exists by sms id: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) Settings(ctx context.Context) (core.Settings, error) {
	var (
		granted  int
		darkMode int
		lastSync sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT sms_permission_granted, dark_mode, last_sync_at FROM settings WHERE id = 1`).
		Scan(&granted, &darkMode, &lastSync)
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	settings := core.Settings{
		SMSPermissionGranted: granted != 0,
		DarkMode:             darkMode != 0,
	}
	if lastSync.Valid && lastSync.String != "" {
		t, err := time.ParseInLocation(sqliteTimeLayout, lastSync.String, time.Local)
		if err != nil {
			return core.Settings{}, fmt.Errorf("parse last sync time: %w", err)
		}
		settings.LastSyncAt = t
	}
	return settings, nil
}

func (s *SQLiteStore) UpdateSettings(ctx context.Context, settings core.Settings) (core.Settings, error) {
	var lastSync interface{}
	if !settings.LastSyncAt.IsZero() {
		lastSync = settings.LastSyncAt.Format(sqliteTimeLayout)
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE settings
		SET sms_permission_granted = ?, dark_mode = ?, last_sync_at = ?
		WHERE id = 1`,
		boolToInt(settings.SMSPermissionGranted),
		boolToInt(settings.DarkMode),
		lastSync,
	)
	if err != nil {
		return core.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return s.Settings(ctx)
}

func (s *SQLiteStore) PendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE export_status = ?
		ORDER BY id ASC
		LIMIT ?`, ExportPending, limit)
}

func (s *SQLiteStore) MarkExported(ctx context.Context, id int64) error {
	return s.setExportStatus(ctx, id, ExportDone)
}

func (s *SQLiteStore) MarkExportError(ctx context.Context, id int64) error {
	return s.setExportStatus(ctx, id, ExportFailed)
}

func (s *SQLiteStore) setExportStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET export_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set export status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		timestamp string
		direction string
		category  string
		source    string
		smsID     sql.NullString
	)
	err := row.Scan(&tx.ID, &timestamp, &tx.Amount.Paise, &direction,
		&tx.Description, &tx.MerchantName, &category, &source, &tx.SMSBody, &smsID)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.Timestamp, err = time.ParseInLocation(sqliteTimeLayout, timestamp, time.Local)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse timestamp %q: %w", timestamp, err)
	}
	tx.Direction = core.Direction(direction)
	tx.Category = core.Category(category)
	tx.Source = core.PaymentSource(source)
	tx.SMSID = smsID.String
	return tx, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
