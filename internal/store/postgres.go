package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PostgresTableStore はPostgreSQLのuser_recordsテーブルを
// 共有テーブルストアとして使用する実装。
// row_index列で挿入順を保持する。
type PostgresTableStore struct {
	db *sql.DB
}

// NewPostgresTableStore はPostgresTableStoreを生成する。
func NewPostgresTableStore(db *sql.DB) *PostgresTableStore {
	return &PostgresTableStore{db: db}
}

// ReadAllRows はテーブル全行をrow_index順で返す。
func (s *PostgresTableStore) ReadAllRows(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, password, available_dates, friends, friend_requests
		 FROM user_records ORDER BY row_index`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read user_records: %w", err)
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		var userID, password, dates, friends, requests string
		if err := rows.Scan(&userID, &password, &dates, &friends, &requests); err != nil {
			return nil, fmt.Errorf("failed to scan user_records row: %w", err)
		}
		result = append(result, Row{
			ColUserID:         userID,
			ColPassword:       password,
			ColAvailableDates: dates,
			ColFriends:        friends,
			ColFriendRequests: requests,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user_records: %w", err)
	}

	return result, nil
}

// ReplaceAllRows はテーブル全体をDELETE+INSERTで書き換える。
// 単一トランザクションで実行するため、読み手からは全置換がアトミックに見える。
func (s *PostgresTableStore) ReplaceAllRows(ctx context.Context, tableRows []Row, columnOrder []string) error {
	if err := validateColumnOrder(columnOrder); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_records`); err != nil {
		return fmt.Errorf("failed to clear user_records: %w", err)
	}

	query := fmt.Sprintf(
		`INSERT INTO user_records (row_index, %s) VALUES ($1, $2, $3, $4, $5, $6)`,
		strings.Join(columnOrder, ", "),
	)
	for i, row := range tableRows {
		args := make([]any, 0, len(columnOrder)+1)
		args = append(args, i)
		for _, col := range columnOrder {
			args = append(args, row[col])
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert user_records row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user_records rewrite: %w", err)
	}

	return nil
}

// validateColumnOrder は列順が既知の列のみで構成されていることを確認する。
// 列名はSQLに直接埋め込まれるため、未知の列は拒否する。
func validateColumnOrder(columnOrder []string) error {
	known := make(map[string]struct{}, len(Columns()))
	for _, col := range Columns() {
		known[col] = struct{}{}
	}
	if len(columnOrder) != len(known) {
		return fmt.Errorf("column order must contain exactly %d columns, got %d", len(known), len(columnOrder))
	}
	for _, col := range columnOrder {
		if _, ok := known[col]; !ok {
			return fmt.Errorf("unknown column in column order: %s", col)
		}
	}
	return nil
}

// compile-time interface check
var _ TableStore = (*PostgresTableStore)(nil)
