package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"todo-api/model"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	conn *sql.DB
}

func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		return nil, err
	}

	log.Printf("Database initialized at %s", dbPath)
	return db, nil
}

// initSchema 初始化数据库表
// order 是 SQL 关键字，列名用 item_order
func (db *DB) initSchema() error {
	schema := `
  	CREATE TABLE IF NOT EXISTS items (
  		id TEXT PRIMARY KEY,
  		value TEXT NOT NULL,
  		item_order INTEGER NOT NULL,
  		completed_at DATETIME
  	);

  	CREATE INDEX IF NOT EXISTS idx_item_order ON items(item_order DESC);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	return nil
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	return db.conn.Close()
}

const itemColumns = "id, value, item_order, completed_at"

// scanItem 扫描单行查询结果，没有匹配行时返回 nil（不算错误）
func scanItem(row *sql.Row) (*model.Item, error) {
	var item model.Item
	var completedAt sql.NullTime

	err := row.Scan(&item.ID, &item.Value, &item.Order, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}

	if completedAt.Valid {
		t := completedAt.Time
		item.CompletedAt = &t
	}
	return &item, nil
}

// InsertItem 持久化一个新的待办事项，并为其分配标识符
func (db *DB) InsertItem(ctx context.Context, item *model.Item) error {
	item.ID = uuid.NewString()

	query := `INSERT INTO items (id, value, item_order, completed_at) VALUES (?, ?, ?, ?)`

	if _, err := db.conn.ExecContext(ctx, query, item.ID, item.Value, item.Order, item.CompletedAt); err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// FindMaxOrder 查询 order 值最大的待办事项，存储为空时返回 nil
func (db *DB) FindMaxOrder(ctx context.Context) (*model.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items ORDER BY item_order DESC LIMIT 1`, itemColumns)
	return scanItem(db.conn.QueryRowContext(ctx, query))
}

// FindByID 根据标识符查询待办事项
// 格式不合法的 id 只是一个匹配不到任何行的键，同样返回 nil
func (db *DB) FindByID(ctx context.Context, id string) (*model.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE id = ?`, itemColumns)
	return scanItem(db.conn.QueryRowContext(ctx, query, id))
}

// FindByOrder 根据 order 值查询待办事项，没有匹配时返回 nil
// order 理论上唯一；如果不变式被破坏，返回任意一个匹配行
func (db *DB) FindByOrder(ctx context.Context, order int) (*model.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items WHERE item_order = ? LIMIT 1`, itemColumns)
	return scanItem(db.conn.QueryRowContext(ctx, query, order))
}

// ListItems 获取全部待办事项，按 order 降序排列
func (db *DB) ListItems(ctx context.Context) ([]model.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items ORDER BY item_order DESC`, itemColumns)

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var item model.Item
		var completedAt sql.NullTime

		if err := rows.Scan(&item.ID, &item.Value, &item.Order, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			item.CompletedAt = &t
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// SaveItem 原地更新一个已存在的待办事项
func (db *DB) SaveItem(ctx context.Context, item *model.Item) error {
	query := `UPDATE items SET value = ?, item_order = ?, completed_at = ? WHERE id = ?`

	if _, err := db.conn.ExecContext(ctx, query, item.Value, item.Order, item.CompletedAt, item.ID); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// DeleteItem 删除一个待办事项
// 不保证 no-op 安全，调用方需要先确认记录存在
func (db *DB) DeleteItem(ctx context.Context, id string) error {
	query := `DELETE FROM items WHERE id = ?`

	if _, err := db.conn.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}
