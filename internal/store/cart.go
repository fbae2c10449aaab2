package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/grocer/internal/model"
)

// CartStore persists cart entries in SQLite. Item ids are stored as the
// int64 with the same bit pattern so the full uint64 range round-trips.
type CartStore struct {
	db *sql.DB
}

func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{db: db}
}

func scanEntry(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var item model.GroceryItem
	var id int64
	var completed int

	err := scanner.Scan(&id, &item.Name, &item.Emoji, &completed)
	if err != nil {
		return nil, err
	}
	item.ID = uint64(id)
	item.Completed = completed != 0
	return &item, nil
}

const entryCols = `item_id, name, emoji, completed`

func (s *CartStore) List() ([]model.GroceryItem, error) {
	rows, err := s.db.Query(`SELECT ` + entryCols + ` FROM cart_entries ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cart entries: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryItem
	for rows.Next() {
		item, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart entry: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// get returns nil, nil when id is not stored.
func (s *CartStore) get(id uint64) (*model.GroceryItem, error) {
	row := s.db.QueryRow(`SELECT `+entryCols+` FROM cart_entries WHERE item_id = ?`, int64(id))
	item, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart entry: %w", err)
	}
	return item, nil
}

func (s *CartStore) Insert(item model.GroceryItem) error {
	_, err := s.db.Exec(
		`INSERT INTO cart_entries (item_id, name, emoji, completed) VALUES (?, ?, ?, ?)`,
		int64(item.ID), item.Name, item.Emoji, boolToInt(item.Completed),
	)
	if err != nil {
		return fmt.Errorf("insert cart entry: %w", err)
	}
	return nil
}

func (s *CartStore) Delete(id uint64) error {
	_, err := s.db.Exec(`DELETE FROM cart_entries WHERE item_id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("delete cart entry: %w", err)
	}
	return nil
}

func (s *CartStore) SetCompleted(id uint64, completed bool) error {
	_, err := s.db.Exec(
		`UPDATE cart_entries SET completed = ? WHERE item_id = ?`,
		boolToInt(completed), int64(id),
	)
	if err != nil {
		return fmt.Errorf("set completed: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
