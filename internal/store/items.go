package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/skatedesk/internal/model"
)

var (
	// ErrDuplicateQRCode is returned when a QR code is already assigned to another item.
	ErrDuplicateQRCode = errors.New("qr code already in use")
	// ErrItemNotFound is returned by writes that target a missing or deleted item.
	ErrItemNotFound = errors.New("item not found")
)

const itemColumns = `id, type, title, qr_code, status, notes, attributes, image_mime,
	created_at, updated_at, deleted_at`

// CreateItem creates a new item. When n.QRCode is empty a code of the form
// <type>_<id>_<suffix> is assigned once the row id is known.
func CreateItem(ctx context.Context, db *sql.DB, n model.NewItem) (*model.Item, error) {
	attrs, err := encodeAttributes(n.Skate, n.Skatemate)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	qr := n.QRCode
	if qr == "" {
		// Placeholder until the id is known; unique so the index is satisfied.
		qr = "pending:" + uuid.NewString()
	} else {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM items WHERE qr_code = ?`, qr,
		).Scan(&count); err != nil {
			return nil, fmt.Errorf("checking qr code: %w", err)
		}
		if count > 0 {
			return nil, ErrDuplicateQRCode
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (type, title, qr_code, status, notes, attributes) VALUES (?, ?, ?, ?, '', ?)`,
		string(n.Type), n.Title, qr, string(model.StatusAvailable), attrs,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateQRCode
	}
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if n.QRCode == "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET qr_code = ? WHERE id = ?`, GenerateQRCode(n.Type, id), id,
		); err != nil {
			return nil, fmt.Errorf("assigning qr code: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GenerateQRCode builds the printed QR token for an item.
func GenerateQRCode(t model.ItemType, id int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", t, id, suffix)
}

// GetItem returns an item by ID, including soft-deleted ones.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// FindItemByQR returns the single active item of the given type carrying code.
func FindItemByQR(ctx context.Context, db *sql.DB, t model.ItemType, code string) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE type = ? AND qr_code = ? AND deleted_at IS NULL
		 LIMIT 1`, string(t), code,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding item by qr code: %w", err)
	}
	return item, nil
}

// ListItemsByType returns all non-deleted items of a type in creation order.
// An empty type lists every item.
func ListItemsByType(ctx context.Context, db *sql.DB, t model.ItemType) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if t != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items
			 WHERE deleted_at IS NULL AND type = ? ORDER BY id`, string(t),
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items
			 WHERE deleted_at IS NULL ORDER BY id`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItemDetails updates the catalog fields of an item. Status and notes
// are left alone; they only change through RecordTransition.
func UpdateItemDetails(ctx context.Context, db *sql.DB, id int64, title string, skate *model.SkateAttributes, skatemate *model.SkatemateAttributes) error {
	attrs, err := encodeAttributes(skate, skatemate)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET title = ?, attributes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		title, attrs, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return requireOneRow(result)
}

// DeleteItem soft-deletes an item. Missing or already deleted items return
// ErrItemNotFound.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return requireOneRow(result)
}

// SetItemImage sets an item's photo.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return requireOneRow(result)
}

// GetItemImage returns an item's photo and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// RecordTransition applies a status change, appends the note block in place
// and writes the activity entry, all in one transaction.
func RecordTransition(ctx context.Context, db *sql.DB, tr model.Transition) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Appending in SQL keeps concurrent notes; status stays last-write-wins.
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, notes = COALESCE(notes, '') || ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		string(tr.To), tr.NoteBlock, tr.ItemID,
	)
	if err != nil {
		return fmt.Errorf("updating item state: %w", err)
	}
	if err := requireOneRow(result); err != nil {
		return err
	}

	eventID := tr.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO activity_log (event_id, item_id, agent_id, agent_name, action, from_status, to_status, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		eventID, tr.ItemID, tr.AgentID, tr.AgentName, tr.Action,
		string(tr.From), string(tr.To), tr.Message,
	)
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transition: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var typ string
	var status, notes, attrs, imageMime sql.NullString
	if err := s.Scan(&item.ID, &typ, &item.Title, &item.QRCode, &status, &notes, &attrs, &imageMime,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt); err != nil {
		return nil, err
	}
	item.Type = model.ItemType(typ)
	item.Status = model.Status(status.String).OrDefault()
	item.Notes = notes.String
	item.ImageMime = imageMime.String
	if err := decodeAttributes(item, attrs.String); err != nil {
		return nil, err
	}
	return item, nil
}

func encodeAttributes(skate *model.SkateAttributes, skatemate *model.SkatemateAttributes) (any, error) {
	var v any
	switch {
	case skate != nil:
		v = skate
	case skatemate != nil:
		v = skatemate
	default:
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding attributes: %w", err)
	}
	return string(data), nil
}

func decodeAttributes(item *model.Item, raw string) error {
	if raw == "" {
		return nil
	}
	switch item.Type {
	case model.ItemTypeSkate:
		item.Skate = &model.SkateAttributes{}
		return json.Unmarshal([]byte(raw), item.Skate)
	case model.ItemTypeSkatemate:
		item.Skatemate = &model.SkatemateAttributes{}
		return json.Unmarshal([]byte(raw), item.Skatemate)
	}
	return nil
}

// isUniqueViolation reports whether err comes from a UNIQUE index rejecting a write.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}

func requireOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}
