package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skatedesk/internal/model"
)

const activitySelect = `SELECT a.id, a.event_id, a.item_id, a.agent_id, a.agent_name, a.action,
	        a.from_status, a.to_status, a.message, a.created_at, i.title AS item_title
	 FROM activity_log a
	 JOIN items i ON i.id = a.item_id`

// ListItemActivity returns the activity history of an item, newest first.
func ListItemActivity(ctx context.Context, db *sql.DB, itemID int64) ([]model.Activity, error) {
	rows, err := db.QueryContext(ctx,
		activitySelect+` WHERE a.item_id = ? ORDER BY a.created_at DESC, a.id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item activity: %w", err)
	}
	defer rows.Close()

	return scanActivity(rows)
}

// ListAgentActivity returns the latest activity entries recorded by one agent.
func ListAgentActivity(ctx context.Context, db *sql.DB, agentID int64, limit int) ([]model.Activity, error) {
	rows, err := db.QueryContext(ctx,
		activitySelect+` WHERE a.agent_id = ? ORDER BY a.created_at DESC, a.id DESC LIMIT ?`, agentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing agent activity: %w", err)
	}
	defer rows.Close()

	return scanActivity(rows)
}

// ListRecentActivity returns the latest activity entries across all items.
func ListRecentActivity(ctx context.Context, db *sql.DB, limit int) ([]model.Activity, error) {
	rows, err := db.QueryContext(ctx,
		activitySelect+` ORDER BY a.created_at DESC, a.id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent activity: %w", err)
	}
	defer rows.Close()

	return scanActivity(rows)
}

func scanActivity(rows *sql.Rows) ([]model.Activity, error) {
	var entries []model.Activity
	for rows.Next() {
		var a model.Activity
		var from, to string
		if err := rows.Scan(&a.ID, &a.EventID, &a.ItemID, &a.AgentID, &a.AgentName, &a.Action,
			&from, &to, &a.Message, &a.CreatedAt, &a.ItemTitle); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.FromStatus = model.Status(from)
		a.ToStatus = model.Status(to)
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
