// Package rental implements the item lifecycle: QR lookup, the transition
// state machine with its note log, and the dashboard aggregation.
package rental

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/skatedesk/internal/model"
)

// ItemStore is the persistence the service needs.
type ItemStore interface {
	CreateItem(ctx context.Context, n model.NewItem) (*model.Item, error)
	// GetItem and FindItemByQR return nil, nil when nothing matches.
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	FindItemByQR(ctx context.Context, t model.ItemType, code string) (*model.Item, error)
	ListItemsByType(ctx context.Context, t model.ItemType) ([]model.Item, error)
	// RecordTransition sets the status, appends the note block and writes
	// the activity entry atomically.
	RecordTransition(ctx context.Context, tr model.Transition) error
}

// ItemView is what an agent sees after scanning a code.
type ItemView struct {
	ID     int64          `json:"id"`
	Title  string         `json:"title"`
	Type   model.ItemType `json:"type"`
	QRCode string         `json:"qr_code"`
	Status model.Status   `json:"status"`
	Notes  string         `json:"notes"`

	// Actions are the transitions the item currently accepts.
	Actions []Action `json:"actions"`
}

// ActionRequest asks for a lifecycle action on an item.
type ActionRequest struct {
	ItemID       int64
	Action       string
	Notes        string
	TargetStatus string
	AgentID      int64
	AgentName    string
}

// ActionResult reports the applied transition.
type ActionResult struct {
	ItemID  int64        `json:"item_id"`
	Status  model.Status `json:"status"`
	Message string       `json:"message"`
}

// Options configures a Service.
type Options struct {
	Lenient  bool
	Location *time.Location
	Now      func() time.Time
}

// Service is the entry point for scans, actions and the dashboard.
type Service struct {
	store  ItemStore
	engine Engine
	log    *zap.SugaredLogger
	now    func() time.Time
	loc    *time.Location
}

// NewService returns a Service over store.
func NewService(store ItemStore, opts Options, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		store:  store,
		engine: Engine{Lenient: opts.Lenient},
		log:    logger,
		now:    opts.Now,
		loc:    opts.Location,
	}
}

// Dashboard reads every item and aggregates counts and listings per type.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	skates, err := s.store.ListItemsByType(ctx, model.ItemTypeSkate)
	if err != nil {
		return nil, storeFailure("listing skates", err)
	}
	skatemates, err := s.store.ListItemsByType(ctx, model.ItemTypeSkatemate)
	if err != nil {
		return nil, storeFailure("listing skatemates", err)
	}
	return Aggregate(skates, skatemates), nil
}

// LookupByQR resolves a scanned code to the item carrying it.
func (s *Service) LookupByQR(ctx context.Context, code string) (*ItemView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalidInput("QR code is required.")
	}

	t := ClassifyItemType(code)
	item, err := s.store.FindItemByQR(ctx, t, code)
	if err != nil {
		return nil, storeFailure("looking up qr code", err)
	}
	if item == nil {
		return nil, notFound("No item found with this QR code.")
	}

	status := item.Status.OrDefault()
	return &ItemView{
		ID:      item.ID,
		Title:   item.Title,
		Type:    item.Type,
		QRCode:  item.QRCode,
		Status:  status,
		Notes:   item.Notes,
		Actions: s.engine.Available(status),
	}, nil
}

// ProcessAction validates req, applies the transition and persists it.
func (s *Service) ProcessAction(ctx context.Context, req ActionRequest) (*ActionResult, error) {
	switch {
	case req.ItemID == 0:
		return nil, missingField("item_id")
	case strings.TrimSpace(req.Action) == "":
		return nil, missingField("action")
	case req.AgentID == 0:
		return nil, missingField("agent_id")
	case strings.TrimSpace(req.AgentName) == "":
		return nil, missingField("agent_name")
	}

	action := Action(req.Action)
	if err := s.engine.Check(action, req.Notes); err != nil {
		return nil, err
	}
	if req.TargetStatus != "" {
		target, _ := action.Target()
		if model.Status(req.TargetStatus) != target {
			return nil, validationError("target_status",
				fmt.Sprintf("Action %s leads to %s, not %s.", action, target, req.TargetStatus))
		}
	}

	item, err := s.store.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, storeFailure("loading item", err)
	}
	if item == nil || item.DeletedAt != nil || !item.Type.Valid() {
		return nil, invalidInput("Invalid item type.")
	}

	tr, err := s.engine.Plan(item, action, req.Notes, req.AgentID, req.AgentName, s.now().In(s.loc))
	if err != nil {
		return nil, err
	}

	if err := s.store.RecordTransition(ctx, tr); err != nil {
		return nil, storeFailure("recording transition", err)
	}

	s.log.Infow("Item transition applied",
		"item_id", item.ID,
		"type", item.Type,
		"action", tr.Action,
		"from", tr.From,
		"to", tr.To,
		"agent_id", tr.AgentID,
	)

	return &ActionResult{ItemID: item.ID, Status: tr.To, Message: tr.Message}, nil
}
