package rental

import (
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/skatedesk/internal/model"
)

// Action identifies a lifecycle transition requested by an agent.
type Action string

// Lifecycle actions.
const (
	ActionRent                Action = "rent"
	ActionReturn              Action = "return"
	ActionFlagMaintenance     Action = "flag-maintenance"
	ActionCompleteMaintenance Action = "complete-maintenance"
)

// ReturnNote is recorded for every return regardless of caller input.
const ReturnNote = "Item returned and inspected. OK."

// rule describes one row of the transition table.
type rule struct {
	from      []model.Status
	to        model.Status
	title     string
	message   string
	needsText bool
	fixedText string
}

var rules = map[Action]rule{
	ActionRent: {
		from:    []model.Status{model.StatusAvailable},
		to:      model.StatusRented,
		title:   "Pre-Rental Check",
		message: "Item Rented.",
	},
	ActionReturn: {
		from:      []model.Status{model.StatusRented},
		to:        model.StatusAvailable,
		title:     "Return Inspection",
		message:   "Item Returned.",
		fixedText: ReturnNote,
	},
	ActionFlagMaintenance: {
		from:      []model.Status{model.StatusAvailable, model.StatusRented},
		to:        model.StatusMaintenance,
		title:     "Maintenance Log",
		message:   "Marked for Maintenance.",
		needsText: true,
	},
	ActionCompleteMaintenance: {
		from:      []model.Status{model.StatusMaintenance},
		to:        model.StatusAvailable,
		title:     "Repair Complete",
		message:   "Maintenance Completed.",
		needsText: true,
	},
}

// Actions lists the known actions in table order.
var Actions = []Action{ActionRent, ActionReturn, ActionFlagMaintenance, ActionCompleteMaintenance}

// Target returns the status an action moves an item to.
func (a Action) Target() (model.Status, bool) {
	r, ok := rules[a]
	return r.to, ok
}

// Engine validates lifecycle actions and plans the resulting store write.
type Engine struct {
	// Lenient applies an action from any current status instead of
	// rejecting out-of-order transitions.
	Lenient bool
}

// Available returns the actions that apply to an item in status s, in
// table order. In lenient mode every action applies.
func (e Engine) Available(s model.Status) []Action {
	from := s.OrDefault()
	out := make([]Action, 0, len(Actions))
	for _, a := range Actions {
		if e.Lenient || containsStatus(rules[a].from, from) {
			out = append(out, a)
		}
	}
	return out
}

// Check validates an action and its note text without looking at the item.
func (e Engine) Check(action Action, text string) error {
	r, ok := rules[action]
	if !ok {
		return invalidInput(fmt.Sprintf("Unknown action: %s", action))
	}
	if r.needsText && strings.TrimSpace(text) == "" {
		return validationError("notes", "notes are required")
	}
	return nil
}

// Plan returns the transition that applies action to item. Nothing is
// written; the caller persists the result.
func (e Engine) Plan(item *model.Item, action Action, text string, agentID int64, agentName string, now time.Time) (model.Transition, error) {
	if err := e.Check(action, text); err != nil {
		return model.Transition{}, err
	}
	r := rules[action]

	from := item.Status.OrDefault()
	if !e.Lenient && !containsStatus(r.from, from) {
		return model.Transition{}, validationError("action",
			fmt.Sprintf("Cannot %s an item that is %s.", action, from))
	}

	if r.fixedText != "" {
		text = r.fixedText
	}

	return model.Transition{
		ItemID:    item.ID,
		Action:    string(action),
		From:      from,
		To:        r.to,
		NoteBlock: FormatNote("", r.title, agentName, text, now),
		AgentID:   agentID,
		AgentName: agentName,
		Message:   r.message,
	}, nil
}

func containsStatus(list []model.Status, s model.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
