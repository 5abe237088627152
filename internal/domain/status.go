package domain

// allowedTransitions is the approval workflow. Every status has an exit.
var allowedTransitions = map[HotelStatus]map[HotelStatus]bool{
	StatusPending:   {StatusPublished: true, StatusRejected: true},
	StatusRejected:  {StatusPublished: true},
	StatusPublished: {StatusOffline: true},
	StatusOffline:   {StatusPublished: true},
}

func CanTransition(from, to HotelStatus) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// NextStatuses returns the statuses reachable from s, in display order.
func NextStatuses(s HotelStatus) []HotelStatus {
	var out []HotelStatus
	for _, to := range Statuses {
		if CanTransition(s, to) {
			out = append(out, to)
		}
	}
	return out
}

// Action is an operator-facing transition.
type Action string

const (
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionReapprove   Action = "reapprove"
	ActionTakeOffline Action = "offline"
	ActionRestore     Action = "restore"
)

type actionSpec struct {
	From, To HotelStatus
	Title    string
	Done     string // success description, %s is the hotel name
}

var actions = map[Action]actionSpec{
	ActionApprove:     {StatusPending, StatusPublished, "Approved", "%s has been approved and is now live"},
	ActionReject:      {StatusPending, StatusRejected, "Rejected", "%s has been marked as rejected"},
	ActionReapprove:   {StatusRejected, StatusPublished, "Approved", "%s has been approved and is now live"},
	ActionTakeOffline: {StatusPublished, StatusOffline, "Taken offline", "%s is offline (data kept, can be restored)"},
	ActionRestore:     {StatusOffline, StatusPublished, "Restored", "%s is back online"},
}

func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := actions[a]
	return a, ok
}

func (a Action) From() HotelStatus { return actions[a].From }
func (a Action) To() HotelStatus   { return actions[a].To }
func (a Action) Title() string     { return actions[a].Title }
func (a Action) Done() string      { return actions[a].Done }

// ActionsFor lists the actions offered for a listing in status s.
func ActionsFor(s HotelStatus) []Action {
	var out []Action
	for _, a := range []Action{ActionApprove, ActionReject, ActionReapprove, ActionTakeOffline, ActionRestore} {
		if actions[a].From == s {
			out = append(out, a)
		}
	}
	return out
}
