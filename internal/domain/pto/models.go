package pto

import "time"

// Request lifecycle states. Approved, Denied and Cancelled are terminal;
// ChangesRequested loops back to editable.
const (
	StatusDraft            = "Draft"
	StatusSubmitted        = "Submitted"
	StatusApproved         = "Approved"
	StatusDenied           = "Denied"
	StatusChangesRequested = "ChangesRequested"
	StatusCancelled        = "Cancelled"
)

const (
	TypeVacation = "Vacation"
	TypeSick     = "Sick"
	TypeOther    = "Other"
)

func ValidType(requestType string) bool {
	return requestType == TypeVacation || requestType == TypeSick || requestType == TypeOther
}

// HistoryEntry is one line of the append-only audit trail on a request.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	Note      string    `json:"note,omitempty"`
}

// Request is a single PTO request. ApproverID/ApproverName snapshot the
// owner's manager at creation time and are not re-derived when the org chart
// changes. TotalDays is derived and recomputed on every date/flag change.
type Request struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Type           string         `json:"type"`
	StartDate      time.Time      `json:"startDate"`
	EndDate        time.Time      `json:"endDate"`
	IsHalfDayStart bool           `json:"isHalfDayStart"`
	IsHalfDayEnd   bool           `json:"isHalfDayEnd"`
	TotalDays      float64        `json:"totalDays"`
	Reason         string         `json:"reason,omitempty"`
	Status         string         `json:"status"`
	ApproverID     string         `json:"approverId,omitempty"`
	ApproverName   string         `json:"approverName,omitempty"`
	ManagerComment string         `json:"managerComment,omitempty"`
	EmployeeComment string        `json:"employeeComment,omitempty"`
	History        []HistoryEntry `json:"history"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	// Version is the store row token used for optimistic writes.
	Version int64 `json:"-"`
}

// Editable reports whether the owner may still modify the request content.
func (r Request) Editable() bool {
	return r.Status == StatusDraft || r.Status == StatusChangesRequested
}

// Terminal reports whether the request stopped moving through the workflow.
func (r Request) Terminal() bool {
	return r.Status == StatusApproved || r.Status == StatusDenied || r.Status == StatusCancelled
}

// Actor is the resolved current user performing an operation.
type Actor struct {
	ID    string
	Email string
	Role  string
}
