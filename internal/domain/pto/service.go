// Package pto implements the request workflow: the state machine a PTO
// request moves through, the authorization guards on each transition, and
// the balance/notification side effects of decisions.
package pto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ptohub/internal/domain/auth"
	"ptohub/internal/domain/balance"
	"ptohub/internal/domain/calendar"
	"ptohub/internal/domain/directory"
	"ptohub/internal/domain/notify"
	"ptohub/internal/domain/settings"
	"ptohub/internal/store"
)

// Approver authorization policies. Live re-checks the current org chart at
// decision time (documented source behavior); snapshot trusts only the
// approver captured at creation. Admins may decide under either policy.
const (
	PolicyLive     = "live"
	PolicySnapshot = "snapshot"
)

type Options struct {
	ApproverPolicy          string
	EnforceBlackoutOnSubmit bool
}

type Service struct {
	store    store.Tabular
	dir      *directory.Service
	cal      *calendar.Service
	engine   *balance.Engine
	settings *settings.Service
	notify   *notify.Service
	opts     Options
	now      func() time.Time
}

func NewService(tabular store.Tabular, dir *directory.Service, cal *calendar.Service, engine *balance.Engine, cfg *settings.Service, notifier *notify.Service, opts Options) *Service {
	if opts.ApproverPolicy == "" {
		opts.ApproverPolicy = PolicyLive
	}
	return &Service{
		store:    tabular,
		dir:      dir,
		cal:      cal,
		engine:   engine,
		settings: cfg,
		notify:   notifier,
		opts:     opts,
		now:      time.Now,
	}
}

type CreateInput struct {
	Type           string
	StartDate      time.Time
	EndDate        time.Time
	IsHalfDayStart bool
	IsHalfDayEnd   bool
	Reason         string
	Status         string
}

func (s *Service) Create(ctx context.Context, actor Actor, input CreateInput) (Request, error) {
	if input.Type == "" || input.StartDate.IsZero() || input.EndDate.IsZero() {
		return Request{}, Errorf(CodeMissingParameters, "type, startDate and endDate are required")
	}
	if !ValidType(input.Type) {
		return Request{}, Errorf(CodeMissingParameters, "type must be %s, %s or %s", TypeVacation, TypeSick, TypeOther)
	}
	if input.EndDate.Before(input.StartDate) {
		return Request{}, Errorf(CodeInvalidDateRange, "endDate must be on or after startDate")
	}
	status := input.Status
	if status == "" {
		status = StatusDraft
	}
	if status != StatusDraft && status != StatusSubmitted {
		return Request{}, Errorf(CodeInvalidStatus, "a request can only be created as %s or %s", StatusDraft, StatusSubmitted)
	}

	owner, err := s.dir.FindByID(ctx, actor.ID)
	if errors.Is(err, directory.ErrNotFound) {
		return Request{}, Errorf(CodeUnauthorized, "unknown user")
	}
	if err != nil {
		return Request{}, err
	}

	blackouts, err := s.cal.ListBlackouts(ctx)
	if err != nil {
		return Request{}, err
	}
	if conflict := calendar.FindBlackoutConflict(input.StartDate, input.EndDate, blackouts); conflict != nil {
		return Request{}, Errorf(CodeBlackoutConflict, "requested dates overlap blackout %q", conflict.Name)
	}

	manager, err := s.dir.ManagerOf(ctx, owner)
	if errors.Is(err, directory.ErrNoManager) {
		return Request{}, Errorf(CodeNoApprover, "no manager assigned to approve this request")
	}
	if err != nil {
		return Request{}, err
	}

	totalDays, err := s.requestDays(ctx, input.StartDate, input.EndDate, input.IsHalfDayStart, input.IsHalfDayEnd)
	if err != nil {
		return Request{}, err
	}

	now := s.now().UTC()
	req := Request{
		ID:             "PTO-" + uuid.NewString(),
		UserID:         owner.ID,
		Type:           input.Type,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		IsHalfDayStart: input.IsHalfDayStart,
		IsHalfDayEnd:   input.IsHalfDayEnd,
		TotalDays:      totalDays,
		Reason:         input.Reason,
		Status:         status,
		ApproverID:     manager.ID,
		ApproverName:   manager.Name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	action := "Created"
	if status == StatusSubmitted {
		action = "Submitted"
	}
	req.History = append(req.History, HistoryEntry{Timestamp: now, ActorID: owner.ID, ActorName: owner.Name, Action: action})

	doc, err := json.Marshal(req)
	if err != nil {
		return Request{}, err
	}
	stored, err := s.store.Append(ctx, store.CollectionPtoRequests, store.Row{ID: req.ID, Doc: doc})
	if err != nil {
		return Request{}, err
	}
	req.Version = stored.Version

	if status == StatusSubmitted {
		s.notify.Email(ctx, manager.Email,
			fmt.Sprintf("PTO request from %s", owner.Name),
			fmt.Sprintf("%s requested %s PTO from %s to %s (%.1f days).",
				owner.Name, req.Type, formatDate(req.StartDate), formatDate(req.EndDate), req.TotalDays))
	}
	return req, nil
}

func (s *Service) Get(ctx context.Context, actor Actor, requestID string) (Request, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	visible, err := s.canView(ctx, actor, req)
	if err != nil {
		return Request{}, err
	}
	if !visible {
		return Request{}, Errorf(CodeUnauthorized, "not allowed to view this request")
	}
	return req, nil
}

type Filter struct {
	UserID string
	Status string
	From   time.Time
	To     time.Time
}

// List returns the requests the actor may see, narrowed by the filter.
// Authorization scoping happens before any caller-supplied filter.
func (s *Service) List(ctx context.Context, actor Actor, filter Filter) ([]Request, error) {
	rows, err := s.store.List(ctx, store.CollectionPtoRequests)
	if err != nil {
		return nil, err
	}
	out := make([]Request, 0, len(rows))
	for _, row := range rows {
		var req Request
		if err := json.Unmarshal(row.Doc, &req); err != nil {
			return nil, err
		}
		req.Version = row.Version

		visible, err := s.canView(ctx, actor, req)
		if err != nil {
			return nil, err
		}
		if !visible {
			continue
		}
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && req.EndDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && req.StartDate.After(filter.To) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

type UpdateInput struct {
	Type            *string
	StartDate       *time.Time
	EndDate         *time.Time
	IsHalfDayStart  *bool
	IsHalfDayEnd    *bool
	Reason          *string
	EmployeeComment *string
}

func (s *Service) Update(ctx context.Context, actor Actor, requestID string, input UpdateInput) (Request, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.UserID != actor.ID {
		return Request{}, Errorf(CodeUnauthorized, "only the owner may edit a request")
	}
	if !req.Editable() {
		return Request{}, Errorf(CodeInvalidStatus, "a %s request cannot be edited", req.Status)
	}

	datesChanged := false
	if input.Type != nil {
		if !ValidType(*input.Type) {
			return Request{}, Errorf(CodeMissingParameters, "type must be %s, %s or %s", TypeVacation, TypeSick, TypeOther)
		}
		req.Type = *input.Type
	}
	if input.StartDate != nil {
		req.StartDate = *input.StartDate
		datesChanged = true
	}
	if input.EndDate != nil {
		req.EndDate = *input.EndDate
		datesChanged = true
	}
	if input.IsHalfDayStart != nil {
		req.IsHalfDayStart = *input.IsHalfDayStart
		datesChanged = true
	}
	if input.IsHalfDayEnd != nil {
		req.IsHalfDayEnd = *input.IsHalfDayEnd
		datesChanged = true
	}
	if input.Reason != nil {
		req.Reason = *input.Reason
	}
	if input.EmployeeComment != nil {
		req.EmployeeComment = *input.EmployeeComment
	}

	if req.EndDate.Before(req.StartDate) {
		return Request{}, Errorf(CodeInvalidDateRange, "endDate must be on or after startDate")
	}
	if datesChanged {
		totalDays, err := s.requestDays(ctx, req.StartDate, req.EndDate, req.IsHalfDayStart, req.IsHalfDayEnd)
		if err != nil {
			return Request{}, err
		}
		req.TotalDays = totalDays
	}

	s.appendHistory(ctx, &req, actor, "Updated", "")
	return s.save(ctx, req)
}

func (s *Service) Submit(ctx context.Context, actor Actor, requestID string) (Request, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.UserID != actor.ID {
		return Request{}, Errorf(CodeUnauthorized, "only the owner may submit a request")
	}
	if req.Status != StatusDraft && req.Status != StatusChangesRequested {
		return Request{}, Errorf(CodeInvalidStatus, "only %s or %s requests can be submitted", StatusDraft, StatusChangesRequested)
	}

	if s.opts.EnforceBlackoutOnSubmit {
		blackouts, err := s.cal.ListBlackouts(ctx)
		if err != nil {
			return Request{}, err
		}
		if conflict := calendar.FindBlackoutConflict(req.StartDate, req.EndDate, blackouts); conflict != nil {
			return Request{}, Errorf(CodeBlackoutConflict, "requested dates overlap blackout %q", conflict.Name)
		}
	}

	req.Status = StatusSubmitted
	s.appendHistory(ctx, &req, actor, "Submitted", "")
	saved, err := s.save(ctx, req)
	if err != nil {
		return Request{}, err
	}

	if approver, err := s.dir.FindByID(ctx, saved.ApproverID); err == nil {
		s.notify.Email(ctx, approver.Email,
			fmt.Sprintf("PTO request %s awaiting approval", saved.ID),
			fmt.Sprintf("A %s request for %s to %s (%.1f days) is waiting for your decision.",
				saved.Type, formatDate(saved.StartDate), formatDate(saved.EndDate), saved.TotalDays))
	}
	return saved, nil
}

func (s *Service) Approve(ctx context.Context, actor Actor, requestID, comment string) (Request, error) {
	req, err := s.authorizeDecision(ctx, actor, requestID)
	if err != nil {
		return Request{}, err
	}

	req.Status = StatusApproved
	if strings.TrimSpace(comment) != "" {
		req.ManagerComment = comment
	}
	s.appendHistory(ctx, &req, actor, "Approved", comment)
	saved, err := s.save(ctx, req)
	if err != nil {
		return Request{}, err
	}

	s.snapshotBalance(ctx, saved)
	owner, ownerErr := s.dir.FindByID(ctx, saved.UserID)
	if ownerErr == nil {
		s.notify.Email(ctx, owner.Email,
			fmt.Sprintf("PTO request %s approved", saved.ID),
			fmt.Sprintf("Your %s request for %s to %s was approved.", saved.Type, formatDate(saved.StartDate), formatDate(saved.EndDate)))
	}
	if cfg, err := s.settings.Get(ctx); err == nil && cfg.SharedCalendarID != "" {
		title := fmt.Sprintf("%s — PTO", ownerName(owner, saved.UserID))
		s.notify.AddCalendarEvent(ctx, cfg.SharedCalendarID, title, saved.StartDate, saved.EndDate)
	}
	return saved, nil
}

func (s *Service) Deny(ctx context.Context, actor Actor, requestID, comment string) (Request, error) {
	if strings.TrimSpace(comment) == "" {
		return Request{}, Errorf(CodeMissingParameter, "a comment is required to deny a request")
	}
	req, err := s.authorizeDecision(ctx, actor, requestID)
	if err != nil {
		return Request{}, err
	}

	req.Status = StatusDenied
	req.ManagerComment = comment
	s.appendHistory(ctx, &req, actor, "Denied", comment)
	saved, err := s.save(ctx, req)
	if err != nil {
		return Request{}, err
	}

	s.snapshotBalance(ctx, saved)
	if owner, err := s.dir.FindByID(ctx, saved.UserID); err == nil {
		s.notify.Email(ctx, owner.Email,
			fmt.Sprintf("PTO request %s denied", saved.ID),
			fmt.Sprintf("Your %s request for %s to %s was denied: %s", saved.Type, formatDate(saved.StartDate), formatDate(saved.EndDate), comment))
	}
	return saved, nil
}

// RequestChanges sends a submitted request back to the owner for edits.
func (s *Service) RequestChanges(ctx context.Context, actor Actor, requestID, comment string) (Request, error) {
	if strings.TrimSpace(comment) == "" {
		return Request{}, Errorf(CodeMissingParameter, "a comment is required to request changes")
	}
	req, err := s.authorizeDecision(ctx, actor, requestID)
	if err != nil {
		return Request{}, err
	}

	req.Status = StatusChangesRequested
	req.ManagerComment = comment
	s.appendHistory(ctx, &req, actor, "ChangesRequested", comment)
	saved, err := s.save(ctx, req)
	if err != nil {
		return Request{}, err
	}

	if owner, err := s.dir.FindByID(ctx, saved.UserID); err == nil {
		s.notify.Email(ctx, owner.Email,
			fmt.Sprintf("Changes requested on PTO request %s", saved.ID),
			comment)
	}
	return saved, nil
}

func (s *Service) Cancel(ctx context.Context, actor Actor, requestID string) (Request, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.UserID != actor.ID {
		return Request{}, Errorf(CodeUnauthorized, "only the owner may cancel a request")
	}
	if req.Status != StatusDraft && req.Status != StatusSubmitted {
		return Request{}, Errorf(CodeInvalidStatus, "a %s request cannot be cancelled", req.Status)
	}

	wasSubmitted := req.Status == StatusSubmitted
	req.Status = StatusCancelled
	s.appendHistory(ctx, &req, actor, "Cancelled", "")
	saved, err := s.save(ctx, req)
	if err != nil {
		return Request{}, err
	}

	if wasSubmitted {
		if approver, err := s.dir.FindByID(ctx, saved.ApproverID); err == nil {
			s.notify.Email(ctx, approver.Email,
				fmt.Sprintf("PTO request %s cancelled", saved.ID),
				fmt.Sprintf("The request for %s to %s was cancelled by its owner.", formatDate(saved.StartDate), formatDate(saved.EndDate)))
		}
	}
	return saved, nil
}

// Balance resolves the PTO balance a caller may see: their own, a direct
// report's, or anyone's for admins.
func (s *Service) Balance(ctx context.Context, actor Actor, userID string, year int) (balance.Balance, error) {
	if userID == "" {
		userID = actor.ID
	}
	if year == 0 {
		year = s.now().Year()
	}
	if userID != actor.ID && !isAdmin(actor) {
		managed, err := s.dir.IsManagerOf(ctx, actor.ID, userID)
		if err != nil && !errors.Is(err, directory.ErrNotFound) {
			return balance.Balance{}, err
		}
		if !managed {
			return balance.Balance{}, Errorf(CodeUnauthorized, "not allowed to view this balance")
		}
	}
	result, err := s.engine.ComputeForUserID(ctx, userID, year)
	if errors.Is(err, directory.ErrNotFound) {
		return balance.Balance{}, Errorf(CodeNotFound, "user %s not found", userID)
	}
	return result, err
}

// authorizeDecision loads a request and checks the approve/deny guard: the
// request must be Submitted and the actor an authorized approver. Both
// failures surface as UNAUTHORIZED so a misdirected approver cannot probe
// request states.
func (s *Service) authorizeDecision(ctx context.Context, actor Actor, requestID string) (Request, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusSubmitted {
		return Request{}, Errorf(CodeUnauthorized, "only a %s request can be decided", StatusSubmitted)
	}
	allowed, err := s.isApprover(ctx, actor, req)
	if err != nil {
		return Request{}, err
	}
	if !allowed {
		return Request{}, Errorf(CodeUnauthorized, "not allowed to decide this request")
	}
	return req, nil
}

func (s *Service) isApprover(ctx context.Context, actor Actor, req Request) (bool, error) {
	if isAdmin(actor) {
		return true, nil
	}
	if s.opts.ApproverPolicy == PolicySnapshot {
		return actor.ID == req.ApproverID, nil
	}
	managed, err := s.dir.IsManagerOf(ctx, actor.ID, req.UserID)
	if err != nil && !errors.Is(err, directory.ErrNotFound) {
		return false, err
	}
	return managed, nil
}

func (s *Service) canView(ctx context.Context, actor Actor, req Request) (bool, error) {
	if isAdmin(actor) || req.UserID == actor.ID || req.ApproverID == actor.ID {
		return true, nil
	}
	managed, err := s.dir.IsManagerOf(ctx, actor.ID, req.UserID)
	if err != nil && !errors.Is(err, directory.ErrNotFound) {
		return false, err
	}
	return managed, nil
}

func (s *Service) load(ctx context.Context, requestID string) (Request, error) {
	if strings.TrimSpace(requestID) == "" {
		return Request{}, Errorf(CodeMissingParameter, "requestId is required")
	}
	row, err := s.store.Get(ctx, store.CollectionPtoRequests, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return Request{}, Errorf(CodeNotFound, "request %s not found", requestID)
	}
	if err != nil {
		return Request{}, err
	}
	var req Request
	if err := json.Unmarshal(row.Doc, &req); err != nil {
		return Request{}, err
	}
	req.Version = row.Version
	return req, nil
}

func (s *Service) save(ctx context.Context, req Request) (Request, error) {
	req.UpdatedAt = s.now().UTC()
	doc, err := json.Marshal(req)
	if err != nil {
		return Request{}, err
	}
	stored, err := s.store.Update(ctx, store.CollectionPtoRequests, store.Row{ID: req.ID, Version: req.Version, Doc: doc})
	if errors.Is(err, store.ErrVersionConflict) {
		return Request{}, Errorf(CodeConflict, "request %s was modified by another writer", req.ID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return Request{}, Errorf(CodeNotFound, "request %s not found", req.ID)
	}
	if err != nil {
		return Request{}, err
	}
	req.Version = stored.Version
	return req, nil
}

func (s *Service) appendHistory(ctx context.Context, req *Request, actor Actor, action, note string) {
	name := actor.Email
	if user, err := s.dir.FindByID(ctx, actor.ID); err == nil && user.Name != "" {
		name = user.Name
	}
	req.History = append(req.History, HistoryEntry{
		Timestamp: s.now().UTC(),
		ActorID:   actor.ID,
		ActorName: name,
		Action:    action,
		Note:      note,
	})
}

// snapshotBalance recomputes and persists the owner's balance for the
// request's start year. The transition is already durable; a snapshot
// failure is logged and swallowed.
func (s *Service) snapshotBalance(ctx context.Context, req Request) {
	result, err := s.engine.ComputeForUserID(ctx, req.UserID, req.StartDate.Year())
	if err != nil {
		slog.Warn("balance recompute failed", "requestId", req.ID, "userId", req.UserID, "err", err)
		return
	}
	if err := s.engine.SaveSnapshot(ctx, result); err != nil {
		slog.Warn("balance snapshot failed", "requestId", req.ID, "userId", req.UserID, "err", err)
	}
}

func (s *Service) requestDays(ctx context.Context, start, end time.Time, halfStart, halfEnd bool) (float64, error) {
	holidays, err := s.cal.ListHolidays(ctx)
	if err != nil {
		return 0, err
	}
	return calendar.CountBusinessDays(start, end, halfStart, halfEnd, holidays), nil
}

func isAdmin(actor Actor) bool {
	return actor.Role == auth.RoleAdmin
}

func ownerName(owner directory.User, fallback string) string {
	if owner.Name != "" {
		return owner.Name
	}
	return fallback
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
