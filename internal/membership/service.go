package membership

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bukohub/gym-fusion-training-sub001/internal/apperr"
	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
	"github.com/bukohub/gym-fusion-training-sub001/internal/metrics"
	"github.com/bukohub/gym-fusion-training-sub001/internal/plan"
	"github.com/bukohub/gym-fusion-training-sub001/internal/user"
)

const (
	statsExpiringDays = 7
	defaultLogLimit   = 100
	maxLogLimit       = 500

	// validation_logs.identifier is VARCHAR(255).
	maxIdentifierLength = 255
)

var (
	ErrInvalidDays  = apperr.BadRequest("days must be zero or greater")
	ErrPlanInactive = apperr.BadRequest("membership plan is not active")
	ErrInvalidState = apperr.BadRequest("invalid membership status")

	errInvalidIdentifier = errors.New("malformed identifier")
)

type PlanGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*plan.MembershipPlan, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByCedula(ctx context.Context, cedula string) (*user.User, error)
	FindByHoller(ctx context.Context, holler string) (*user.User, error)
}

type Notifier interface {
	SendMembershipRenewal(ctx context.Context, email, name, planName string, endDate time.Time) error
	SendExpiryReminder(ctx context.Context, email, name string, endDate time.Time) error
}

type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateMembershipRequest) (*Membership, error)
	Renew(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Membership, error)
	Suspend(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Membership, error)
	Activate(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Membership, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Membership, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]Membership, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	Expiring(ctx context.Context, actor auth.Actor, days int) ([]Membership, error)
	Stats(ctx context.Context, actor auth.Actor) (*Stats, error)

	ValidateByMembershipID(ctx context.Context, actor auth.Actor, rawID string) (*ValidationResult, error)
	ValidateByUserID(ctx context.Context, actor auth.Actor, rawID string) (*ValidationResult, error)
	ValidateByCedula(ctx context.Context, actor auth.Actor, cedula string) (*ValidationResult, error)
	ValidateByHoller(ctx context.Context, actor auth.Actor, holler string) (*ValidationResult, error)
	ListValidationLogs(ctx context.Context, actor auth.Actor, filter LogFilter) ([]ValidationLog, error)

	SendExpiryReminders(ctx context.Context, days int) (int, error)
}

type service struct {
	repo     Repository
	plans    PlanGetter
	users    UserLookup
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, plans PlanGetter, users UserLookup, notifier Notifier) Service {
	return &service{
		repo:     repo,
		plans:    plans,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// Evaluate reports whether m is usable at now. SUSPENDED always loses; otherwise
// the dates decide, whatever the stored status says about expiry.
func Evaluate(m *Membership, now time.Time) (bool, string) {
	switch {
	case m.Status == StatusSuspended:
		return false, ReasonSuspended
	case m.Status != StatusActive:
		return false, ReasonExpired
	case now.Before(m.StartDate):
		return false, ReasonNotStarted
	case now.After(m.EndDate):
		return false, ReasonExpired
	}
	return true, ReasonValid
}

func IsCurrentlyValid(m *Membership, now time.Time) bool {
	ok, _ := Evaluate(m, now)
	return ok
}

// pickForValidation chooses the membership a user-based validation reports on:
// the valid one ending last, or failing that the most recently created.
func pickForValidation(memberships []Membership, now time.Time) *Membership {
	var best, latest *Membership
	for i := range memberships {
		m := &memberships[i]
		if IsCurrentlyValid(m, now) && (best == nil || m.EndDate.After(best.EndDate)) {
			best = m
		}
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) {
			latest = m
		}
	}
	if best != nil {
		return best
	}
	return latest
}

// InExpiryWindow reports whether m is ACTIVE and ends within [now, now+days].
func InExpiryWindow(m *Membership, now time.Time, days int) bool {
	limit := now.AddDate(0, 0, days)
	return m.Status == StatusActive && !m.EndDate.Before(now) && !m.EndDate.After(limit)
}

func daysRemaining(m *Membership, now time.Time) int {
	return int(m.EndDate.Sub(now).Hours() / 24)
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateMembershipRequest) (*Membership, error) {
	if err := auth.Authorize(actor, auth.OpMembershipWrite); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	p, err := s.plans.GetByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrPlanInactive
	}

	start := s.now()
	if req.StartDate != nil {
		start = *req.StartDate
	}

	m, err := s.repo.Create(ctx, &Membership{
		UserID:    req.UserID,
		PlanID:    p.ID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, p.DurationDays),
		Status:    StatusActive,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMembership("created")
	logger.Info("membership created",
		"membership_id", m.ID.String(),
		"user_id", m.UserID.String(),
		"plan_id", m.PlanID.String(),
		"end_date", m.EndDate,
	)
	return m, nil
}

// Renew restarts the membership from now with the plan's current duration and
// forces it back to ACTIVE, even when suspended.
func (s *service) Renew(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Membership, error) {
	if err := auth.Authorize(actor, auth.OpMembershipWrite); err != nil {
		return nil, err
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.plans.GetByID(ctx, m.PlanID)
	if err != nil {
		return nil, err
	}

	start := s.now()
	renewed, err := s.repo.UpdatePeriod(ctx, id, start, start.AddDate(0, 0, p.DurationDays), StatusActive)
	if err != nil {
		return nil, err
	}

	metrics.RecordMembership("renewed")
	logger.Info("membership renewed", "membership_id", id.String(), "end_date", renewed.EndDate)

	s.notifyRenewal(ctx, renewed, p.Name)
	return renewed, nil
}

func (s *service) notifyRenewal(ctx context.Context, m *Membership, planName string) {
	if s.notifier == nil {
		return
	}
	u, err := s.users.FindByID(ctx, m.UserID)
	if err != nil {
		logger.Warn("renewal notice skipped", "membership_id", m.ID.String(), "error", err.Error())
		return
	}
	if err := s.notifier.SendMembershipRenewal(ctx, u.Email, u.Name, planName, m.EndDate); err != nil {
		logger.Warn("renewal notice not queued", "membership_id", m.ID.String(), "error", err.Error())
	}
}

func (s *service) setStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, status Status, action string) (*Membership, error) {
	if err := auth.Authorize(actor, auth.OpMembershipWrite); err != nil {
		return nil, err
	}

	m, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	metrics.RecordMembership(action)
	logger.Info("membership status changed", "membership_id", id.String(), "status", string(status))
	return m, nil
}

func (s *service) Suspend(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Membership, error) {
	return s.setStatus(ctx, actor, id, StatusSuspended, "suspended")
}

func (s *service) Activate(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Membership, error) {
	return s.setStatus(ctx, actor, id, StatusActive, "activated")
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeSelf(actor, auth.OpMembershipRead, m.UserID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]Membership, error) {
	var err error
	if filter.UserID != nil {
		err = auth.AuthorizeSelf(actor, auth.OpMembershipRead, *filter.UserID)
	} else {
		err = auth.Authorize(actor, auth.OpMembershipRead)
	}
	if err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrInvalidState
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Authorize(actor, auth.OpMembershipDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Expiring lists ACTIVE memberships whose end date falls in [now, now+days].
func (s *service) Expiring(ctx context.Context, actor auth.Actor, days int) ([]Membership, error) {
	if err := auth.Authorize(actor, auth.OpMembershipRead); err != nil {
		return nil, err
	}
	return s.expiring(ctx, days)
}

func (s *service) expiring(ctx context.Context, days int) ([]Membership, error) {
	if days < 0 {
		return nil, ErrInvalidDays
	}
	now := s.now()
	candidates, err := s.repo.ListExpiring(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}

	memberships := make([]Membership, 0, len(candidates))
	for i := range candidates {
		if InExpiryWindow(&candidates[i], now, days) {
			memberships = append(memberships, candidates[i])
		}
	}
	return memberships, nil
}

func (s *service) Stats(ctx context.Context, actor auth.Actor) (*Stats, error) {
	if err := auth.Authorize(actor, auth.OpMembershipRead); err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	valid, err := s.repo.CountValidAt(ctx, now)
	if err != nil {
		return nil, err
	}

	expiring, err := s.repo.CountExpiring(ctx, now, now.AddDate(0, 0, statsExpiringDays))
	if err != nil {
		return nil, err
	}

	return &Stats{
		Total:            counts[StatusActive] + counts[StatusSuspended] + counts[StatusExpired],
		Active:           counts[StatusActive],
		Suspended:        counts[StatusSuspended],
		Expired:          counts[StatusExpired],
		CurrentlyValid:   valid,
		ExpiringThisWeek: expiring,
	}, nil
}

// ValidateByMembershipID takes the raw path value so that malformed ids are
// still recorded in the validation log.
func (s *service) ValidateByMembershipID(ctx context.Context, actor auth.Actor, rawID string) (*ValidationResult, error) {
	if err := auth.Authorize(actor, auth.OpMembershipValidate); err != nil {
		return nil, err
	}

	now := s.now()
	result := &ValidationResult{
		Type:        ValidationByMembershipID,
		Identifier:  rawID,
		ValidatedAt: now,
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		result.Reason = ReasonInvalidIdentifier
		return result, s.record(ctx, actor, result)
	}

	m, err := s.repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, ErrMembershipNotFound):
		result.Reason = ReasonMembershipNotFound
	case err != nil:
		return nil, err
	default:
		s.evaluateInto(result, m, now)
	}

	return result, s.record(ctx, actor, result)
}

func (s *service) ValidateByUserID(ctx context.Context, actor auth.Actor, rawID string) (*ValidationResult, error) {
	return s.validateUser(ctx, actor, ValidationByUserID, rawID, func() (*user.User, error) {
		userID, err := uuid.Parse(rawID)
		if err != nil {
			return nil, errInvalidIdentifier
		}
		return s.users.FindByID(ctx, userID)
	})
}

func (s *service) ValidateByCedula(ctx context.Context, actor auth.Actor, cedula string) (*ValidationResult, error) {
	return s.validateUser(ctx, actor, ValidationByCedula, cedula, func() (*user.User, error) {
		return s.users.FindByCedula(ctx, cedula)
	})
}

func (s *service) ValidateByHoller(ctx context.Context, actor auth.Actor, holler string) (*ValidationResult, error) {
	return s.validateUser(ctx, actor, ValidationByHoller, holler, func() (*user.User, error) {
		return s.users.FindByHoller(ctx, holler)
	})
}

func (s *service) validateUser(ctx context.Context, actor auth.Actor, vtype ValidationType, identifier string, lookup func() (*user.User, error)) (*ValidationResult, error) {
	if err := auth.Authorize(actor, auth.OpMembershipValidate); err != nil {
		return nil, err
	}

	now := s.now()
	result := &ValidationResult{
		Type:        vtype,
		Identifier:  identifier,
		ValidatedAt: now,
	}

	u, err := lookup()
	switch {
	case errors.Is(err, errInvalidIdentifier):
		result.Reason = ReasonInvalidIdentifier
		return result, s.record(ctx, actor, result)
	case errors.Is(err, user.ErrUserNotFound):
		result.Reason = ReasonUserNotFound
		return result, s.record(ctx, actor, result)
	case err != nil:
		return nil, err
	}
	result.UserID = &u.ID
	result.UserName = u.Name

	memberships, err := s.repo.List(ctx, ListFilter{UserID: &u.ID})
	if err != nil {
		return nil, err
	}

	if m := pickForValidation(memberships, now); m != nil {
		s.evaluateInto(result, m, now)
	} else {
		result.Reason = ReasonNoMemberships
	}

	return result, s.record(ctx, actor, result)
}

func (s *service) evaluateInto(result *ValidationResult, m *Membership, now time.Time) {
	result.Membership = m
	result.UserID = &m.UserID
	result.Valid, result.Reason = Evaluate(m, now)
	if result.Valid {
		result.DaysRemaining = daysRemaining(m, now)
	}
}

// record appends the audit row for a validation attempt.
func (s *service) record(ctx context.Context, actor auth.Actor, result *ValidationResult) error {
	entry := &ValidationLog{
		UserID:         result.UserID,
		ValidationType: result.Type,
		Identifier:     clampIdentifier(result.Identifier),
		Success:        result.Valid,
		Reason:         result.Reason,
		ValidatedBy:    &actor.UserID,
	}
	if result.Membership != nil {
		entry.MembershipID = &result.Membership.ID
	}

	if err := s.repo.CreateValidationLog(ctx, entry); err != nil {
		return err
	}

	metrics.RecordValidation(string(result.Type), result.Valid)
	logger.Info("membership validated",
		"type", string(result.Type),
		"identifier", result.Identifier,
		"valid", result.Valid,
		"reason", result.Reason,
	)
	return nil
}

// clampIdentifier cuts the identifier to the column width on a rune boundary.
func clampIdentifier(identifier string) string {
	runes := []rune(identifier)
	if len(runes) <= maxIdentifierLength {
		return identifier
	}
	return string(runes[:maxIdentifierLength])
}

func (s *service) ListValidationLogs(ctx context.Context, actor auth.Actor, filter LogFilter) ([]ValidationLog, error) {
	if err := auth.Authorize(actor, auth.OpMembershipRead); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLogLimit
	}
	if filter.Limit > maxLogLimit {
		filter.Limit = maxLogLimit
	}
	return s.repo.ListValidationLogs(ctx, filter)
}

// SendExpiryReminders queues one reminder per membership expiring within days
// and returns how many were queued. Failures for one member do not stop the run.
func (s *service) SendExpiryReminders(ctx context.Context, days int) (int, error) {
	memberships, err := s.expiring(ctx, days)
	if err != nil {
		return 0, err
	}
	if s.notifier == nil {
		return 0, nil
	}

	sent := 0
	for _, m := range memberships {
		u, err := s.users.FindByID(ctx, m.UserID)
		if err != nil {
			logger.Warn("expiry reminder skipped", "membership_id", m.ID.String(), "error", err.Error())
			continue
		}
		if err := s.notifier.SendExpiryReminder(ctx, u.Email, u.Name, m.EndDate); err != nil {
			logger.Warn("expiry reminder not queued", "membership_id", m.ID.String(), "error", err.Error())
			continue
		}
		sent++
	}

	metrics.RecordExpiryReminders(sent)
	logger.Info("expiry reminders queued", "count", sent, "candidates", len(memberships), "days", days)
	return sent, nil
}
