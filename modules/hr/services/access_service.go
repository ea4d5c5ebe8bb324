package services

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/mavis-digital/hrbot/modules/hr/domain/access"
	"github.com/mavis-digital/hrbot/modules/hr/domain/employee"
	"github.com/mavis-digital/hrbot/modules/hr/domain/pivot"
	"github.com/mavis-digital/hrbot/pkg/cache"
	"github.com/mavis-digital/hrbot/pkg/contacts"
	"github.com/mavis-digital/hrbot/pkg/eventbus"
)

// AccessService keeps the phone-keyed authorization table aligned with
// the pivot projection and answers the bot's authorization questions.
type AccessService struct {
	pivot         pivot.Repository
	repo          access.Repository
	roles         *cache.Roles
	bus           eventbus.EventBus
	log           *logrus.Logger
	settlingDelay time.Duration
	now           func() time.Time
}

func NewAccessService(
	pivotRepo pivot.Repository,
	repo access.Repository,
	roles *cache.Roles,
	bus eventbus.EventBus,
	log *logrus.Logger,
	settlingDelay time.Duration,
) *AccessService {
	return &AccessService{
		pivot:         pivotRepo,
		repo:          repo,
		roles:         roles,
		bus:           bus,
		log:           log,
		settlingDelay: settlingDelay,
		now:           time.Now,
	}
}

// Sync derives authorization rows from the pivot table: one row per
// mobile phone of every active employee, none for archived ones. Call
// it strictly after a pivot sync; a short settling delay lets the
// backend surface the fresh archival flags before the snapshot is
// taken.
func (s *AccessService) Sync(ctx context.Context) error {
	if s.settlingDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.settlingDelay):
		}
	}

	s.log.Info("authorization sync started")

	pivotRecords, err := s.pivot.GetAll(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch pivot")
	}
	grouped, err := s.repo.GetAllGrouped(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch authorization rows")
	}

	today := dateOnly(s.now())

	identities := make([]string, 0, len(pivotRecords))
	for identity := range pivotRecords {
		identities = append(identities, identity)
	}
	sort.Strings(identities)

	for _, identity := range identities {
		rec := pivotRecords[identity]
		if rec.Archived {
			continue
		}
		if err := s.syncActive(ctx, rec, grouped[identity], today); err != nil {
			s.log.WithError(err).WithField("identity", identity).Error("authorization sync failed for identity")
		}
	}

	for _, identity := range identities {
		rec := pivotRecords[identity]
		if !rec.Archived {
			continue
		}
		rows := grouped[identity]
		if len(rows) == 0 {
			continue
		}
		if err := s.revoke(ctx, identity, rows); err != nil {
			s.log.WithError(err).WithField("identity", identity).Error("authorization revoke failed")
		}
	}

	s.log.Info("authorization sync finished")
	return nil
}

func (s *AccessService) syncActive(ctx context.Context, rec pivot.Record, rows []access.Record, today time.Time) error {
	role := access.RoleForTenure(employee.ParseDate(rec.HireDate), today)

	phones := make([]string, 0, len(rec.Phones))
	for _, p := range rec.Phones {
		if contacts.IsMobile(p) {
			phones = append(phones, p)
		}
	}

	if len(rows) == 0 {
		for _, phone := range phones {
			created := access.Record{
				Identity: rec.Identity,
				FullName: rec.FullName,
				Phone:    phone,
				Role:     role,
			}
			if err := s.repo.Create(ctx, created); err != nil {
				return err
			}
			s.bus.Publish(access.GrantedEvent{Record: created})
		}
		if len(phones) > 0 {
			s.log.WithFields(logrus.Fields{"identity": rec.Identity, "rows": len(phones)}).Info("authorization rows created")
		}
		return nil
	}

	existingPhones := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		existingPhones[row.Phone] = struct{}{}
		if row.FullName != rec.FullName || row.Role != role {
			if err := s.repo.UpdateProfile(ctx, row.ID, rec.FullName, role); err != nil {
				return err
			}
			if row.MessengerID != "" && row.Role != role {
				s.roles.Invalidate(row.MessengerID)
			}
		}
	}

	for _, phone := range phones {
		if _, ok := existingPhones[phone]; ok {
			continue
		}
		created := access.Record{
			Identity: rec.Identity,
			FullName: rec.FullName,
			Phone:    phone,
			Role:     role,
		}
		if err := s.repo.Create(ctx, created); err != nil {
			return err
		}
		s.bus.Publish(access.GrantedEvent{Record: created})
	}
	return nil
}

func (s *AccessService) revoke(ctx context.Context, identity string, rows []access.Record) error {
	for _, row := range rows {
		if err := s.repo.Delete(ctx, row.ID); err != nil {
			return err
		}
		if row.MessengerID != "" {
			s.roles.Invalidate(row.MessengerID)
		}
	}
	s.bus.Publish(access.RevokedEvent{Identity: identity, Count: len(rows)})
	s.log.WithFields(logrus.Fields{"identity": identity, "rows": len(rows)}).Info("authorization rows deleted for archived employee")
	return nil
}

// RegisterMessenger binds a messenger account to the authorization row
// matching the given phone. The phone arrives as free text from the
// contact share and is normalized first.
func (s *AccessService) RegisterMessenger(ctx context.Context, rawPhone, messengerID string) (access.Record, error) {
	phone, ok := contacts.NormalizePhone(rawPhone)
	if !ok || !contacts.IsMobile(phone) {
		return access.Record{}, errors.Errorf("not a mobile phone: %q", rawPhone)
	}

	rec, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return access.Record{}, err
	}
	if rec.Role == "" {
		rec.Role = access.RoleEmployee
	}

	registeredAt := s.now().Format(employee.DateLayout)
	if err := s.repo.Register(ctx, rec.ID, messengerID, registeredAt); err != nil {
		return access.Record{}, err
	}

	rec.MessengerID = messengerID
	rec.RegisteredAt = registeredAt
	s.roles.Set(messengerID, string(rec.Role))
	s.log.WithFields(logrus.Fields{"identity": rec.Identity, "messenger_id": messengerID}).Info("messenger registered")
	return rec, nil
}

// CheckMessenger reports whether a messenger account is registered and
// with which role. Unknown accounts are not an error here: the chat
// layer treats them as unauthorized.
func (s *AccessService) CheckMessenger(ctx context.Context, messengerID string) (bool, access.Role, error) {
	role, err := s.GetRole(ctx, messengerID)
	if errors.Is(err, access.ErrNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, role, nil
}

// GetRole answers the per-update authorization check, serving from the
// cache when possible. key is a messenger id or an identity.
func (s *AccessService) GetRole(ctx context.Context, key string) (access.Role, error) {
	if cached, ok := s.roles.Get(key); ok {
		return access.Role(cached), nil
	}

	rows, err := s.resolve(ctx, key)
	if err != nil {
		return "", err
	}
	role := rows[0].Role
	s.roles.Set(key, string(role))
	return role, nil
}

// SetRole is the admin override: it bypasses tenure logic and rewrites
// every row of the resolved employee. The next automatic recheck may
// still promote a newcomer forward.
func (s *AccessService) SetRole(ctx context.Context, key string, role access.Role) error {
	rows, err := s.resolve(ctx, key)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := s.repo.SetRole(ctx, row.ID, role); err != nil {
			return err
		}
		if row.MessengerID != "" {
			s.roles.Set(row.MessengerID, string(role))
		}
	}
	s.roles.Set(key, string(role))
	return nil
}

// resolve looks a key up first as a messenger id, then as an identity.
func (s *AccessService) resolve(ctx context.Context, key string) ([]access.Record, error) {
	rec, err := s.repo.FindByMessenger(ctx, key)
	if err == nil {
		return []access.Record{rec}, nil
	}
	if !errors.Is(err, access.ErrNotFound) {
		return nil, err
	}

	rows, err := s.repo.FindByIdentity(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, access.ErrNotFound
	}
	return rows, nil
}
