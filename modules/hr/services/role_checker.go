package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/mavis-digital/hrbot/modules/hr/domain/access"
	"github.com/mavis-digital/hrbot/modules/hr/domain/employee"
	"github.com/mavis-digital/hrbot/modules/hr/domain/pivot"
	"github.com/mavis-digital/hrbot/pkg/cache"
)

// RoleChecker promotes newcomers whose three-month window has passed.
// It only ever moves newcomer to employee; nothing is demoted.
type RoleChecker struct {
	pivot pivot.Repository
	repo  access.Repository
	roles *cache.Roles
	log   *logrus.Logger
	now   func() time.Time
}

func NewRoleChecker(pivotRepo pivot.Repository, repo access.Repository, roles *cache.Roles, log *logrus.Logger) *RoleChecker {
	return &RoleChecker{
		pivot: pivotRepo,
		repo:  repo,
		roles: roles,
		log:   log,
		now:   time.Now,
	}
}

// CheckNow promotes every newcomer row whose pivot hire date is at
// least three months old. A missing pivot row or an unknown hire date
// leaves the row as is.
func (r *RoleChecker) CheckNow(ctx context.Context) (int, error) {
	newcomers, err := r.repo.GetByRole(ctx, access.RoleNewcomer)
	if err != nil {
		return 0, errors.Wrap(err, "fetch newcomers")
	}
	if len(newcomers) == 0 {
		r.log.Info("no newcomers to check")
		return 0, nil
	}

	pivotRecords, err := r.pivot.GetAll(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "fetch pivot")
	}

	today := dateOnly(r.now())
	promoted := 0

	for _, row := range newcomers {
		current, ok := pivotRecords[row.Identity]
		if !ok {
			r.log.WithField("identity", row.Identity).Warn("newcomer has no pivot row, skipping")
			continue
		}

		hireDate := employee.ParseDate(current.HireDate)
		if hireDate.IsZero() {
			continue
		}
		if access.RoleForTenure(hireDate, today) == access.RoleNewcomer {
			continue
		}

		if err := r.repo.SetRole(ctx, row.ID, access.RoleEmployee); err != nil {
			r.log.WithError(err).WithField("identity", row.Identity).Error("role promotion failed")
			continue
		}
		if row.MessengerID != "" {
			r.roles.Set(row.MessengerID, string(access.RoleEmployee))
		}
		promoted++
		r.log.WithFields(logrus.Fields{"identity": row.Identity, "name": row.FullName}).Info("newcomer promoted to employee")
	}

	r.log.WithFields(logrus.Fields{"promoted": promoted, "checked": len(newcomers)}).Info("role check finished")
	return promoted, nil
}
