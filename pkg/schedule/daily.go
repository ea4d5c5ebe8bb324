package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// The business runs on Moscow wall-clock time. A fixed UTC+3 offset
// is used throughout; there is no DST in this zone.
const moscowOffset = 3 * time.Hour

// cooldown guards against a double fire when the clock jitters
// around the scheduled instant.
const cooldown = 5 * time.Second

// TimeOfDay is a wall-clock trigger time in Moscow.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimes parses a comma-separated "HH:MM,HH:MM" list.
func ParseTimes(raw string) ([]TimeOfDay, error) {
	var out []TimeOfDay
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		hh, mm, ok := strings.Cut(part, ":")
		if !ok {
			return nil, errors.Errorf("invalid time %q", part)
		}
		hour, err := strconv.Atoi(hh)
		if err != nil || hour < 0 || hour > 23 {
			return nil, errors.Errorf("invalid hour in %q", part)
		}
		minute, err := strconv.Atoi(mm)
		if err != nil || minute < 0 || minute > 59 {
			return nil, errors.Errorf("invalid minute in %q", part)
		}
		out = append(out, TimeOfDay{Hour: hour, Minute: minute})
	}
	if len(out) == 0 {
		return nil, errors.New("no trigger times configured")
	}
	return out, nil
}

// RunDaily fires task at each configured Moscow time, every day,
// until ctx is cancelled. A failing or panicking invocation is logged
// and swallowed; the loop always re-arms.
func RunDaily(ctx context.Context, log *logrus.Logger, name string, times []TimeOfDay, task func(context.Context) error) {
	labels := make([]string, len(times))
	for i, t := range times {
		labels[i] = t.String()
	}
	log.WithField("job", name).Infof("scheduled daily at %s MSK", strings.Join(labels, ", "))

	for {
		wait := time.Until(nextRun(time.Now(), times))
		select {
		case <-ctx.Done():
			log.WithField("job", name).Info("scheduler stopped")
			return
		case <-time.After(wait):
		}

		runOnce(ctx, log, name, task)

		select {
		case <-ctx.Done():
			log.WithField("job", name).Info("scheduler stopped")
			return
		case <-time.After(cooldown):
		}
	}
}

func runOnce(ctx context.Context, log *logrus.Logger, name string, task func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("job", name).Errorf("job panicked: %v", r)
		}
	}()

	log.WithField("job", name).Info("job started")
	if err := task(ctx); err != nil {
		log.WithField("job", name).WithError(err).Error("job failed")
		return
	}
	log.WithField("job", name).Info("job finished")
}

// nextRun picks the nearest upcoming occurrence of any configured
// time, in absolute terms. now may be in any location; the comparison
// happens on the Moscow clock.
func nextRun(now time.Time, times []TimeOfDay) time.Time {
	nowMSK := now.UTC().Add(moscowOffset)

	var nearest time.Time
	for _, t := range times {
		candidate := time.Date(nowMSK.Year(), nowMSK.Month(), nowMSK.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
		if !candidate.After(nowMSK) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if nearest.IsZero() || candidate.Before(nearest) {
			nearest = candidate
		}
	}
	// Back from the Moscow clock to absolute time.
	return nearest.Add(-moscowOffset)
}
