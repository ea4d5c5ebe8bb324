package workcal

import (
	_ "embed"
	"io"
	"time"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

//go:embed holidays.yaml
var defaultHolidays []byte

type monthDay struct {
	month time.Month
	day   int
}

// Calendar answers working-day questions for survey scheduling:
// Saturdays, Sundays and a fixed set of public holidays are
// non-working.
type Calendar struct {
	holidays map[monthDay]struct{}
}

type holidayFile struct {
	Holidays []string `yaml:"holidays"`
}

// Default returns the calendar built from the embedded holiday set.
func Default() *Calendar {
	c, err := parse(defaultHolidays)
	if err != nil {
		// The embedded file is part of the build; a parse failure here
		// is a programming error.
		panic(err)
	}
	return c
}

// Load reads a holiday override in the same YAML shape as the
// embedded default.
func Load(r io.Reader) (*Calendar, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read holiday calendar")
	}
	return parse(raw)
}

func parse(raw []byte) (*Calendar, error) {
	var f holidayFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(err, "parse holiday calendar")
	}
	c := &Calendar{holidays: make(map[monthDay]struct{}, len(f.Holidays))}
	for _, entry := range f.Holidays {
		d, err := time.Parse("01-02", entry)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid holiday entry %q", entry)
		}
		c.holidays[monthDay{d.Month(), d.Day()}] = struct{}{}
	}
	return c, nil
}

func (c *Calendar) IsHoliday(d time.Time) bool {
	_, ok := c.holidays[monthDay{d.Month(), d.Day()}]
	return ok
}

func (c *Calendar) IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (c *Calendar) IsNonWorking(d time.Time) bool {
	return c.IsHoliday(d) || c.IsWeekend(d)
}

// NextWorkingDay rolls forward day by day until a working day is
// found. A working day is returned unchanged.
func (c *Calendar) NextWorkingDay(d time.Time) time.Time {
	for c.IsNonWorking(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// Adjust moves a due date off weekends and holidays and reports
// whether any adjustment happened.
func (c *Calendar) Adjust(d time.Time) (time.Time, bool) {
	adjusted := c.NextWorkingDay(d)
	return adjusted, !adjusted.Equal(d)
}
