package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Duration is a time.Duration read from the environment. Besides the
// time.ParseDuration syntax it accepts a leading day count, so "7d" and
// "1d12h" are valid. Negative values are rejected.
type Duration struct {
	time.Duration
}

// EnvDecode implements envconfig.Decoder. An empty value leaves d unchanged.
func (d *Duration) EnvDecode(_ context.Context, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}

	parsed, err := parseDuration(v)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func parseDuration(v string) (time.Duration, error) {
	var total time.Duration

	if daysStr, rest, ok := strings.Cut(v, "d"); ok {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 0 {
			return 0, fmt.Errorf("invalid days value %q", daysStr)
		}
		total = time.Duration(days) * day
		v = rest
	}

	if v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %w", err)
		}
		total += parsed
	}

	if total < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	return total, nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	return d.EnvDecode(context.Background(), string(text))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// String renders whole days with the "d" suffix so values round-trip.
func (d Duration) String() string {
	if d.Duration >= day && d.Duration%day == 0 {
		return strconv.FormatInt(int64(d.Duration/day), 10) + "d"
	}
	return d.Duration.String()
}
