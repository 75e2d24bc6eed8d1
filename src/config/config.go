package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

const (
	defaultHoldTTLMinutes = 10
	defaultSweepSeconds   = 60
	defaultMaxActiveHolds = 1
	defaultCurrency       = "usd"
)

func envUint(name string, fallback uint) uint {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	atoi, err := strconv.Atoi(v)
	if err != nil || atoi < 0 {
		return fallback
	}
	return uint(atoi)
}

// HoldTTL is the default time a reserved hold stays valid. Events may carry
// their own override (hold_ttl_minutes).
func HoldTTL() time.Duration {
	return time.Duration(envUint("HOLD_TTL_MINUTES", defaultHoldTTLMinutes)) * time.Minute
}

// SweepInterval is how often the background expiry sweep runs.
func SweepInterval() time.Duration {
	return time.Duration(envUint("HOLD_SWEEP_SECONDS", defaultSweepSeconds)) * time.Second
}

// MaxActiveHoldsPerEvent caps the reserved holds a member may keep against a
// single event. Whether more than one should ever be allowed is an open
// product question, so it is a knob rather than a constant.
func MaxActiveHoldsPerEvent() uint {
	return envUint("MAX_ACTIVE_HOLDS_PER_EVENT", defaultMaxActiveHolds)
}

func Currency() string {
	c := os.Getenv("CURRENCY")
	if c == "" {
		return defaultCurrency
	}
	return c
}
