package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ContactPolicy decides what happens when a customer has no related contacts.
type ContactPolicy string

const (
	// ContactPolicyFallback draws from the whole contacts table instead.
	ContactPolicyFallback ContactPolicy = "fallback"
	// ContactPolicyStrict surfaces NoMatchingContactError to the caller.
	ContactPolicyStrict ContactPolicy = "strict"
)

// GeneratorConfig is the value object handed to every generation call.
type GeneratorConfig struct {
	DaysAgo               int
	MaxConversationRounds int
	MaxRoundsLimit        int
	FixedRounds           bool
	MaxTicketsPerRequest  int
	ContactPolicy         ContactPolicy
	MessageGapMin         time.Duration
	MessageGapMax         time.Duration
	ActiveProfile         string
	ProfilesFile          string
	DataDir               string
	Seed                  int64
	ProfileDefaultWeight  float64
	TimeEntries           TimeEntryConfig
}

// TimeEntryConfig tunes technician time entry generation.
type TimeEntryConfig struct {
	MinCount           int
	MaxCount           int
	MinDurationMinutes int
	MaxDurationMinutes int
	IntervalMinutes    int
}

// DefaultGenerator returns the stock generator settings.
func DefaultGenerator() GeneratorConfig {
	return GeneratorConfig{
		DaysAgo:               21,
		MaxConversationRounds: 4,
		MaxRoundsLimit:        50,
		MaxTicketsPerRequest:  25,
		ContactPolicy:         ContactPolicyFallback,
		MessageGapMin:         5 * time.Minute,
		MessageGapMax:         4 * time.Hour,
		DataDir:               "data/generatorData",
		ProfilesFile:          "data/probability_profiles.yaml",
		ProfileDefaultWeight:  1.0,
		TimeEntries: TimeEntryConfig{
			MinCount:           1,
			MaxCount:           4,
			MinDurationMinutes: 5,
			MaxDurationMinutes: 90,
			IntervalMinutes:    5,
		},
	}
}

func loadGenerator() (GeneratorConfig, error) {
	def := DefaultGenerator()
	gen := GeneratorConfig{
		DaysAgo:               getEnvAsInt("DAYS_AGO", def.DaysAgo),
		MaxConversationRounds: getEnvAsInt("MAX_CONVERSATION_ROUNDS", def.MaxConversationRounds),
		MaxRoundsLimit:        getEnvAsInt("MAX_CONVERSATION_ROUNDS_LIMIT", def.MaxRoundsLimit),
		FixedRounds:           getEnvAsBool("FIXED_CONVERSATION_ROUNDS", false),
		MaxTicketsPerRequest:  getEnvAsInt("MAX_TICKETS_PER_REQUEST", def.MaxTicketsPerRequest),
		ContactPolicy:         ContactPolicy(strings.ToLower(getEnv("CONTACT_POLICY", string(def.ContactPolicy)))),
		MessageGapMin:         getEnvAsDuration("MESSAGE_GAP_MIN", def.MessageGapMin),
		MessageGapMax:         getEnvAsDuration("MESSAGE_GAP_MAX", def.MessageGapMax),
		ActiveProfile:         getEnv("ACTIVE_PROFILE", ""),
		ProfilesFile:          getEnv("PROFILES_FILE", def.ProfilesFile),
		DataDir:               getEnv("DATA_DIR", def.DataDir),
		Seed:                  getEnvAsInt64("GENERATOR_SEED", 0),
		ProfileDefaultWeight:  getEnvAsFloat("PROFILE_DEFAULT_WEIGHT", def.ProfileDefaultWeight),
		TimeEntries: TimeEntryConfig{
			MinCount:           getEnvAsInt("TIME_ENTRY_MIN_COUNT", def.TimeEntries.MinCount),
			MaxCount:           getEnvAsInt("TIME_ENTRY_MAX_COUNT", def.TimeEntries.MaxCount),
			MinDurationMinutes: getEnvAsInt("TIME_ENTRY_MIN_DURATION_MINUTES", def.TimeEntries.MinDurationMinutes),
			MaxDurationMinutes: getEnvAsInt("TIME_ENTRY_MAX_DURATION_MINUTES", def.TimeEntries.MaxDurationMinutes),
			IntervalMinutes:    getEnvAsInt("TIME_ENTRY_DURATION_INTERVAL_MINUTES", def.TimeEntries.IntervalMinutes),
		},
	}
	if err := gen.Validate(); err != nil {
		return GeneratorConfig{}, fmt.Errorf("invalid generator config: %w", err)
	}
	return gen, nil
}

// Validate rejects settings the engine cannot honor.
func (g GeneratorConfig) Validate() error {
	var errs []error
	if g.DaysAgo < 0 {
		errs = append(errs, fmt.Errorf("DAYS_AGO must be >= 0, got %d", g.DaysAgo))
	}
	if g.MaxRoundsLimit <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONVERSATION_ROUNDS_LIMIT must be > 0, got %d", g.MaxRoundsLimit))
	}
	if g.MaxConversationRounds < 0 || g.MaxConversationRounds > g.MaxRoundsLimit {
		errs = append(errs, fmt.Errorf("MAX_CONVERSATION_ROUNDS must be in [0,%d], got %d", g.MaxRoundsLimit, g.MaxConversationRounds))
	}
	if g.MaxTicketsPerRequest <= 0 {
		errs = append(errs, fmt.Errorf("MAX_TICKETS_PER_REQUEST must be > 0, got %d", g.MaxTicketsPerRequest))
	}
	switch g.ContactPolicy {
	case ContactPolicyFallback, ContactPolicyStrict:
	default:
		errs = append(errs, fmt.Errorf("CONTACT_POLICY must be %q or %q, got %q", ContactPolicyFallback, ContactPolicyStrict, g.ContactPolicy))
	}
	if g.MessageGapMin <= 0 {
		errs = append(errs, fmt.Errorf("MESSAGE_GAP_MIN must be positive, got %s", g.MessageGapMin))
	}
	if g.MessageGapMax < g.MessageGapMin {
		errs = append(errs, fmt.Errorf("MESSAGE_GAP_MAX (%s) is below MESSAGE_GAP_MIN (%s)", g.MessageGapMax, g.MessageGapMin))
	}
	if g.ProfileDefaultWeight < 0 {
		errs = append(errs, fmt.Errorf("PROFILE_DEFAULT_WEIGHT must be >= 0, got %v", g.ProfileDefaultWeight))
	}
	te := g.TimeEntries
	if te.MinCount < 0 || te.MaxCount < te.MinCount {
		errs = append(errs, fmt.Errorf("time entry count range [%d,%d] is invalid", te.MinCount, te.MaxCount))
	}
	if te.IntervalMinutes <= 0 {
		errs = append(errs, fmt.Errorf("TIME_ENTRY_DURATION_INTERVAL_MINUTES must be positive, got %d", te.IntervalMinutes))
	}
	if te.MinDurationMinutes <= 0 || te.MaxDurationMinutes < te.MinDurationMinutes {
		errs = append(errs, fmt.Errorf("time entry duration range [%d,%d] is invalid", te.MinDurationMinutes, te.MaxDurationMinutes))
	}
	return errors.Join(errs...)
}
