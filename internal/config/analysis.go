package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/ledger-audit/internal/balance"
	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/Veraticus/ledger-audit/internal/correction"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyMonthlyRate         = "analysis.monthly_rate"
	KeyAmortizingGroup     = "analysis.amortizing_group"
	KeyContributionMarkers = "analysis.contribution_markers"
	KeyEntities            = "analysis.entities"
	KeyDatabasePath        = "database.path"
)

// DefaultDatabasePath is where imported ledgers are stored.
const DefaultDatabasePath = "~/.local/share/ledger-audit/ledger.db"

// Analysis holds the tunable parameters of the audit.
type Analysis struct {
	Entities            map[string][]string
	AmortizingGroup     string
	DatabasePath        string
	ContributionMarkers []string
	MonthlyRate         float64 // Percent per month
}

// DefaultAnalysis returns the parameters used when nothing is configured.
func DefaultAnalysis() Analysis {
	return Analysis{
		MonthlyRate:         correction.DefaultMonthlyRate,
		AmortizingGroup:     correction.DefaultAmortizingGroup,
		ContributionMarkers: correction.DefaultContributionMarkers(),
		Entities:            map[string][]string(balance.DefaultEntities()),
		DatabasePath:        DefaultDatabasePath,
	}
}

// LoadAnalysis reads the analysis parameters from the global viper instance.
func LoadAnalysis() (Analysis, error) {
	return LoadAnalysisFrom(viper.GetViper())
}

// LoadAnalysisFrom reads the analysis parameters from v, falling back to
// defaults for unset keys, and validates the result.
func LoadAnalysisFrom(v *viper.Viper) (Analysis, error) {
	cfg := DefaultAnalysis()

	if v.IsSet(KeyMonthlyRate) {
		cfg.MonthlyRate = v.GetFloat64(KeyMonthlyRate)
	}
	if v.IsSet(KeyAmortizingGroup) {
		cfg.AmortizingGroup = strings.ToUpper(strings.TrimSpace(v.GetString(KeyAmortizingGroup)))
	}
	if markers := v.GetStringSlice(KeyContributionMarkers); len(markers) > 0 {
		cfg.ContributionMarkers = markers
	}
	if entities := v.GetStringMapStringSlice(KeyEntities); len(entities) > 0 {
		cfg.Entities = make(map[string][]string, len(entities))
		for name, accounts := range entities {
			cfg.Entities[strings.ToUpper(name)] = accounts
		}
	}
	if path := v.GetString(KeyDatabasePath); path != "" {
		cfg.DatabasePath = path
	}
	cfg.DatabasePath = ExpandPath(cfg.DatabasePath)

	if err := cfg.Validate(); err != nil {
		return Analysis{}, err
	}
	return cfg, nil
}

// Validate checks the parameters for values the engine cannot use.
func (a Analysis) Validate() error {
	if math.IsNaN(a.MonthlyRate) || math.IsInf(a.MonthlyRate, 0) || a.MonthlyRate <= -100 {
		return fmt.Errorf("%w: monthly rate %v", common.ErrInvalidConfig, a.MonthlyRate)
	}
	if strings.TrimSpace(a.DatabasePath) == "" {
		return fmt.Errorf("%w: database path", common.ErrMissingConfig)
	}
	if len(a.ContributionMarkers) == 0 {
		return fmt.Errorf("%w: contribution markers", common.ErrMissingConfig)
	}

	owners := make(map[string]string)
	names := make([]string, 0, len(a.Entities))
	for name := range a.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, account := range a.Entities[name] {
			if other, ok := owners[account]; ok {
				return fmt.Errorf("%w: account %s belongs to both %s and %s",
					common.ErrInvalidConfig, account, other, name)
			}
			owners[account] = name
		}
	}
	return nil
}

// LoadEnv loads environment files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
