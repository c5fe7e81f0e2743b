package httpapi

import (
	"context"
	"sync/atomic"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/events"
	"fundfinder-engine/internal/match"
	"fundfinder-engine/internal/store"
)

type TagReader interface {
	FetchAllTags(ctx context.Context) ([]domain.Tag, error)
	FetchTagsByCategory(ctx context.Context, cat domain.Category) ([]domain.Tag, error)
}

type SubmissionStore interface {
	InsertSubmission(ctx context.Context, s store.Submission) (store.Submission, error)
	ListSubmissions(ctx context.Context, status string, limit int) ([]store.Submission, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Matcher     *match.Service
	Tags        TagReader
	Submissions SubmissionStore
	DB          Pinger

	Hub *events.Hub

	// Atomic store
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// AdminToken guards config writes and the submission queue.
	AdminToken func() (string, error)

	// Limiter follows http.rate_limit_* on every Apply.
	Limiter *ClientLimiter

	// OnApply runs after a new config is live, e.g. to change the log level.
	OnApply func(config.Config)
}

// Apply makes c the live config. Results, CORS and rate limits read it on
// the next request; only the listen address, database and scheduler
// interval need a restart.
func (d Deps) Apply(c config.Config) {
	d.CfgVal.Store(c)
	if d.Limiter != nil {
		d.Limiter.Configure(c.HTTP.RateLimitRPS, c.HTTP.RateLimitBurst)
	}
	if d.OnApply != nil {
		d.OnApply(c)
	}
}

func (d Deps) corsOrigins() []string {
	return d.CfgVal.Load().(config.Config).HTTP.CORSOrigins
}
