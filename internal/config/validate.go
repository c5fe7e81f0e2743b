package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.HTTP.CORSOrigins = trimList(out.HTTP.CORSOrigins)
	out.Database.Driver = strings.ToLower(strings.TrimSpace(out.Database.Driver))
	out.Matching.TagFetch = strings.ToLower(strings.TrimSpace(out.Matching.TagFetch))
	out.Matching.SectorAgnosticMarker = strings.TrimSpace(out.Matching.SectorAgnosticMarker)
	out.App.LogLevel = strings.ToLower(strings.TrimSpace(out.App.LogLevel))

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	switch out.App.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		res.addErr("app.log_level must be one of debug, info, warn, error")
	}

	switch out.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(out.Database.DSN) == "" {
			res.addErr("database.dsn is required when database.driver=postgres")
		}
	default:
		res.addErr("database.driver must be %q or %q", DriverSQLite, DriverPostgres)
	}

	// weights never go negative: no category may lower a score
	checkWeight := func(name string, w int) {
		if w < 0 {
			res.addErr("matching.weights.%s must be >= 0", name)
		}
	}
	w := out.Matching.Weights
	checkWeight("grant.stage", w.Grant.Stage)
	checkWeight("grant.industry", w.Grant.Industry)
	checkWeight("grant.location", w.Grant.Location)
	checkWeight("grant.social_impact", w.Grant.SocialImpact)
	checkWeight("vc.stage", w.VC.Stage)
	checkWeight("vc.industry", w.VC.Industry)
	checkWeight("vc.investment_type", w.VC.InvestmentType)
	checkWeight("vc.location", w.VC.Location)
	checkWeight("mentor.industry", w.Mentor.Industry)
	checkWeight("mentor.language", w.Mentor.Language)
	checkWeight("mentor.budget", w.Mentor.Budget)

	if w.Grant.Stage == 0 || w.Grant.Industry == 0 {
		res.addWarn("grant stage/industry weight is 0; tiers still apply but scores will not separate them.")
	}

	checkLabels := func(kind string, l TierLabels) {
		for i, s := range []string{l.Tier1, l.Tier2, l.Tier3, l.Tier4} {
			if strings.TrimSpace(s) == "" {
				res.addErr("matching.labels.%s.tier%d is required", kind, i+1)
			}
		}
	}
	checkLabels("grant", out.Matching.Labels.Grant)
	checkLabels("vc", out.Matching.Labels.VC)
	checkLabels("mentor", out.Matching.Labels.Mentor)

	rt := out.Matching.RequirementTags
	for name, v := range map[string]string{
		"dpiit": rt.DPIIT, "patent": rt.Patent, "prototype": rt.Prototype,
		"tech_cofounder": rt.TechCofounder, "full_time": rt.FullTime,
	} {
		if strings.TrimSpace(v) == "" {
			res.addErr("matching.requirement_tags.%s is required", name)
		}
	}

	// An empty marker is a substring of every tag name.
	if out.Matching.SectorAgnosticMarker == "" {
		res.addErr("matching.sector_agnostic_marker is required")
	}

	switch out.Matching.TagFetch {
	case TagFetchBatch, TagFetchPerCandidate:
	default:
		res.addErr("matching.tag_fetch must be %q or %q", TagFetchBatch, TagFetchPerCandidate)
	}
	if out.Matching.TagFetchConcurrency <= 0 {
		res.addErr("matching.tag_fetch_concurrency must be > 0")
	} else if out.Matching.TagFetchConcurrency > 64 {
		res.addWarn("matching.tag_fetch_concurrency is high (%d) and may exhaust database connections.", out.Matching.TagFetchConcurrency)
	}

	if out.HTTP.RateLimitRPS < 0 {
		res.addErr("http.rate_limit_rps must be >= 0 (0 disables limiting)")
	}
	if out.HTTP.RateLimitRPS > 0 && out.HTTP.RateLimitBurst <= 0 {
		res.addErr("http.rate_limit_burst must be > 0 when rate limiting is enabled")
	}

	if out.Submissions.RetentionDays <= 0 {
		res.addErr("submissions.retention_days must be > 0")
	}
	if out.Submissions.CleanupMinutes <= 0 {
		res.addErr("submissions.cleanup_minutes must be > 0")
	}

	return out, res
}
