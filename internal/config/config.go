// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	TagFetchBatch        = "batch"
	TagFetchPerCandidate = "per_candidate"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type GrantWeights struct {
	Stage        int `yaml:"stage" json:"stage"`
	Industry     int `yaml:"industry" json:"industry"`
	Location     int `yaml:"location" json:"location"`
	SocialImpact int `yaml:"social_impact" json:"social_impact"`
}

type VCWeights struct {
	Stage          int `yaml:"stage" json:"stage"`
	Industry       int `yaml:"industry" json:"industry"`
	InvestmentType int `yaml:"investment_type" json:"investment_type"`
	// Location is off by default; region selections only score when > 0.
	Location int `yaml:"location" json:"location"`
}

type MentorWeights struct {
	Industry int `yaml:"industry" json:"industry"`
	Language int `yaml:"language" json:"language"`
	Budget   int `yaml:"budget" json:"budget"`
}

// TierLabels holds the display label for tiers 1..4.
type TierLabels struct {
	Tier1 string `yaml:"tier1" json:"tier1"`
	Tier2 string `yaml:"tier2" json:"tier2"`
	Tier3 string `yaml:"tier3" json:"tier3"`
	Tier4 string `yaml:"tier4" json:"tier4"`
}

// RequirementTags maps each grant requirement flag to the REQUIREMENT tag
// name a user must select to satisfy it.
type RequirementTags struct {
	DPIIT         string `yaml:"dpiit" json:"dpiit"`
	Patent        string `yaml:"patent" json:"patent"`
	Prototype     string `yaml:"prototype" json:"prototype"`
	TechCofounder string `yaml:"tech_cofounder" json:"tech_cofounder"`
	FullTime      string `yaml:"full_time" json:"full_time"`
}

type Matching struct {
	Weights struct {
		Grant  GrantWeights  `yaml:"grant" json:"grant"`
		VC     VCWeights     `yaml:"vc" json:"vc"`
		Mentor MentorWeights `yaml:"mentor" json:"mentor"`
	} `yaml:"weights" json:"weights"`

	Labels struct {
		Grant  TierLabels `yaml:"grant" json:"grant"`
		VC     TierLabels `yaml:"vc" json:"vc"`
		Mentor TierLabels `yaml:"mentor" json:"mentor"`
	} `yaml:"labels" json:"labels"`

	RequirementTags      RequirementTags `yaml:"requirement_tags" json:"requirement_tags"`
	SectorAgnosticMarker string          `yaml:"sector_agnostic_marker" json:"sector_agnostic_marker"`

	TagFetch            string `yaml:"tag_fetch" json:"tag_fetch"` // batch | per_candidate
	TagFetchConcurrency int    `yaml:"tag_fetch_concurrency" json:"tag_fetch_concurrency"`
}

type Config struct {
	App struct {
		Port     int    `yaml:"port" json:"port"`
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		LogLevel string `yaml:"log_level" json:"log_level"`
	} `yaml:"app" json:"app"`

	Database struct {
		Driver string `yaml:"driver" json:"driver"` // sqlite | postgres
		DSN    string `yaml:"dsn" json:"dsn"`
	} `yaml:"database" json:"database"`

	Matching Matching `yaml:"matching" json:"matching"`

	HTTP struct {
		RateLimitRPS   float64  `yaml:"rate_limit_rps" json:"rate_limit_rps"`
		RateLimitBurst int      `yaml:"rate_limit_burst" json:"rate_limit_burst"`
		CORSOrigins    []string `yaml:"cors_origins" json:"cors_origins"`
	} `yaml:"http" json:"http"`

	Submissions struct {
		RetentionDays  int `yaml:"retention_days" json:"retention_days"`
		CleanupMinutes int `yaml:"cleanup_minutes" json:"cleanup_minutes"`
	} `yaml:"submissions" json:"submissions"`
}

// Default returns the built-in configuration. Load decodes the YAML file on
// top of it, so keys missing from the file keep these values.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.App.LogLevel = "info"
	cfg.Database.Driver = DriverSQLite

	m := &cfg.Matching
	m.Weights.Grant = GrantWeights{Stage: 35, Industry: 35, Location: 15, SocialImpact: 15}
	m.Weights.VC = VCWeights{Stage: 40, Industry: 35, InvestmentType: 25}
	m.Weights.Mentor = MentorWeights{Industry: 50, Language: 30, Budget: 20}

	m.Labels.Grant = TierLabels{"Perfect Match", "Stage Match", "Industry Match", "Basic Match"}
	m.Labels.VC = TierLabels{"Perfect Match", "Strong Match", "Speculative Match", "Other Match"}
	m.Labels.Mentor = TierLabels{"Perfect Match", "Expertise Match", "Language Match", "Other Match"}

	m.RequirementTags = RequirementTags{
		DPIIT:         "DPIIT Registration",
		Patent:        "Patent/IP",
		Prototype:     "Working Prototype",
		TechCofounder: "Technical Co-founder",
		FullTime:      "Full-time Commitment",
	}
	m.SectorAgnosticMarker = "sector agnostic"
	m.TagFetch = TagFetchBatch
	m.TagFetchConcurrency = 8

	cfg.HTTP.RateLimitRPS = 10
	cfg.HTTP.RateLimitBurst = 20

	cfg.Submissions.RetentionDays = 90
	cfg.Submissions.CleanupMinutes = 60
	return cfg
}

// Load returns the live configuration: LoadFile plus FUNDFINDER_* overrides.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	OverlayEnv(&cfg)
	return cfg, nil
}

// LoadFile decodes the YAML file over Default without env overrides.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
