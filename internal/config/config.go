// Package config loads and saves the app_config.ini shared with the
// knowledge-graph application.
package config

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/litkg/kgctl/internal/encoding"
)

// DateLayout is the date format used in [Search] keys and PubMed date
// range queries.
const DateLayout = "2006/01/02"

// APISection holds credentials for external services.
type APISection struct {
	NCBIEmail      string `ini:"ncbi_email"`
	NCBIAPIKey     string `ini:"ncbi_api_key"`
	MoonshotAPIKey string `ini:"moonshot_api_key"`
	CNKIUsername   string `ini:"cnki_username"`
	CNKIPassword   string `ini:"cnki_password"`
}

// SearchSection holds literature search parameters.
type SearchSection struct {
	SearchTerms string `ini:"search_terms"`
	StartDate   string `ini:"start_date"`
	EndDate     string `ini:"end_date"`
	MaxResults  int    `ini:"max_results"`
	Database    string `ini:"database"`
	SearchMode  string `ini:"search_mode"`
	CNKIDBCode  string `ini:"cnki_db_code"`
}

// ProcessSection holds batch processing parameters.
type ProcessSection struct {
	OutputDir    string `ini:"output_dir"`
	OutputFormat string `ini:"output_format"`
	Parallel     bool   `ini:"parallel"`
	MaxWorkers   int    `ini:"max_workers"`
}

// AppSection locates the external application and its interpreter.
type AppSection struct {
	AppDir       string `ini:"app_dir"`
	Entry        string `ini:"entry"`
	ProcessEntry string `ini:"process_entry"`
	Python       string `ini:"python"`
	CondaPath    string `ini:"conda"`
}

// Settings is the full configuration file.
type Settings struct {
	API     APISection     `ini:"API"`
	Search  SearchSection  `ini:"Search"`
	Process ProcessSection `ini:"Process"`
	App     AppSection     `ini:"App"`
}

// Default returns the settings written by config init. The search window
// defaults to the last five years, matching the original application.
func Default() Settings {
	now := time.Now()

	return Settings{
		Search: SearchSection{
			SearchTerms: "Silicosis",
			StartDate:   now.AddDate(-5, 0, 0).Format(DateLayout),
			EndDate:     now.Format(DateLayout),
			MaxResults:  1000,
			Database:    "pubmed",
			SearchMode:  "separate",
			CNKIDBCode:  "CJFD",
		},
		Process: ProcessSection{
			OutputDir:    "output",
			OutputFormat: "json",
			Parallel:     true,
			MaxWorkers:   4,
		},
		App: AppSection{
			AppDir:       ".",
			Entry:        "kg_app.py",
			ProcessEntry: "pubmed_main.py",
			Python:       "python",
		},
	}
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	if !encoding.FileExists(path) {
		s := Default()

		return &s, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	s := Default()

	for name, target := range map[string]any{
		"API":     &s.API,
		"Search":  &s.Search,
		"Process": &s.Process,
		"App":     &s.App,
	} {
		if err := cfg.Section(name).MapTo(target); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", name, err)
		}
	}

	return &s, nil
}

// Save writes settings to path with owner-only permissions, since [API]
// holds credentials.
func Save(path string, s *Settings) error {
	cfg := ini.Empty()

	for name, source := range map[string]any{
		"API":     &s.API,
		"Search":  &s.Search,
		"Process": &s.Process,
		"App":     &s.App,
	} {
		sec, err := cfg.NewSection(name)
		if err != nil {
			return fmt.Errorf("failed to create [%s] section: %w", name, err)
		}

		if err := sec.ReflectFrom(source); err != nil {
			return fmt.Errorf("failed to fill [%s] section: %w", name, err)
		}
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	return encoding.WriteFileSecure(path, buf.Bytes())
}

// Terms splits the configured search_terms on commas.
func (s *Settings) Terms() []string {
	parts := strings.Split(s.Search.SearchTerms, ",")

	terms := make([]string, 0, len(parts))

	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			terms = append(terms, t)
		}
	}

	return terms
}

// Set updates a single value addressed as section.key, using the ini key
// names as they appear in the file.
func (s *Settings) Set(key, value string) error {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		return fmt.Errorf("invalid key %q, expected section.key", key)
	}

	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("value for %s must be a number: %w", key, err)
		}

		return n, nil
	}

	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("value for %s must be true or false: %w", key, err)
		}

		return b, nil
	}

	switch strings.ToLower(section) + "." + strings.ToLower(name) {
	case "api.ncbi_email":
		s.API.NCBIEmail = value
	case "api.ncbi_api_key":
		s.API.NCBIAPIKey = value
	case "api.moonshot_api_key":
		s.API.MoonshotAPIKey = value
	case "api.cnki_username":
		s.API.CNKIUsername = value
	case "api.cnki_password":
		s.API.CNKIPassword = value
	case "search.search_terms":
		s.Search.SearchTerms = value
	case "search.start_date":
		if _, err := time.Parse(DateLayout, value); err != nil {
			return fmt.Errorf("start_date must match %s: %w", DateLayout, err)
		}

		s.Search.StartDate = value
	case "search.end_date":
		if _, err := time.Parse(DateLayout, value); err != nil {
			return fmt.Errorf("end_date must match %s: %w", DateLayout, err)
		}

		s.Search.EndDate = value
	case "search.max_results":
		n, err := atoi()
		if err != nil {
			return err
		}

		s.Search.MaxResults = n
	case "search.database":
		s.Search.Database = value
	case "search.search_mode":
		s.Search.SearchMode = value
	case "search.cnki_db_code":
		s.Search.CNKIDBCode = value
	case "process.output_dir":
		s.Process.OutputDir = value
	case "process.output_format":
		s.Process.OutputFormat = value
	case "process.parallel":
		b, err := parseBool()
		if err != nil {
			return err
		}

		s.Process.Parallel = b
	case "process.max_workers":
		n, err := atoi()
		if err != nil {
			return err
		}

		s.Process.MaxWorkers = n
	case "app.app_dir":
		s.App.AppDir = value
	case "app.entry":
		s.App.Entry = value
	case "app.process_entry":
		s.App.ProcessEntry = value
	case "app.python":
		s.App.Python = value
	case "app.conda":
		s.App.CondaPath = value
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}

	return nil
}
