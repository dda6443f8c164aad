package cli

import (
	"os"
	"strings"

	"github.com/vvka-141/pairload/internal/config"
	"github.com/vvka-141/pairload/internal/db"
	"github.com/vvka-141/pairload/internal/loader"
	"github.com/vvka-141/pairload/internal/supabase"
	"github.com/vvka-141/pairload/pkg/pairload"
)

// restProvider reports missing credentials by their environment variable
// names before the client checks the values themselves.
type restProvider struct {
	creds config.Credentials
	supabase.Provider
}

func (p *restProvider) Validate() error {
	if err := p.creds.Validate(); err != nil {
		return err
	}
	return p.Provider.Validate()
}

// selectSink prefers a direct database URL (flag, then SUPABASE_DB_URL)
// and falls back to the Supabase REST API.
func selectSink(databaseURL string, logger pairload.Logger) (loader.SinkProvider, string) {
	if databaseURL == "" {
		databaseURL = strings.TrimSpace(os.Getenv(pairload.EnvDatabaseURL))
	}
	if databaseURL != "" {
		logger.Verbose("writing through Postgres at %s", db.Redact(databaseURL))
		return &db.Provider{URL: databaseURL, Logger: logger}, "postgres"
	}

	creds := config.ResolveCredentials(os.Getenv)
	logger.Verbose("writing through the Supabase REST API at %s", creds.URL)
	return &restProvider{
		creds:    creds,
		Provider: supabase.Provider{Config: supabase.Config{URL: creds.URL, ServiceKey: creds.ServiceKey}},
	}, "rest"
}
