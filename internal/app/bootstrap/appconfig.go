// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds the SFAHub-specific settings. WAFFLE's CoreConfig covers
// ports, TLS, logging and CORS; everything the service itself needs lives
// here.
type AppConfig struct {
	// MongoDB
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Sessions
	SessionKey    string        // cookie signing key
	SessionName   string        // cookie name (default: sfahub-session)
	SessionDomain string        // blank means current host
	SessionMaxAge time.Duration // cookie lifetime

	// Signed links (activation, invites)
	TokenSalt   string
	TokenMaxAge time.Duration

	// Email/SMTP. A blank host logs mail instead of sending it.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string

	BaseURL string // prefix for emailed links, e.g. "https://sfa.example.com"

	RegisterNewUser bool   // open self sign-up
	GeocodeEndpoint string // Google Maps web service base URL
	Timezone        string // calendar used for "today" in contacts

	// Request timeouts per tier
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutBatch  time.Duration

	MetricsEnabled bool

	// Audit destinations: "all", "db", "log" or "off"
	AuditLogAuth       string
	AuditLogMembership string

	// Login throttling
	LoginIPLimit     int
	LoginEmailLimit  int
	LoginLimitPeriod time.Duration
}
