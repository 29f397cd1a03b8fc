package models

// Config represents application configuration
type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NSQ        NSQConfig
	JWT        JWTConfig
	APIKey     APIKeyConfig
	Bank       BankConfig
	Settlement SettlementConfig
	NewRelic   NewRelicConfig
	Logger     LoggerConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NSQConfig contains NSQ producer configuration
type NSQConfig struct {
	Enabled bool
	Address string
	Topic   string
}

// JWTConfig contains JWT authentication configuration for admin routes
type JWTConfig struct {
	Secret     string
	Expiration int // in minutes
	Issuer     string
}

// APIKeyConfig contains API keys accepted on the settlement surface
type APIKeyConfig struct {
	MerchantGateway string
	AdminConsole    string
}

// BankConfig contains settlement-core specific configuration
type BankConfig struct {
	// KeyFile is the JSON file holding the bank's ECDH keypair in JWK form.
	KeyFile string
	// CanonicalVariant selects the canonical encoding produced on output:
	// "compact" or "extended". Input accepts both.
	CanonicalVariant string
}

// SettlementConfig bounds a single settlement request
type SettlementConfig struct {
	TimeoutSeconds int
	MaxLedgerSize  int
}

// NewRelicConfig contains New Relic observability configuration
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	ForwardLogs bool
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}
