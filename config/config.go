package config

import (
	"fmt"
	"time"
)

type Configs struct {
	// Env is "prod" or "sandbox". In sandbox the payment confirmation flow
	// is allowed to force-confirm with the processor's test card.
	Env string `toml:"env"`

	ApiServer ServerConfigs   `toml:"api_server"`
	Database  DatabaseConfigs `toml:"database"`
	Stripe    StripeConfigs   `toml:"stripe"`
	Bridge    BridgeConfigs   `toml:"bridge"`
	OnRamp    OnRampConfigs   `toml:"onramp"`
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

func (s *ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfigs struct {
	// Driver is either "mysql" or "sqlite". The reference deployment keeps
	// transactions for the process lifetime only, which maps to the sqlite
	// ":memory:" source.
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type StripeConfigs struct {
	BaseURL    string `toml:"base_url"`
	PrivateKey string `toml:"private_key"`
	PublicKey  string `toml:"public_key"`
}

type BridgeConfigs struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

type OnRampConfigs struct {
	SourceCurrency string  `toml:"source_currency"`
	TargetCurrency string  `toml:"target_currency"`
	MinAmount      float64 `toml:"min_amount"`
	MaxAmount      float64 `toml:"max_amount"`

	// PartnerTimeout bounds every synchronous call to the payment and
	// conversion partners.
	PartnerTimeout time.Duration `toml:"partner_timeout"`

	// TransactionExpiry is the age after which a transaction still waiting
	// for its payment is marked expired.
	TransactionExpiry time.Duration `toml:"transaction_expiry"`
}
