package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	SiteURL     string `env:"SITE_URL"` // public website origin, used for redirects and the sitemap
	JWTSecret   string `env:"JWT_SECRET"`

	Database Database `envPrefix:"DB_"`

	Midtrans Midtrans `envPrefix:"MIDTRANS_"`
	Paypal   Paypal   `envPrefix:"PAYPAL_"`
	Xendit   Xendit   `envPrefix:"XENDIT_"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"mysql"` // mysql or sqlite
	URL    string `env:"URL"`
}

// Per-provider credential pairs. These are the bootstrap values; admins can
// override them through the settings API, and the stored values win.
type Midtrans struct {
	Environment   string `env:"ENVIRONMENT" envDefault:"sandbox"`
	ServerKey     string `env:"SERVER_KEY"`
	ClientKey     string `env:"CLIENT_KEY"`
	ProdServerKey string `env:"PROD_SERVER_KEY"`
	ProdClientKey string `env:"PROD_CLIENT_KEY"`
	Enabled       bool   `env:"ENABLED" envDefault:"true"`
}

type Paypal struct {
	Environment      string `env:"ENVIRONMENT" envDefault:"sandbox"`
	BaseApiURL       string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID         string `env:"CLIENT_ID"`
	ClientSecret     string `env:"CLIENT_SECRET"`
	ProdBaseApiURL   string `env:"PROD_BASE_API_URL" envDefault:"https://api-m.paypal.com"`
	ProdClientID     string `env:"PROD_CLIENT_ID"`
	ProdClientSecret string `env:"PROD_CLIENT_SECRET"`
	WebhookID        string `env:"WEBHOOK_ID"`
	Enabled          bool   `env:"ENABLED" envDefault:"true"`
}

type Xendit struct {
	Environment       string `env:"ENVIRONMENT" envDefault:"sandbox"`
	BaseApiURL        string `env:"BASE_API_URL" envDefault:"https://api.xendit.co"`
	SecretKey         string `env:"SECRET_KEY"`
	ProdSecretKey     string `env:"PROD_SECRET_KEY"`
	CallbackToken     string `env:"CALLBACK_TOKEN"`
	ProdCallbackToken string `env:"PROD_CALLBACK_TOKEN"`
	Enabled           bool   `env:"ENABLED" envDefault:"true"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
