package util

import "github.com/mxcd/go-config/config"

func InitConfig() error {
	err := config.LoadConfig([]config.Value{
		// version info
		config.String("DEPLOYMENT_IMAGE_TAG").NotEmpty().Default("development"),

		// logging config
		config.String("LOG_LEVEL").NotEmpty().Default("info"),

		// server config
		config.Bool("DEV").Default(false),
		config.Int("PORT").Default(8080),

		// sqlite database file
		config.String("DATABASE_PATH").NotEmpty().Default("impetus9.db"),

		// master passkey granting admin access to every event's download.
		// Per-event coordinator passkeys live in EVENT_PASSKEY_<EVENT> env vars
		// and are looked up dynamically, so they are not declared here.
		config.String("MASTER_PASSKEY").Default(""),

		// how long a generated spreadsheet may be served from cache
		config.String("EXPORT_CACHE_TTL").Default("30s"),
	})
	return err
}
