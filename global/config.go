package global

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"

	"github.com/TOPBARD/Connect-Hub/logger"
	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

// AppConfig is the process-wide configuration, populated once at boot from
// the environment (.env supported in dev).
type AppConfig struct {
	Port        int    `mapstructure:"PORT"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	NodeID      int64  `mapstructure:"NODE_ID"`

	MongoURI string `mapstructure:"MONGO_URI"`
	MongoDB  string `mapstructure:"MONGO_DB"`

	// Redis 可选：为空则不启用 presence 镜像
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	ImagekitEndpoint   string `mapstructure:"IMAGEKIT_ENDPOINT"`
	ImagekitPrivateKey string `mapstructure:"IMAGEKIT_PRIVATE_KEY"`
	ImagekitFolder     string `mapstructure:"IMAGEKIT_FOLDER"`

	PresenceTTLSeconds int `mapstructure:"PRESENCE_TTL"`
}

var Config = AppConfig{
	Port:               8080,
	FrontendURL:        "http://localhost:3000",
	NodeID:             1,
	MongoDB:            "connect-hub",
	ImagekitFolder:     "Connect-Hub-Messages",
	PresenceTTLSeconds: 120,
}

// Load reads .env (if present) plus the process environment into Config.
// Decoding is weakly typed so "8080" satisfies an int field.
func Load() error {
	if err := godotenv.Load(); err != nil {
		logger.Debug(".env not loaded, using process env only")
	}

	env := map[string]string{}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &Config,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errs.WrapMsg(err, "new config decoder")
	}
	if err := dec.Decode(env); err != nil {
		return errs.WrapMsg(err, "decode config from env")
	}

	if Config.MongoURI == "" {
		return errs.New("MONGO_URI is required")
	}
	if Config.JWTSecret == "" {
		return errs.New("JWT_SECRET is required")
	}
	return nil
}

func JwtSecret() []byte { return []byte(Config.JWTSecret) }

// RedisEnabled reports whether the optional presence mirror is configured.
func RedisEnabled() bool { return Config.RedisAddr != "" }
