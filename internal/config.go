package internal

import (
	"fmt"
	"time"
)

// Config is the process configuration, loaded from the environment.
type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	AuthRequired         bool          `env:"AUTH_REQUIRED,default=false"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	RateLimitBurst       int           `env:"RATE_LIMIT_BURST,default=20"`
	RateLimitRefill      time.Duration `env:"RATE_LIMIT_REFILL,default=1m"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

// CharacterRune converts the single-character replacement setting.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
