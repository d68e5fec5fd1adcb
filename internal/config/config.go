package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Database
	MongoURI      string `envconfig:"MONGO_URI" required:"true"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"hospital"`

	// HTTP
	Port        string   `envconfig:"API_PORT" default:"3000"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
	GinMode     string   `envconfig:"GIN_MODE"`

	// Auth
	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL     time.Duration `envconfig:"JWT_TTL" default:"168h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`

	LoginRatePerSec float64 `envconfig:"LOGIN_RATE_PER_SEC" default:"5"`
	LoginBurst      int     `envconfig:"LOGIN_BURST" default:"10"`

	// Uploads
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxAvatarBytes int64  `envconfig:"MAX_AVATAR_BYTES" default:"2097152"`

	// Policy switches
	DoctorIDFallback bool `envconfig:"DOCTOR_ID_FALLBACK" default:"true"`
	PublicBillCreate bool `envconfig:"PUBLIC_BILL_CREATE" default:"true"`

	// Notifications
	TextbeltAPIKey string `envconfig:"TEXTBELT_API_KEY"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file and then the process environment.
// It reports whether a .env file was found so the caller can log it.
func Load(files ...string) (Config, bool, error) {
	var c Config
	found := godotenv.Load(files...) == nil
	err := envconfig.Process("", &c)
	return c, found, err
}
