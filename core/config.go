package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug        bool   `mapstructure:"debug"`
	TestMode     bool   `mapstructure:"testMode"`
	Env          string `mapstructure:"env"`
	Build        string `mapstructure:"build"`
	AppName      string `mapstructure:"appName"`
	SecretKey    string `mapstructure:"secretKey"`
	WorkDir      string `mapstructure:"workDir"`
	RollbarToken string `mapstructure:"rollbarToken"`

	Server struct {
		Address            string        `mapstructure:"address"`
		Host               string        `mapstructure:"host"`
		DebugHost          string        `mapstructure:"debugHost"`
		ReadTimeout        time.Duration `mapstructure:"readTimeout"`
		WriteTimeout       time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout    time.Duration `mapstructure:"shutdownTimeout"`
		JWTExpirationDelta time.Duration `mapstructure:"jwtExpirationDelta"`
		RateLimit          float64       `mapstructure:"rateLimit"` // requests per second, per player
		RateBurst          int           `mapstructure:"rateBurst"`
		AllowOrigins       []string      `mapstructure:"allowOrigins"`
	} `mapstructure:"server"`

	Database struct {
		Engine        string `mapstructure:"engine"` // postgres | sqlite
		Host          string `mapstructure:"host"`
		Port          string `mapstructure:"port"`
		Name          string `mapstructure:"name"`
		User          string `mapstructure:"user"`
		Password      string `mapstructure:"password"`
		AdminUser     string `mapstructure:"adminUser"`
		AdminPassword string `mapstructure:"adminPassword"`
		DisableTLS    bool   `mapstructure:"disableTLS"`
		Path          string `mapstructure:"path"` // sqlite DSN
	} `mapstructure:"database"`

	Game struct {
		Lives       int    `mapstructure:"lives"`
		LevelPoints int    `mapstructure:"levelPoints"`
		LifeBonus   int    `mapstructure:"lifeBonus"`
		LevelsFile  string `mapstructure:"levelsFile"` // empty: built-in catalog
	} `mapstructure:"game"`

	NATS struct {
		URL     string `mapstructure:"url"` // empty: events are logged only
		Subject string `mapstructure:"subject"`
	} `mapstructure:"nats"`
}

func (c *Config) IsSQLite() bool {
	return c.Database.Engine == "sqlite"
}

// DBAddress returns the DB host:port.
func (c *Config) DBAddress() string {
	if c.Database.Port == "" {
		return c.Database.Host
	}
	return net.JoinHostPort(c.Database.Host, c.Database.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "STEM Quest")
	v.SetDefault("secretKey", "ku9#-s7w)pqe$+3x=dc&uoxh2(k!m)#*c4(#yg4h^$fegm2zmy")
	v.SetDefault("workDir", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 5*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.rateLimit", 2.0)
	v.SetDefault("server.rateBurst", 5)
	v.SetDefault("server.allowOrigins", []string{"*"})

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "stemquest")
	v.SetDefault("database.user", "stemquest")
	v.SetDefault("database.password", "stemquest")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "file:stemquest.db?_pragma=foreign_keys(1)")

	v.SetDefault("game.lives", 3)
	v.SetDefault("game.levelPoints", 100)
	v.SetDefault("game.lifeBonus", 25)
	v.SetDefault("game.levelsFile", "")

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "stemquest.circuit")
}

// NewConfig loads the app configuration from defaults, an optional dotenv file and the environment.
// Env vars are prefixed with the env name and nested keys use "_": e.g. PROD_DATABASE_HOST.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	workDir := Getwd()
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	if conf.WorkDir == "" {
		conf.WorkDir = workDir
	}
	return conf
}
