package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Build    string
	Debug    bool
	TestMode bool
	AppName  string

	// storage
	DataDir   string
	StoreFile string
	LogFile   string

	// session
	TeacherCode string
	MaxAttempts int

	// reporting
	ChartHeight int
	Color       bool

	// services
	RollbarToken     string
	SendgridKey      string
	AdminEmail       string
	DefaultFromEmail string
}

// StorePath returns the path of the persisted student records.
func (c *Config) StorePath() string { return filepath.Join(c.DataDir, c.StoreFile) }

// LogPath returns the path of the attendance log.
func (c *Config) LogPath() string { return filepath.Join(c.DataDir, c.LogFile) }

func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Attendance")
	v.SetDefault("dataDir", ".")
	v.SetDefault("storeFile", "students_data.json")
	v.SetDefault("logFile", "attendance.txt")
	v.SetDefault("teacherCode", "KELLY")
	v.SetDefault("maxAttempts", 2)
	v.SetDefault("chartHeight", 10)
	v.SetDefault("color", false)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridKey", "")
	v.SetDefault("adminEmail", "")
	v.SetDefault("defaultFromEmail", "noreply@localhost")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		DataDir:          v.GetString("dataDir"),
		StoreFile:        v.GetString("storeFile"),
		LogFile:          v.GetString("logFile"),
		TeacherCode:      v.GetString("teacherCode"),
		MaxAttempts:      v.GetInt("maxAttempts"),
		ChartHeight:      v.GetInt("chartHeight"),
		Color:            v.GetBool("color"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridKey:      v.GetString("sendgridKey"),
		AdminEmail:       v.GetString("adminEmail"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
	}
	if conf.MaxAttempts < 1 {
		return nil, errors.Errorf("maxAttempts must be at least 1 (got %d)", conf.MaxAttempts)
	}
	if conf.ChartHeight < 1 {
		return nil, errors.Errorf("chartHeight must be at least 1 (got %d)", conf.ChartHeight)
	}
	return conf, nil
}
