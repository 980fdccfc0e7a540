package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/vortex-demo/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	clearData  bool
)

// envBindings maps config keys to the plain variables LoadConfigFromEnv
// reads, so both loading paths honour them.
var envBindings = map[string][]string{
	"app.name":                 {"APP_NAME"},
	"app.env":                  {"APP_ENV", "NODE_ENV"},
	"http_server.port":         {"PORT"},
	"http_server.static_dir":   {"STATIC_DIR"},
	"database.driver":          {"DATABASE_DRIVER"},
	"database.source":          {"DATABASE_SOURCE"},
	"database.auto_migrate":    {"DATABASE_AUTO_MIGRATE"},
	"security.session_secret":  {"SESSION_SECRET"},
	"security.cookie_secret":   {"COOKIE_SECRET"},
	"security.session_ttl":     {"SESSION_TTL"},
	"security.bcrypt_cost":     {"BCRYPT_COST"},
	"vortex.api_key":           {"VORTEX_API_KEY"},
	"vortex.auth_callback_url": {"VORTEX_AUTH_CALLBACK_URL"},
	"vortex.base_path":         {"VORTEX_BASE_PATH"},
	"vortex.jwt_ttl":           {"VORTEX_JWT_TTL"},
	"logging.level":            {"LOG_LEVEL"},
	"logging.format":           {"LOG_FORMAT"},
}

var rootCmd = &cobra.Command{
	Use:   "vortex-demo",
	Short: "Vortex demo server",
	Long:  `Demo web server with cookie sessions and the vortex invitation plugin mounted under /api/vortex.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// Check if we're running in Docker environment
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		// Load configuration from environment variables (Docker deployment)
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	// Load configuration from file (development)
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Revoke existing seeded invitations before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(usersCmd)
}
