package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	SMTP     SMTPConfig
	Storage  StorageConfig
	Google   GoogleConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Timezone string
}

// SMTPConfig holds the mail relay used for payslip delivery
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type StorageConfig struct {
	BasePath string
	BaseURL  string
}

// GoogleConfig holds the Workspace integration settings. When
// CredentialsFile is empty the directory sync and calendar features
// are disabled.
type GoogleConfig struct {
	CredentialsFile string
	Subject         string
	CustomerID      string
	OrgUnitPath     string
	ExOrgUnitPath   string
}

type PayrollConfig struct {
	MinimumWage        decimal.Decimal
	EmployeeRootFolder string
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "nomina"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "America/Guayaquil"),
	}

	// Mail configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", ""),
		FromName: getEnv("SMTP_FROM_NAME", "Departamento de Talento Humano"),
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/files"),
	}

	config.Google = GoogleConfig{
		CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		Subject:         getEnv("GOOGLE_SUBJECT", ""),
		CustomerID:      getEnv("GOOGLE_CUSTOMER_ID", "my_customer"),
		OrgUnitPath:     getEnv("GOOGLE_ORG_UNIT", "/Docentes"),
		ExOrgUnitPath:   getEnv("GOOGLE_EX_ORG_UNIT", "/Docentes/Ex-Empleados"),
	}

	minimumWage, err := decimal.NewFromString(getEnv("PAYROLL_MINIMUM_WAGE", "460"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_MINIMUM_WAGE: %w", err)
	}

	config.Payroll = PayrollConfig{
		MinimumWage:        minimumWage,
		EmployeeRootFolder: getEnv("PAYROLL_EMPLOYEE_ROOT_FOLDER", "empleados"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Google.CredentialsFile != "" && c.Google.Subject == "" {
		return fmt.Errorf("GOOGLE_SUBJECT is required when GOOGLE_CREDENTIALS_FILE is set")
	}
	if c.Payroll.MinimumWage.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("PAYROLL_MINIMUM_WAGE must be positive")
	}
	return nil
}

// WorkspaceEnabled reports whether the Google Workspace integration
// is configured.
func (c *Config) WorkspaceEnabled() bool {
	return c.Google.CredentialsFile != ""
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
