// config/config.go
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Log           LogConfiguration
	Store         StoreConfiguration
	Neo4j         Neo4jConfiguration
	Postgres      PostgresConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
	Lifecycle     LifecycleConfiguration
	Notification  NotificationConfiguration
	Auth          AuthConfiguration
	RateLimit     RateLimitConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

type LogConfiguration struct {
	Dir string
}

// StoreConfiguration selects the record store backend: neo4j, postgres or memory.
type StoreConfiguration struct {
	Driver string
}

type Neo4jConfiguration struct {
	URI      string
	Username string
	Password string
}

type PostgresConfiguration struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr          string
	Password      string
	DB            int
	AdminCacheTTL time.Duration
	LockTTL       time.Duration
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL        string
	AuditIndex string
}

// LifecycleConfiguration holds the approval engine knobs.
type LifecycleConfiguration struct {
	RequiredApprovals int
	MaxWriteRetries   int
	GrantIssueRetries int
}

type NotificationConfiguration struct {
	Retention time.Duration
	Transport string
	RabbitMQ  RabbitMQConfiguration
	Kafka     KafkaConfiguration
}

type RabbitMQConfiguration struct {
	URL   string
	Queue string
}

type KafkaConfiguration struct {
	Brokers []string
	Topic   string
}

type AuthConfiguration struct {
	JWTSecret string
}

type RateLimitConfiguration struct {
	Requests int
	Window   time.Duration
}

var config *Configuration

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.dir", "logging")

	v.SetDefault("store.driver", "neo4j")
	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "grantflow")
	v.SetDefault("postgres.dbname", "grantflow")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.adminCacheTTL", "5m")
	v.SetDefault("redis.lockTTL", "10s")

	v.SetDefault("elasticsearch.url", "http://localhost:9200")
	v.SetDefault("elasticsearch.auditIndex", "access-audit")

	v.SetDefault("lifecycle.requiredApprovals", 2)
	v.SetDefault("lifecycle.maxWriteRetries", 5)
	v.SetDefault("lifecycle.grantIssueRetries", 3)

	v.SetDefault("notification.retention", "720h")
	v.SetDefault("notification.transport", "log")
	v.SetDefault("notification.rabbitmq.queue", "access-notifications")
	v.SetDefault("notification.kafka.topic", "access-notifications")

	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window", "1m")
}

// InitConfig reads config/config.yaml (if present), environment variables and
// defaults into the package configuration.
func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	setDefaults(viper.GetViper())

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	cfg, err := Load(viper.GetViper())
	if err != nil {
		return err
	}
	config = cfg
	return nil
}

// Load unmarshals and validates a configuration from v.
func Load(v *viper.Viper) (*Configuration, error) {
	setDefaults(v)

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Configuration) Validate() error {
	if c.Lifecycle.RequiredApprovals < 1 {
		return fmt.Errorf("invalid configuration: lifecycle.requiredApprovals must be at least 1, got %d", c.Lifecycle.RequiredApprovals)
	}
	if c.Lifecycle.MaxWriteRetries < 1 {
		return fmt.Errorf("invalid configuration: lifecycle.maxWriteRetries must be at least 1, got %d", c.Lifecycle.MaxWriteRetries)
	}
	if c.Notification.Retention <= 0 {
		return fmt.Errorf("invalid configuration: notification.retention must be positive")
	}
	switch c.Store.Driver {
	case "neo4j", "postgres", "memory":
	default:
		return fmt.Errorf("invalid configuration: unknown store.driver %q", c.Store.Driver)
	}
	switch c.Notification.Transport {
	case "log", "rabbitmq", "kafka":
	default:
		return fmt.Errorf("invalid configuration: unknown notification.transport %q", c.Notification.Transport)
	}
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
