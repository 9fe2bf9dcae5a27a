package database

// DatabaseConfig is a subset of the configuration focusing solely
// on database connection items
type DatabaseConfig struct {
	User     string `yaml:"username" env:"DB_USERNAME"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME" env-default:"REEL_DB"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
}
