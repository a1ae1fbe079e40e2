package models

// ConnectionConfig represents the connection to the asset database
type ConnectionConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	SSLMode  string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	// UseKeyring looks the password up in the OS keyring when Password is empty
	UseKeyring bool `mapstructure:"use_keyring" yaml:"use_keyring"`
}

// KeyringUser is the account name under which the password is stored
func (c ConnectionConfig) KeyringUser() string {
	return c.User + "@" + c.Host + "/" + c.Database
}
