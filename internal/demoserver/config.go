package demoserver

import "fmt"

// Config controls where the phishing lab listens.
type Config struct {
	// Host is the interface to bind. Empty binds all interfaces.
	Host string
	Port int
}

func DefaultConfig() Config {
	return Config{Host: "127.0.0.1", Port: 9999}
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BaseURL is the URL lab pages are reachable at from this machine.
func (c Config) BaseURL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Port)
}
