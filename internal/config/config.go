package config

type Config interface {
	EnvConfig
	ServicesConfig
	StorageConfig
}

type mainConfig struct {
	EnvVars
	Services
	Storage
}

func New() Config {
	return mainConfig{}
}
