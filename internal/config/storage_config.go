package config

const tokenFileVar = "TOKEN_FILE"

// StorageConfig locates the durable key-value file backing the token store.
type StorageConfig interface {
	GetTokenFile() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetTokenFile() string {
	return GetEnv(tokenFileVar, "./data/tokens.json")
}
