package filerepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/starack/admin-console/token"
)

var _ token.Repo = (*FileTokenRepo)(nil)

// FileTokenRepo persists the token pair as a small JSON key-value file,
// the console's stand-in for the browser's local storage. Pair writes
// replace the whole file, so a crash never leaves a half-updated pair.
type FileTokenRepo struct {
	path string
	lock sync.Mutex
}

func New(path string) *FileTokenRepo {
	return &FileTokenRepo{path: path}
}

func (r *FileTokenRepo) AccessToken() (string, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	kv := r.load()
	v, ok := kv[token.AccessTokenKey]
	return v, ok && v != ""
}

func (r *FileTokenRepo) RefreshToken() (string, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	kv := r.load()
	v, ok := kv[token.RefreshTokenKey]
	return v, ok && v != ""
}

func (r *FileTokenRepo) SetPair(pair token.Pair) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.save(map[string]string{
		token.AccessTokenKey:  pair.AccessToken,
		token.RefreshTokenKey: pair.RefreshToken,
	})
}

func (r *FileTokenRepo) SetAccessToken(accessToken string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	kv := r.load()
	kv[token.AccessTokenKey] = accessToken
	return r.save(kv)
}

func (r *FileTokenRepo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileTokenRepo.Clear] remove token file")
	}
	return nil
}

// load reads the backing file. A missing or unreadable file is treated as
// an empty store, matching the "absent token means logged out" contract.
func (r *FileTokenRepo) load() map[string]string {
	kv := make(map[string]string)
	data, err := os.ReadFile(r.path)
	if err != nil {
		return kv
	}
	if err := json.Unmarshal(data, &kv); err != nil {
		return make(map[string]string)
	}
	return kv
}

func (r *FileTokenRepo) save(kv map[string]string) error {
	data, err := json.Marshal(kv)
	if err != nil {
		return errors.Wrap(err, "[FileTokenRepo.save] marshal tokens")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileTokenRepo.save] create token folder")
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileTokenRepo.save] write token file")
	}
	return nil
}
