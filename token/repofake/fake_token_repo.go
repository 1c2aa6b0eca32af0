package tokenrepofake

import (
	"sync"

	"github.com/starack/admin-console/token"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

type FakeTokenRepo struct {
	kv   map[string]string
	lock sync.RWMutex
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{kv: make(map[string]string)}
}

func (r *FakeTokenRepo) AccessToken() (string, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.kv[token.AccessTokenKey]
	return v, ok && v != ""
}

func (r *FakeTokenRepo) RefreshToken() (string, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.kv[token.RefreshTokenKey]
	return v, ok && v != ""
}

func (r *FakeTokenRepo) SetPair(pair token.Pair) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.kv[token.AccessTokenKey] = pair.AccessToken
	r.kv[token.RefreshTokenKey] = pair.RefreshToken
	return nil
}

func (r *FakeTokenRepo) SetAccessToken(accessToken string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.kv[token.AccessTokenKey] = accessToken
	return nil
}

func (r *FakeTokenRepo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.kv = make(map[string]string)
	return nil
}
