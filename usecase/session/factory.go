package session

import (
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

// Factory builds stores bound to a profile's storage scope.
type Factory struct {
	kv  repository.KeyValueStore
	cfg Config
}

func NewFactory(kv repository.KeyValueStore, cfg Config) *Factory {
	return &Factory{kv: kv, cfg: cfg.withDefaults()}
}

// For returns the store of namespace ns in the storage of profileID.
func (f *Factory) For(profileID string, ns domain.Namespace) *Store {
	scoped := repository.Scope(f.kv, repository.ProfilePrefix(profileID))
	return NewStore(scoped, ns, f.cfg)
}

func (f *Factory) Config() Config {
	return f.cfg
}
