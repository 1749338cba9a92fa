package models

import (
	"sync"

	json "github.com/goccy/go-json"
)

// OptionStoreInterface is the site-wide key-value store the settings and
// analytics records live in. Every call is atomic on its own; sequences of
// calls are not.
type OptionStoreInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	Len() int
	Snapshot() map[string]json.RawMessage
	Restore(data map[string]json.RawMessage)
}

type OptionStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewOptionStore() OptionStoreInterface {
	return &OptionStore{
		data: make(map[string][]byte),
	}
}

func (s *OptionStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, true
}

func (s *OptionStore) Set(key string, value []byte) {
	val := make([]byte, len(value))
	copy(val, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = val
}

func (s *OptionStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *OptionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *OptionStore) Snapshot() map[string]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copyMap := make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		val := make([]byte, len(v))
		copy(val, v)
		copyMap[k] = val
	}
	return copyMap
}

func (s *OptionStore) Restore(data map[string]json.RawMessage) {
	fresh := make(map[string][]byte, len(data))
	for k, v := range data {
		val := make([]byte, len(v))
		copy(val, v)
		fresh[k] = val
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = fresh
}

// GetOption decodes the JSON value stored under key into dst. It reports
// false when the key is missing or the stored value cannot be decoded.
// Fields absent from the stored document keep the values dst already had.
func GetOption(store OptionStoreInterface, key string, dst any) bool {
	raw, ok := store.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func SetOption(store OptionStoreInterface, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	store.Set(key, raw)
	return nil
}
