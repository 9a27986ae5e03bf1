package sitecmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zenGate-Global/pwa-studio/contracts"
	"github.com/zenGate-Global/pwa-studio/domains/stores/be/bundle"
	storeshandler "github.com/zenGate-Global/pwa-studio/domains/stores/be/handler"
)

// loadStoreConfig reads a store configuration file in either accepted shape
// and checks it against the embedded schema.
func loadStoreConfig(path string) (bundle.StoreConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bundle.StoreConfig{}, fmt.Errorf("read config: %w", err)
	}
	if err := contracts.ValidateStoreConfig(data); err != nil {
		return bundle.StoreConfig{}, fmt.Errorf("%s: %w", path, err)
	}

	var req storeshandler.StoreRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return bundle.StoreConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return req.StoreConfig(), nil
}
