package handler

import (
	"bytes"
	"encoding/json"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/bundle"
)

// StoreRequest accepts both the flat configuration and the legacy shape that
// nests branding and calls the Firebase block "firebase".
type StoreRequest struct {
	StoreName      string           `json:"storeName"`
	PrimaryColor   string           `json:"primaryColor"`
	AccentColor    string           `json:"accentColor"`
	Products       []bundle.Product `json:"products"`
	FirebaseConfig json.RawMessage  `json:"firebaseConfig"`

	Branding *Branding      `json:"branding"`
	Firebase json.RawMessage `json:"firebase"`
}

// Branding is the legacy nested identity block.
type Branding struct {
	Name         string `json:"name"`
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
}

// StoreConfig normalises the request; flat fields win over legacy ones.
func (r StoreRequest) StoreConfig() bundle.StoreConfig {
	cfg := bundle.StoreConfig{
		StoreName:      r.StoreName,
		PrimaryColor:   r.PrimaryColor,
		AccentColor:    r.AccentColor,
		Products:       r.Products,
		FirebaseConfig: present(r.FirebaseConfig),
	}
	if b := r.Branding; b != nil {
		if cfg.StoreName == "" {
			cfg.StoreName = b.Name
		}
		if cfg.PrimaryColor == "" {
			cfg.PrimaryColor = b.PrimaryColor
		}
		if cfg.AccentColor == "" {
			cfg.AccentColor = b.AccentColor
		}
	}
	if cfg.FirebaseConfig == nil {
		cfg.FirebaseConfig = present(r.Firebase)
	}
	return cfg
}

func present(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return raw
}
