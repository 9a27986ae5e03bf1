package contracts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadStores(t *testing.T) {
	t.Parallel()

	spec, err := LoadStores()
	require.NoError(t, err)
	require.NotNil(t, spec.Paths.Find("/generate"))
	require.NotNil(t, spec.Paths.Find("/publish"))
}

func TestValidateStoreConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "flat", payload: `{"storeName":"Acme","products":[{"name":"Mug","price":9.99}]}`},
		{name: "legacy", payload: `{"branding":{"name":"Acme"},"firebase":{"apiKey":"x"}}`},
		{name: "text price", payload: `{"storeName":"Acme","products":[{"name":"Mug","price":"free"}]}`},
		{name: "null products", payload: `{"storeName":"Acme","products":null}`},
		{name: "missing name", payload: `{"primaryColor":"#fff"}`, wantErr: true},
		{name: "empty name", payload: `{"storeName":""}`, wantErr: true},
		{name: "bad price", payload: `{"storeName":"Acme","products":[{"price":true}]}`, wantErr: true},
		{name: "not json", payload: `{`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStoreConfig([]byte(tt.payload))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
