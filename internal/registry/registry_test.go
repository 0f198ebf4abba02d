package registry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRegistryFetchFlattensRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dep1", req["deployment_name"])

		resp := map[string]map[string]map[string]any{
			"src1": {
				"t/a": {"destName": "w1", "destTopic": "u/a", "batchSize": 10, "xformName": "upper:info"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	reg := NewHTTPRegistry(srv.URL, "dep1")
	require.True(t, reg.Initialize())

	descriptors, err := reg.Fetch()
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	d := descriptors[0]
	assert.Equal(t, "src1", d.SourceProvider)
	assert.Equal(t, "t/a", d.SourceTopic)
	assert.Equal(t, "w1", d.DestProvider)
	assert.Equal(t, "u/a", d.DestTopic)
	assert.Equal(t, 10, d.MaxBatchSize)
	assert.Equal(t, "upper", d.TransformName())
}

func TestHTTPRegistryErrorMessageIsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"errorMessage": "upstream unavailable"})
	}))
	defer srv.Close()

	reg := NewHTTPRegistry(srv.URL, "dep1")
	_, err := reg.Fetch()
	assert.Error(t, err)
}

func TestHTTPRegistryUninitializedWithoutEndpoint(t *testing.T) {
	reg := NewHTTPRegistry("", "dep1")
	assert.False(t, reg.Initialize())
}

func TestStaticRegistryFailNextFiresOnce(t *testing.T) {
	reg := NewStaticRegistry(nil)
	reg.FailNext()

	_, err := reg.Fetch()
	assert.Error(t, err)

	_, err = reg.Fetch()
	assert.NoError(t, err)
}
