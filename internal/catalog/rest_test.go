package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hookhost/internal/model"
	"github.com/zclconf/go-cty/cty"
)

func TestRESTCatalog_ReplaceCommands(t *testing.T) {
	// --- Arrange ---
	var (
		gotMethod string
		gotPath   string
		gotAuth   string
		gotBody   []CommandPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	cat := NewRESTCatalog(srv.URL, "app-1", "secret", 5*time.Second)
	defer cat.Close()

	specs := []model.CommandSpec{
		{
			Name:        "fetch",
			Description: "Fetches a URL.",
			Options: []model.OptionSpec{
				{Name: "url", Type: cty.String, Required: true},
				{Name: "verbose", Type: cty.Bool},
				{Name: "limit", Type: cty.Number},
			},
		},
		{Name: "ping", Description: "Replies with Pong."},
	}

	// --- Act ---
	err := cat.ReplaceCommands(context.Background(), specs)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/applications/app-1/commands", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	require.Len(t, gotBody, 2)
	assert.Equal(t, "fetch", gotBody[0].Name)
	assert.Equal(t, []OptionPayload{
		{Name: "url", Type: OptionTypeString, Required: true},
		{Name: "verbose", Type: OptionTypeBool},
		{Name: "limit", Type: OptionTypeNumber},
	}, gotBody[0].Options)
	assert.Empty(t, gotBody[1].Options)
}

func TestRESTCatalog_RejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	cat := NewRESTCatalog(srv.URL, "app-1", "wrong", 5*time.Second)
	defer cat.Close()

	err := cat.ReplaceCommands(context.Background(), nil)

	assert.ErrorIs(t, err, ErrCatalogRejected)
}

func TestPayload_RejectsNonPrimitiveTypes(t *testing.T) {
	_, err := Payload([]model.CommandSpec{{
		Name:    "bad",
		Options: []model.OptionSpec{{Name: "tags", Type: cty.List(cty.String)}},
	}})
	assert.ErrorContains(t, err, "unsupported option type")
}
