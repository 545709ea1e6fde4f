package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/internal/client"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/cart/internal/store"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/token"
	"github.com/Alturino/storefront/internal/config"
)

func TestNewStores(t *testing.T) {
	c := context.Background()

	stores, closeStores, err := newStores(c, &config.Config{Checkout: config.Checkout{Store: config.StoreMemory}})
	require.NoError(t, err)
	defer closeStores()
	assert.IsType(t, &store.MemoryStores{}, stores)

	_, _, err = newStores(c, &config.Config{Checkout: config.Checkout{Store: "etcd"}})
	assert.ErrorIs(t, err, commonErrors.ErrUnknownStoreDriver)
}

func newServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	cfg := &config.Config{Application: config.Application{SecretKey: "secret"}}
	cartService := service.NewCartService(
		store.NewMemoryStores(),
		client.NewOrderClient("http://127.0.0.1:1", nil),
		decimal.NewFromInt(15),
	)
	server := httptest.NewServer(NewRouter(cfg, cartService))
	t.Cleanup(server.Close)

	accessToken, err := token.Issue("secret", uuid.New(), time.Hour, time.Now())
	require.NoError(t, err)
	return server, accessToken
}

func TestRouterMetrics(t *testing.T) {
	server, _ := newServer(t)

	resp, err := http.Get(server.URL + "/cart")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := &bytes.Buffer{}
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "storefront_http_requests_total")
}

func TestRouterEvents(t *testing.T) {
	server, accessToken := newServer(t)
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(c, http.MethodGet, server.URL+"/cart/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	item, err := json.Marshal(map[string]interface{}{
		"id":     uuid.NewString(),
		"name":   "coffee",
		"price":  "10",
		"amount": 1,
	})
	require.NoError(t, err)
	add, err := http.NewRequestWithContext(c, http.MethodPost, server.URL+"/cart/items", bytes.NewReader(item))
	require.NoError(t, err)
	add.Header.Set("Authorization", "Bearer "+accessToken)
	addResp, err := http.DefaultClient.Do(add)
	require.NoError(t, err)
	addResp.Body.Close()
	require.Equal(t, http.StatusOK, addResp.StatusCode)

	scanner := bufio.NewScanner(resp.Body)
	lines := []string{}
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "event: cart", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "data: "))
	assert.Contains(t, lines[1], `"action":"add_item"`)
}
