package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/salecheck/internal/config"
	"github.com/five82/salecheck/internal/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t          *testing.T
	configPath string
	stateDir   string
}

func newCLI(t *testing.T, backend http.Handler) *cli {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")
	t.Setenv(config.StateDirEnv, stateDir)

	configPath := filepath.Join(dir, "config.toml")
	body := "api_base = \"" + srv.URL + "\"\nlog_level = \"warn\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0o600))
	return &cli{t: t, configPath: configPath, stateDir: stateDir}
}

func (c *cli) run(args ...string) (string, string, int) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--config", c.configPath, "--prefs", filepath.Join(c.stateDir, "prefs.toml")}, args...)
	code := execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// fakeBackend serves by_url lookups from a fixed catalogue keyed by ASIN.
func fakeBackend(t *testing.T, catalogue map[string]string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/products/by_url", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("url")
		for id, price := range catalogue {
			if strings.Contains(page, id) {
				_ = json.NewEncoder(w).Encode(map[string]string{
					"id":                id,
					"title":             "Item " + id,
					"currentPriceText":  price,
					"originalPriceText": "$50.00",
				})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/products/refresh", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"A1","currentPriceText":"$10.00"}]`)
	})
	return mux
}

func pageURL(id string) string {
	return "https://www.amazon.com/dp/" + id
}

func TestTrackListAndEdit(t *testing.T) {
	c := newCLI(t, fakeBackend(t, map[string]string{"A1": "$20.00", "B2": "$30.00"}))

	out, errOut, code := c.run("track", pageURL("A1"))
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Tracking Item A1 at $20.00 (1/5)")

	_, errOut, code = c.run("track", pageURL("B2"))
	require.Equal(t, 0, code, errOut)

	_, _, code = c.run("rename", "B2", "Desk lamp")
	require.Equal(t, 0, code)

	out, _, code = c.run("move", "B2", "1")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Desk lamp")
	assert.Contains(t, lines[2], "Item A1")

	out, _, code = c.run("list", "--json")
	require.Equal(t, 0, code)
	var records []product.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Equal(t, []string{"B2", "A1"}, product.IDs(records))
	require.NotNil(t, records[0].CustomTitle)

	_, _, code = c.run("reset-title", "B2")
	require.Equal(t, 0, code)
	_, _, code = c.run("remove", "A1")
	require.Equal(t, 0, code)

	out, _, code = c.run("list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Item B2")
	assert.NotContains(t, out, "A1")
}

func TestTrackRejectsNonProductPage(t *testing.T) {
	c := newCLI(t, fakeBackend(t, nil))

	_, errOut, code := c.run("track", "https://example.com/shoes")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Open an Amazon product page to track it.\n", errOut)
}

func TestTrackCapacityExceeded(t *testing.T) {
	catalogue := map[string]string{}
	for _, id := range []string{"P1", "P2", "P3", "P4", "P5", "P6"} {
		catalogue[id] = "$10.00"
	}
	c := newCLI(t, fakeBackend(t, catalogue))

	for _, id := range []string{"P1", "P2", "P3", "P4", "P5"} {
		_, errOut, code := c.run("track", pageURL(id))
		require.Equal(t, 0, code, errOut)
	}
	_, errOut, code := c.run("track", pageURL("P6"))
	assert.Equal(t, 1, code)
	assert.Equal(t, "Maximum capacity reached (5 items).\n", errOut)
}

func TestRefreshFlagsDropAndAck(t *testing.T) {
	c := newCLI(t, fakeBackend(t, map[string]string{"A1": "$20.00"}))

	_, errOut, code := c.run("track", pageURL("A1"))
	require.Equal(t, 0, code, errOut)

	out, errOut, code := c.run("refresh")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "Refreshed 1 product, 1 price drop.\n", out)

	out, _, code = c.run("refresh")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Already refreshed recently")

	out, _, code = c.run("status")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Tracked:      1/5")
	assert.Contains(t, out, "Unread drops: 1")

	_, _, code = c.run("ack")
	require.Equal(t, 0, code)

	out, _, code = c.run("status")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Unread drops: 0")
	assert.Contains(t, out, "Indicator:    clear")
}

func TestUnknownProductFails(t *testing.T) {
	c := newCLI(t, fakeBackend(t, nil))

	_, errOut, code := c.run("remove", "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "product not found")
}

func TestMoveRejectsBadPosition(t *testing.T) {
	c := newCLI(t, fakeBackend(t, nil))

	_, errOut, code := c.run("move", "A1", "zero")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid position")
}

func TestLogsPrintsTail(t *testing.T) {
	c := newCLI(t, fakeBackend(t, nil))
	require.NoError(t, os.MkdirAll(c.stateDir, 0o750))
	logPath := filepath.Join(c.stateDir, "salecheck.log")
	require.NoError(t, os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0o600))

	out, errOut, code := c.run("logs", "-n", "2")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "two\nthree\n", out)
}
