package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/logger"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/routes"
)

// fakePrims is a scripted primitives implementation for handler tests.
type fakePrims struct {
	names  []string
	up     map[string]bool
	def    *routes.DefaultRoute
	delErr error
	addErr error
}

func (f *fakePrims) Interfaces() ([]string, error) { return f.names, nil }

func (f *fakePrims) LinkUp(name string) (bool, error) { return f.up[name], nil }

func (f *fakePrims) CurrentDefault() (*routes.DefaultRoute, error) { return f.def, nil }

func (f *fakePrims) DeleteDefaultRoute() error { return f.delErr }

func (f *fakePrims) AddDefaultRoute(iface string, gw net.IP) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.def = &routes.DefaultRoute{Interface: iface, Gateway: gw}
	return nil
}

type memStore struct {
	cfg routes.PersistedConfig
}

func (s *memStore) Read() routes.PersistedConfig           { return s.cfg }
func (s *memStore) Write(cfg routes.PersistedConfig) error { s.cfg = cfg; return nil }
func (s *memStore) Backup() error                          { return nil }

func newTestServer(t *testing.T, prims routes.Primitives, st routes.ConfigStore) *httptest.Server {
	t.Helper()
	log := logger.New("error")
	switcher := routes.NewSwitcher(prims, st, routes.NewRegistry(), log)
	srv := NewServer(switcher, ServerOptions{}, log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestGetInterfaces(t *testing.T) {
	prims := &fakePrims{
		names: []string{"lo", "eth0", "eth1"},
		up:    map[string]bool{"eth0": true},
	}
	ts := newTestServer(t, prims, &memStore{})

	status, body := doRequest(t, http.MethodGet, ts.URL+"/v1/network/routes/interfaces", "")

	require.Equal(t, http.StatusOK, status)
	var names []string
	require.NoError(t, json.Unmarshal(body, &names))
	assert.Equal(t, []string{"eth0"}, names)
}

func TestPutDefault(t *testing.T) {
	prims := &fakePrims{
		names: []string{"eth0"},
		up:    map[string]bool{"eth0": true},
	}
	st := &memStore{}
	ts := newTestServer(t, prims, st)

	status, body := doRequest(t, http.MethodPut, ts.URL+"/v1/network/routes/default",
		`{"interface": "eth0", "gateway": "192.168.3.254"}`)

	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"default": "eth0"}`, string(body))
	assert.Equal(t, "eth0", st.cfg.Default)
}

func TestPutDefault_EmptyBodyClears(t *testing.T) {
	prims := &fakePrims{}
	st := &memStore{cfg: routes.PersistedConfig{Default: "eth0"}}
	ts := newTestServer(t, prims, st)

	status, body := doRequest(t, http.MethodPut, ts.URL+"/v1/network/routes/default", "")

	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{}`, string(body))
	assert.Equal(t, "", st.cfg.Default)
}

func TestPutDefault_InvalidShape(t *testing.T) {
	ts := newTestServer(t, &fakePrims{}, &memStore{})

	status, body := doRequest(t, http.MethodPut, ts.URL+"/v1/network/routes/default",
		`{"interface": 5}`)

	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "Invalid input")
}

func TestPutDefault_InterfaceDownIs404(t *testing.T) {
	prims := &fakePrims{
		names: []string{"eth0"},
		up:    map[string]bool{},
	}
	ts := newTestServer(t, prims, &memStore{})

	status, body := doRequest(t, http.MethodPut, ts.URL+"/v1/network/routes/default",
		`{"interface": "eth0"}`)

	require.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "should be up")
}

func TestGetDefault(t *testing.T) {
	prims := &fakePrims{
		def: &routes.DefaultRoute{Interface: "eth0", Gateway: net.ParseIP("10.0.0.1")},
	}
	st := &memStore{cfg: routes.PersistedConfig{Default: "eth0"}}
	ts := newTestServer(t, prims, st)

	status, body := doRequest(t, http.MethodGet, ts.URL+"/v1/network/routes/default", "")

	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"interface": "eth0", "gateway": "10.0.0.1"}`, string(body))
}

func TestPutRouterDB_Single(t *testing.T) {
	ts := newTestServer(t, &fakePrims{}, &memStore{})

	status, body := doRequest(t, http.MethodPut, ts.URL+"/v1/network/routes/db",
		`{"name": "eth0", "gateway": "10.0.0.1"}`)

	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"name": "eth0", "gateway": "10.0.0.1"}`, string(body))

	status, body = doRequest(t, http.MethodGet, ts.URL+"/v1/network/routes/db", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"interface": "eth0", "gateway": "10.0.0.1"}]`, string(body))
}

func TestPutRouterDB_Batch(t *testing.T) {
	ts := newTestServer(t, &fakePrims{}, &memStore{})

	status, body := doRequest(t, http.MethodPut, ts.URL+"/v1/network/routes/db",
		`[{"name": "eth0", "gateway": "10.0.0.1"}, {"name": "wlan0"}]`)

	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t,
		`[{"interface": "eth0", "gateway": "10.0.0.1"}, {"interface": "wlan0"}]`,
		string(body))
}

func TestPutRouterDB_WrongType(t *testing.T) {
	ts := newTestServer(t, &fakePrims{}, &memStore{})

	status, body := doRequest(t, http.MethodPut, ts.URL+"/v1/network/routes/db", `"eth0"`)

	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "Wrong type of router database")
}

func TestPutRouterDB_MissingName(t *testing.T) {
	ts := newTestServer(t, &fakePrims{}, &memStore{})

	status, _ := doRequest(t, http.MethodPut, ts.URL+"/v1/network/routes/db",
		`{"gateway": "10.0.0.1"}`)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPutInterfaceEvent(t *testing.T) {
	ts := newTestServer(t, &fakePrims{}, &memStore{})

	status, _ := doRequest(t, http.MethodPut, ts.URL+"/v1/network/interface",
		`{"name": "eth0", "gateway": "10.0.0.1"}`)

	assert.Equal(t, http.StatusNoContent, status)
}

func TestPutCellular(t *testing.T) {
	prims := &fakePrims{
		names: []string{"eth0", "ppp0"},
		up:    map[string]bool{"eth0": true, "ppp0": true},
	}
	st := &memStore{cfg: routes.PersistedConfig{Default: "eth0"}}
	ts := newTestServer(t, prims, st)

	status, body := doRequest(t, http.MethodPut, ts.URL+"/v1/network/cellular",
		`{"name": "ppp0", "up": true}`)

	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"interface": "ppp0"}`, string(body))
	assert.Equal(t, "ppp0", st.cfg.Default)
}

func TestPutCellular_MissingName(t *testing.T) {
	ts := newTestServer(t, &fakePrims{}, &memStore{})

	status, _ := doRequest(t, http.MethodPut, ts.URL+"/v1/network/cellular", `{"up": true}`)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &fakePrims{}, &memStore{})

	status, _ := doRequest(t, http.MethodDelete, ts.URL+"/v1/network/routes/default", "")

	assert.Equal(t, http.StatusMethodNotAllowed, status)
}
