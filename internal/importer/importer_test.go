package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/wgimport/internal/config"
	"github.com/yourorg/wgimport/internal/webui"
	"github.com/yourorg/wgimport/internal/wireguard"
)

type fakeService struct {
	srv      *httptest.Server
	logins   int
	created  []webui.ClientPayload
	existing string
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()

	f := &fakeService{existing: "[]"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		f.logins++
		var creds webui.Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":false,"message":"Invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session_token", Value: "t0k", Path: "/"})
		w.Write([]byte(`{"status":true,"message":"Logged in successfully"}`))
	})
	mux.HandleFunc("GET /api/clients", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(f.existing))
	})
	mux.HandleFunc("POST /new-client", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session_token"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":false,"message":"Unauthorized"}` + "\n"))
			return
		}
		var payload webui.ClientPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		f.created = append(f.created, payload)
		w.Write([]byte(`{"name":"` + payload.Name + `"}` + "\n"))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) importer(t *testing.T, out *bytes.Buffer, mutate func(*config.Config)) *Importer {
	t.Helper()

	cfg := &config.Config{
		BaseURL:    f.srv.URL,
		CreateURL:  f.srv.URL + "/new-client",
		Username:   "admin",
		Password:   "secret",
		AllowedIPs: config.DefaultAllowedIPs,
	}
	if mutate != nil {
		mutate(cfg)
	}

	client, err := webui.NewClient(cfg.BaseURL, 0)
	require.NoError(t, err)
	return New(cfg, client, out)
}

func mustParse(t *testing.T, raw string) *wireguard.ParsedConfig {
	t.Helper()
	cfg, err := wireguard.Parse(raw)
	require.NoError(t, err)
	return cfg
}

func TestRunTwoPeers(t *testing.T) {
	f := newFakeService(t)
	var out bytes.Buffer

	parsed := mustParse(t, `[Interface]
Address = 10.123.0.1/24
ListenPort = 51820

[Peer]
PublicKey = ABC=
AllowedIPs = 10.123.0.2/32

[Peer]
# friendly_name = bob
PublicKey = XYZ=
`)

	summary, err := f.importer(t, &out, nil).Run(context.Background(), parsed)
	require.NoError(t, err)

	assert.Equal(t, 1, f.logins)
	assert.Equal(t, Summary{Peers: 2, Created: 2}, summary)
	require.Len(t, f.created, 2)

	assert.Equal(t, "ABC=", f.created[0].PublicKey)
	assert.Equal(t, DefaultName, f.created[0].Name)
	assert.Equal(t, []string{"10.123.0.2/32"}, f.created[0].AllocatedIPs)
	assert.Equal(t, []string{"10.123.0.0/24", "172.16.0.0/12"}, f.created[0].AllowedIPs)

	assert.Equal(t, "XYZ=", f.created[1].PublicKey)
	assert.Equal(t, "bob", f.created[1].Name)
	assert.Equal(t, []string{"10.123.0.0/24", "172.16.0.0/12"}, f.created[1].AllowedIPs)

	assert.Equal(t, "{\"name\":\"clientname\"}\n{\"name\":\"bob\"}\n", out.String())
}

func TestRunNoPeers(t *testing.T) {
	f := newFakeService(t)
	var out bytes.Buffer

	parsed := mustParse(t, "[Interface]\nAddress = 10.123.0.1/24\n")

	summary, err := f.importer(t, &out, nil).Run(context.Background(), parsed)
	require.NoError(t, err)

	assert.Equal(t, 1, f.logins)
	assert.Empty(t, f.created)
	assert.Equal(t, Summary{}, summary)
	assert.Empty(t, out.String())
}

func TestRunRejectedLoginContinues(t *testing.T) {
	f := newFakeService(t)
	var out bytes.Buffer

	parsed := mustParse(t, "[Interface]\n\n[Peer]\nPublicKey = ABC=\n")

	summary, err := f.importer(t, &out, func(cfg *config.Config) {
		cfg.Password = "wrong"
	}).Run(context.Background(), parsed)
	require.NoError(t, err)

	assert.Equal(t, Summary{Peers: 1, Failed: 1}, summary)
	assert.Empty(t, f.created)
	assert.Equal(t, "{\"status\":false,\"message\":\"Unauthorized\"}\n", out.String())
}

func TestRunStrictLogin(t *testing.T) {
	f := newFakeService(t)
	var out bytes.Buffer

	parsed := mustParse(t, "[Interface]\n\n[Peer]\nPublicKey = ABC=\n")

	_, err := f.importer(t, &out, func(cfg *config.Config) {
		cfg.Password = "wrong"
		cfg.StrictLogin = true
	}).Run(context.Background(), parsed)
	assert.ErrorIs(t, err, ErrLoginRejected)
	assert.Equal(t, 1, f.logins)
	assert.Empty(t, f.created)
}

func TestRunSkipExisting(t *testing.T) {
	f := newFakeService(t)
	f.existing = `[{"Client":{"id":"a","name":"alice","public_key":"xTIBA5rboUvnH4htodjb60Y7YAf21J7YQMlNGC8HQ14="}}]`
	var out bytes.Buffer

	parsed := mustParse(t, `[Interface]

[Peer]
# friendly_name = alice
PublicKey = xTIBA5rboUvnH4htodjb60Y7YAf21J7YQMlNGC8HQ14=

[Peer]
# friendly_name = bob
PublicKey = Gu3xYHe/b6jKAQDxrWH7YfVqL5r5XYNLsQUVbPzRVik=

[Peer]
# friendly_name = carol
`)

	summary, err := f.importer(t, &out, func(cfg *config.Config) {
		cfg.SkipExisting = true
	}).Run(context.Background(), parsed)
	require.NoError(t, err)

	assert.Equal(t, Summary{Peers: 3, Created: 2, Skipped: 1}, summary)
	require.Len(t, f.created, 2)
	assert.Equal(t, "bob", f.created[0].Name)
	assert.Equal(t, "carol", f.created[1].Name)
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
}

func TestRunCreateTransportError(t *testing.T) {
	f := newFakeService(t)
	var out bytes.Buffer

	parsed := mustParse(t, "[Interface]\n\n[Peer]\nPublicKey = ABC=\n")

	_, err := f.importer(t, &out, func(cfg *config.Config) {
		cfg.CreateURL = "http://127.0.0.1:1/new-client"
	}).Run(context.Background(), parsed)
	assert.Error(t, err)
}
