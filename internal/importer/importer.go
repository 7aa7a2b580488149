package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/yourorg/wgimport/internal/config"
	"github.com/yourorg/wgimport/internal/webui"
	"github.com/yourorg/wgimport/internal/wireguard"
)

// ErrLoginRejected is returned in strict mode when the service refuses the credentials
var ErrLoginRejected = errors.New("login rejected")

// Summary counts the outcome of an import run
type Summary struct {
	Peers   int
	Created int
	Failed  int // Non-2xx answers, body still printed
	Skipped int
}

// Importer replays the peers of a parsed configuration against the service
type Importer struct {
	cfg    *config.Config
	client *webui.Client
	out    io.Writer
}

// New creates an importer writing raw response bodies to out
func New(cfg *config.Config, client *webui.Client, out io.Writer) *Importer {
	return &Importer{
		cfg:    cfg,
		client: client,
		out:    out,
	}
}

// Run logs in once and submits one creation request per peer section
func (im *Importer) Run(ctx context.Context, parsed *wireguard.ParsedConfig) (Summary, error) {
	var summary Summary

	session, err := im.client.Login(ctx, webui.Credentials{
		Username:   im.cfg.Username,
		Password:   im.cfg.Password,
		RememberMe: im.cfg.RememberMe,
	})
	if err != nil {
		return summary, err
	}
	if !session.Result.OK() && im.cfg.StrictLogin {
		return summary, fmt.Errorf("%w: status %d: %s", ErrLoginRejected, session.Result.StatusCode, session.Result.Message)
	}

	var existing keySet
	if im.cfg.SkipExisting {
		clients, err := session.ListClients(ctx)
		if err != nil {
			return summary, err
		}
		existing = newKeySet(clients)
		slog.Info("Loaded existing clients", "count", len(clients))
	}

	for _, section := range parsed.Peers() {
		summary.Peers++
		payload := BuildPayload(section, im.cfg.AllowedIPs)

		if existing.contains(payload.PublicKey) {
			slog.Info("Skipping already registered peer",
				"section", section.Name,
				"name", payload.Name,
				"public_key", payload.PublicKey,
			)
			summary.Skipped++
			continue
		}

		resp, err := session.CreateClient(ctx, im.cfg.CreateURL, payload)
		if err != nil {
			return summary, err
		}

		fmt.Fprintln(im.out, strings.TrimRight(string(resp.Body), "\r\n"))

		if resp.OK() {
			summary.Created++
			slog.Info("Submitted peer", "section", section.Name, "name", payload.Name, "status", resp.StatusCode)
		} else {
			summary.Failed++
			slog.Warn("Peer creation answered with error status", "section", section.Name, "name", payload.Name, "status", resp.StatusCode)
		}
	}

	return summary, nil
}
