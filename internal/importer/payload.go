package importer

import (
	"log/slog"
	"strings"

	"github.com/yourorg/wgimport/internal/webui"
	"github.com/yourorg/wgimport/internal/wireguard"
)

// DefaultName is used for peers without a friendly_name
const DefaultName = "clientname"

// Recognized peer keys, as lower-cased by the parser
const (
	keyFriendlyName = "friendly_name"
	keyAllowedIPs   = "allowedips"
	keyPublicKey    = "publickey"
	keyPresharedKey = "presharedkey"
)

// NewPayload returns the default payload every peer starts from
func NewPayload(allowedIPs []string) webui.ClientPayload {
	return webui.ClientPayload{
		Name:            DefaultName,
		Email:           "",
		AllocatedIPs:    []string{},
		AllowedIPs:      append([]string{}, allowedIPs...),
		ExtraAllowedIPs: []string{},
		UseServerDNS:    true,
		Enabled:         true,
	}
}

// BuildPayload maps the recognized keys of a peer section onto the default
// payload. Anything else is logged and dropped.
func BuildPayload(section wireguard.Section, allowedIPs []string) webui.ClientPayload {
	payload := NewPayload(allowedIPs)

	for _, kv := range section.Keys {
		switch kv.Key {
		case keyFriendlyName:
			payload.Name = kv.Value
		case keyAllowedIPs:
			// AllowedIPs of the server-side peer become the client's allocated IPs
			payload.AllocatedIPs = strings.Split(kv.Value, ",")
		case keyPublicKey:
			payload.PublicKey = kv.Value
		case keyPresharedKey:
			payload.PresharedKey = kv.Value
		default:
			slog.Warn("Ignoring unrecognized peer key", "section", section.Name, "key", kv.Key)
		}
	}

	return payload
}

// BuildPayloads returns one payload per peer section, in file order
func BuildPayloads(cfg *wireguard.ParsedConfig, allowedIPs []string) []webui.ClientPayload {
	var payloads []webui.ClientPayload
	for _, section := range cfg.Peers() {
		payloads = append(payloads, BuildPayload(section, allowedIPs))
	}
	return payloads
}
