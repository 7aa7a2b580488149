package importer

import (
	"strings"

	"github.com/yourorg/wgimport/internal/webui"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// keySet holds the public keys already registered on the service
type keySet map[string]struct{}

func newKeySet(clients []webui.ExistingClient) keySet {
	set := make(keySet, len(clients))
	for _, c := range clients {
		if id := keyID(c.PublicKey); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

func (s keySet) contains(publicKey string) bool {
	id := keyID(publicKey)
	if id == "" {
		return false
	}
	_, ok := s[id]
	return ok
}

// keyID canonicalizes a base64 WireGuard key. Strings that do not decode
// to a key are compared verbatim.
func keyID(publicKey string) string {
	publicKey = strings.TrimSpace(publicKey)
	if key, err := wgtypes.ParseKey(publicKey); err == nil {
		return key.String()
	}
	return publicKey
}
