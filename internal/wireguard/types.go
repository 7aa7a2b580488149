package wireguard

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PeerPrefix marks the sections produced from repeated [Peer] headers.
const PeerPrefix = "Peer"

// KeyValue is a single key = value line of a section
type KeyValue struct {
	Key   string
	Value string
}

// Section represents a named block of a WireGuard configuration
type Section struct {
	Name string
	Keys []KeyValue // File order, key names lower-cased
}

// Get returns the value of key and whether it was present
func (s Section) Get(key string) (string, bool) {
	for _, kv := range s.Keys {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// IsPeer reports whether the section was produced from a [Peer] header
func (s Section) IsPeer() bool {
	return strings.HasPrefix(s.Name, PeerPrefix)
}

// ParsedConfig represents a normalized WireGuard configuration
type ParsedConfig struct {
	Sections []Section
}

// Section returns the section with the given name
func (c *ParsedConfig) Section(name string) (Section, bool) {
	for _, s := range c.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Peers returns the peer sections in file order
func (c *ParsedConfig) Peers() []Section {
	var peers []Section
	for _, s := range c.Sections {
		if s.IsPeer() {
			peers = append(peers, s)
		}
	}
	return peers
}

// WriteTo dumps the configuration as [section] / key = value blocks,
// each followed by a blank line.
func (c *ParsedConfig) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64

	for _, s := range c.Sections {
		written, err := fmt.Fprintf(bw, "[%s]\n", s.Name)
		n += int64(written)
		if err != nil {
			return n, err
		}
		for _, kv := range s.Keys {
			written, err = fmt.Fprintf(bw, "%s = %s\n", kv.Key, kv.Value)
			n += int64(written)
			if err != nil {
				return n, err
			}
		}
		written, err = fmt.Fprintln(bw)
		n += int64(written)
		if err != nil {
			return n, err
		}
	}

	return n, bw.Flush()
}
