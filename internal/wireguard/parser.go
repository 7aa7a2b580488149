package wireguard

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/ini.v1"
)

var (
	peerHeader       = regexp.MustCompile(`\[Peer\]`)
	friendlyNameLine = regexp.MustCompile(`(?m)^([ \t]*)# friendly_name = `)
)

// Normalize rewrites raw configuration text so that it parses as plain INI:
// every [Peer] header becomes [Peer1], [Peer2], ... in file order, and the
// commented "# friendly_name = " directive is turned into a live key.
func Normalize(raw string) string {
	n := 0
	text := peerHeader.ReplaceAllStringFunc(raw, func(string) string {
		n++
		return fmt.Sprintf("[%s%d]", PeerPrefix, n)
	})

	return friendlyNameLine.ReplaceAllString(text, "${1}friendly_name = ")
}

// ParseFile reads a .conf file and returns the normalized configuration.
func ParseFile(path string) (*ParsedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(string(data))
}

// Parse normalizes raw and parses the result.
func Parse(raw string) (*ParsedConfig, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:            true,
		IgnoreInlineComment:        true,
		IgnoreContinuation:         true,
		PreserveSurroundedQuote:    true,
		AllowShadows:               true,
		AllowDuplicateShadowValues: true,
		AllowNonUniqueSections:     true,
		KeyValueDelimiters:         "=",
	}, []byte(Normalize(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	parsed := &ParsedConfig{}
	seen := make(map[string]bool)

	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			if keys := section.Keys(); len(keys) > 0 {
				return nil, fmt.Errorf("key %q outside of any section", keys[0].Name())
			}
			continue
		}

		if seen[section.Name()] {
			return nil, fmt.Errorf("duplicate section %q", section.Name())
		}
		seen[section.Name()] = true

		s := Section{Name: section.Name()}
		for _, key := range section.Keys() {
			if values := key.ValueWithShadows(); len(values) > 1 {
				return nil, fmt.Errorf("section %q: duplicate key %q", section.Name(), key.Name())
			}
			s.Keys = append(s.Keys, KeyValue{Key: key.Name(), Value: key.Value()})
		}
		parsed.Sections = append(parsed.Sections, s)
	}

	slog.Debug("Parsed WireGuard configuration",
		"sections", len(parsed.Sections),
		"peers", len(parsed.Peers()),
	)

	return parsed, nil
}
