package config

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// settingLine matches `key = value` where value is double-quoted, single-quoted
// or bare up to an optional `#` comment.
var settingLine = regexp.MustCompile(`^\s*([a-z_]+[a-z0-9_]*)\s*=\s*("([^"]*)"|'([^']*)'|[^#]*)`)

// ConfParser is a koanf.Parser for flat `key = value` settings files.
// Lines that do not match the format, including comments, are ignored.
type ConfParser struct{}

// Parser returns a ConfParser.
func Parser() *ConfParser {
	return &ConfParser{}
}

// Unmarshal parses b into a flat map of raw string values.
func (p *ConfParser) Unmarshal(b []byte) (map[string]any, error) {
	out := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(b))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		m := settingLine.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}

		key := strings.TrimSpace(line[m[2]:m[3]])
		var value string
		switch {
		case m[8] >= 0:
			value = line[m[8]:m[9]]
		case m[6] >= 0:
			value = line[m[6]:m[7]]
		default:
			value = line[m[4]:m[5]]
		}
		out[key] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan settings: %w", err)
	}
	return out, nil
}

// Marshal renders a flat map back into settings lines, sorted by key.
func (p *ConfParser) Marshal(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		v := stringify(m[k])
		if strings.ContainsAny(v, "#\"") {
			fmt.Fprintf(&buf, "%s = '%s'\n", k, v)
			continue
		}
		fmt.Fprintf(&buf, "%s = \"%s\"\n", k, v)
	}
	return buf.Bytes(), nil
}
