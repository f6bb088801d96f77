package commands

import (
	"encoding/json"
	"io"

	"github.com/gaborage/go-settings/logger"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// redact renders v with credentials masked unless reveal is set.
func redact(name string, v any, reveal bool) any {
	if reveal {
		return v
	}
	return logger.NewSensitiveDataFilter(nil).FilterValue(name, v)
}
