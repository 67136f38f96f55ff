package cli

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/dbcache/internal/client/config"
	"github.com/dmitrijs2005/dbcache/internal/logging"
)

// NewLogger builds the logger selected by the config. The returned func
// flushes buffered output and should run before the process exits.
func NewLogger(c *config.Config, w io.Writer) (logging.Logger, func() error, error) {
	switch c.LogBackend {
	case "zap":
		zl, err := logging.BuildZap(c.LogLevel, c.LogFormat)
		if err != nil {
			return nil, nil, fmt.Errorf("build zap logger: %w", err)
		}
		l := logging.NewZapLogger(zl)
		return l, l.Sync, nil
	case "slog", "":
		l, err := logging.BuildSlog(w, c.LogLevel, c.LogFormat)
		if err != nil {
			return nil, nil, err
		}
		return l, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown log backend %q", c.LogBackend)
}
