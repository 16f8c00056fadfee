package testutils

import (
	"io"
	"log/slog"
)

// DiscardLogger drops every record.
var DiscardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
