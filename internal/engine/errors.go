package engine

import "errors"

// ErrNoStore is returned by history operations when no store is configured.
var ErrNoStore = errors.New("validation history is disabled")
