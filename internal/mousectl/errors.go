package mousectl

import "errors"

// ErrNoDaemonBus is returned when the session bus cannot be reached, which
// leaves hover clicking unavailable.
var ErrNoDaemonBus = errors.New("no session bus for mousetweaks")
