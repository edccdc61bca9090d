// Package ldso runs the shared-library cache refresher after installs and
// removals.
package ldso

import (
	"fmt"
	"os/exec"

	"go.pakt.dev/pakt/internal/adapters/fsutil"
	"go.pakt.dev/pakt/internal/core/domain"
	"go.pakt.dev/pakt/internal/core/ports"
)

const ldconfigPath = "/sbin/ldconfig"

// Refresher invokes ldconfig as a subprocess and waits for it.
type Refresher struct {
	log ports.Logger
}

var _ ports.LibCache = (*Refresher)(nil)

// New creates a Refresher reporting failures through log.
func New(log ports.Logger) *Refresher {
	return &Refresher{log: log}
}

// Refresh runs `ldconfig -r root` if <root>/etc/ld.so.conf exists. A failed
// invocation is reported and absorbed.
func (r *Refresher) Refresh(root string) {
	if !fsutil.Exists(domain.Normalize(root + "/" + domain.LdSoConf)) {
		return
	}

	cmd := exec.Command(ldconfigPath, "-r", root)
	if err := cmd.Run(); err != nil {
		r.log.Warn(fmt.Sprintf("could not execute %s: %v", ldconfigPath, err))
	}
}
