//go:build !darwin

package extract

import (
	"context"

	"github.com/vexide/arm-toolchain/downloader/core"
)

func extractDmg(context.Context, string, string, core.InstallSink) error {
	return core.ErrDmgNotSupported
}
