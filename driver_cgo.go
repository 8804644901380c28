//go:build cgo

package sonicloop

import (
	"github.com/opd-ai/sonicloop/capture"
	"github.com/opd-ai/sonicloop/capture/malgodrv"
)

func newDeviceDriver() capture.Driver {
	return malgodrv.New()
}
