//go:build cgo

package sonicloop

import (
	"testing"

	"github.com/opd-ai/sonicloop/capture/malgodrv"
	"github.com/opd-ai/sonicloop/config"
	"github.com/stretchr/testify/assert"
)

func TestNewDriverDeviceBackend(t *testing.T) {
	cfg := config.Default().Capture
	cfg.Backend = config.BackendDevice
	assert.IsType(t, &malgodrv.Driver{}, NewDriver(cfg))
}
