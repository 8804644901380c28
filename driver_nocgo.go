//go:build !cgo

package sonicloop

import (
	"github.com/opd-ai/sonicloop/capture"
	"github.com/sirupsen/logrus"
)

func newDeviceDriver() capture.Driver {
	logrus.WithFields(logrus.Fields{
		"function": "newDeviceDriver",
	}).Warn("Built without cgo, no audio device support")
	return capture.NullDriver{}
}
