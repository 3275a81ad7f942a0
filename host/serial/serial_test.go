package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quadfc/config"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig("/dev/ttyUSB1")
	assert.Equal(t, "/dev/ttyUSB1", c.Device)
	assert.Equal(t, 115200, c.Baud)
}

func TestFromLink(t *testing.T) {
	assert.Equal(t, 9600, FromLink(config.LinkConfig{Device: "COM3", Baud: 9600}).Baud)
	assert.Equal(t, config.DefaultBaud, FromLink(config.LinkConfig{Device: "COM3"}).Baud)
}

func TestOpenNilConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)
}
