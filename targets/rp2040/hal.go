//go:build tinygo && rp2040

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/bmp280"
	"tinygo.org/x/drivers/lsm6ds3tr"

	"quadfc/config"
	"quadfc/state"
)

// Board wiring
const (
	motorPeriodNS = 2_500_000 // 400 Hz ESC frame
	motorIdleUS   = 1000      // pulse width at zero speed

	// Battery sense divider is 1:4 on a 3.3 V reference; 16-bit ADC reading
	// to centivolts
	batteryScale = 1320

	// micro-dps to Q16.16 rad/s is pi/180 * 65536 / 1e6
	gyroScale = 1144
)

// pwmGroup is the subset of TinyGo's unexported PWM slice type the board uses
type pwmGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

type motor struct {
	pwm pwmGroup
	ch  uint8
}

// board implements core.HAL on an RP2040 flight board
type board struct {
	uart    *machine.UART
	imu     *lsm6ds3tr.Device
	baro    bmp280.Device
	battery machine.ADC
	motors  [4]motor
	armed   bool
	boot    time.Time
	cfg     *config.Config
}

func newBoard(cfg *config.Config) (*board, error) {
	b := &board{
		uart: machine.UART0,
		boot: time.Now(),
		cfg:  cfg,
	}

	b.uart.Configure(machine.UARTConfig{
		BaudRate: uint32(cfg.Link.Baud),
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})

	pins := [4]machine.Pin{machine.GP6, machine.GP7, machine.GP8, machine.GP9}
	groups := [4]pwmGroup{machine.PWM3, machine.PWM3, machine.PWM4, machine.PWM4}
	for i, pin := range pins {
		if err := groups[i].Configure(machine.PWMConfig{Period: motorPeriodNS}); err != nil {
			return nil, err
		}
		ch, err := groups[i].Channel(pin)
		if err != nil {
			return nil, err
		}
		b.motors[i] = motor{pwm: groups[i], ch: ch}
	}
	b.stopMotors()

	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz}); err != nil {
		return nil, err
	}
	b.imu = lsm6ds3tr.New(i2c)
	if err := b.imu.Configure(lsm6ds3tr.Configuration{
		AccelRange:      lsm6ds3tr.ACCEL_8G,
		AccelSampleRate: lsm6ds3tr.ACCEL_SR_104,
		GyroRange:       lsm6ds3tr.GYRO_1000DPS,
		GyroSampleRate:  lsm6ds3tr.GYRO_SR_104,
	}); err != nil {
		return nil, err
	}

	b.baro = bmp280.New(i2c)
	b.baro.Configure(bmp280.STANDBY_1MS, bmp280.FILTER_4X, bmp280.SAMPLING_1X, bmp280.SAMPLING_16X, bmp280.MODE_NORMAL)

	machine.InitADC()
	b.battery = machine.ADC{Pin: machine.ADC0}
	b.battery.Configure(machine.ADCConfig{})

	return b, nil
}

func (b *board) GetInputs(s *state.FlightState) {
	sn := &s.Sensors

	if x, y, z, err := b.imu.ReadRotation(); err == nil {
		sn.SP = int32(int64(x) * gyroScale / 1_000_000)
		sn.SQ = int32(int64(y) * gyroScale / 1_000_000)
		sn.SR = int32(int64(z) * gyroScale / 1_000_000)
	}
	if x, y, z, err := b.imu.ReadAcceleration(); err == nil {
		sn.SAX = int32(int64(x) << 16 / 1_000_000)
		sn.SAY = int32(int64(y) << 16 / 1_000_000)
		sn.SAZ = int32(int64(z) << 16 / 1_000_000)
	}
	if mc, err := b.imu.ReadTemperature(); err == nil {
		sn.Temperature = int32(int64(mc) << 8 / 1000)
	}
	if mpa, err := b.baro.ReadPressure(); err == nil {
		sn.SetPressure(mpa/1000, b.cfg.Control.PressureShift)
	}

	raw := int32(b.battery.Get())
	sn.SetVoltage(raw*batteryScale/65535, b.cfg.Control.VoltageShift)
}

func (b *board) SetOutputs(s *state.FlightState) {
	if !b.armed {
		b.stopMotors()
		return
	}
	for i, m := range b.motors {
		m.set(motorIdleUS + uint32(s.Motors[i]))
	}
}

func (b *board) EnableMotors(on bool) {
	b.armed = on
	if !on {
		b.stopMotors()
	}
}

func (b *board) stopMotors() {
	for _, m := range b.motors {
		m.set(motorIdleUS)
	}
}

// set drives the ESC pulse width in microseconds
func (m motor) set(us uint32) {
	top := uint64(m.pwm.Top())
	m.pwm.Set(m.ch, uint32(top*uint64(us)*1000/motorPeriodNS))
}

func (b *board) TimeUS() uint32 {
	return uint32(time.Since(b.boot).Microseconds())
}

func (b *board) TxByte(c byte) {
	_ = b.uart.WriteByte(c)
}

// Reset reboots through the watchdog, which also re-enumerates cleanly
func (b *board) Reset() {
	b.stopMotors()
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	_ = machine.Watchdog.Start()
	for {
		time.Sleep(time.Millisecond)
	}
}

func (b *board) IsTestDevice() bool {
	return b.cfg.TestDevice
}
