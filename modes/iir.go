package modes

// IIRFrac is the coefficient fraction width
const IIRFrac = 14

// IIR is a second-order low-pass filter
//
//	y[k] = b0 x[k] + b1 x[k-1] - a1 y[k-1] - a2 y[k-2]
//
// with Q14 coefficients.
type IIR struct {
	b0, b1, a1, a2 int64
	x1, y1, y2     int64
}

// NewRateFilter returns the yaw-rate filter: b0 = b1 = 0.125, a1 = -1.25, a2 = 0.5,
// unity gain at DC
func NewRateFilter() *IIR {
	return &IIR{
		b0: 2048,
		b1: 2048,
		a1: -20480,
		a2: 8192,
	}
}

// Step filters one sample
func (f *IIR) Step(x int32) int32 {
	xv := int64(x)
	y := (f.b0*xv + f.b1*f.x1 - f.a1*f.y1 - f.a2*f.y2) >> IIRFrac
	f.x1 = xv
	f.y2 = f.y1
	f.y1 = y
	return int32(y)
}

// Reset clears the filter history
func (f *IIR) Reset() {
	f.x1, f.y1, f.y2 = 0, 0, 0
}
