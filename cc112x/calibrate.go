// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package cc112x

import (
	"errors"
	"fmt"
)

// ErrCalibrationTimeout is returned when the synthesizer does not settle back in IDLE
// within the poll budget. The radio is unusable after it.
var ErrCalibrationTimeout = errors.New("cc112x: calibration timeout")

// DefaultCalibrationPolls bounds the MARCSTATE poll after a calibration strobe. A
// calibration takes well under a millisecond, each poll is one SPI transaction.
const DefaultCalibrationPolls = 10000

// CalTriple holds the synthesizer registers captured after one calibration run.
type CalTriple struct {
	VCO2 byte // FS_VCO2, VCO cap-array setting
	VCO4 byte // FS_VCO4
	CHP  byte // FS_CHP, charge pump current
}

// Calibration describes a completed manual calibration.
type Calibration struct {
	High     CalTriple // result with VCDAC start = FS_CAL2 + VCDACStartOffset
	Mid      CalTriple // result with the original VCDAC start
	UsedHigh bool      // true if the High triple was written back
}

// Applied returns the triple that was programmed into the chip.
func (c *Calibration) Applied() CalTriple {
	if c.UsedHigh {
		return c.High
	}
	return c.Mid
}

// chooseCalibration picks the run with the larger FS_VCO2, the mid run wins ties.
func chooseCalibration(high, mid CalTriple) (CalTriple, bool) {
	if high.VCO2 > mid.VCO2 {
		return high, true
	}
	return mid, false
}

// Calibrate runs the manual synthesizer calibration from the CC112x silicon errata: the
// synthesizer is calibrated twice, once starting from a VCDAC value above the default and
// once from the default, and the result with the highest VCO cap-array setting is kept.
// maxPolls bounds each wait for the calibration to finish, zero selects
// DefaultCalibrationPolls.
func (r *Radio) Calibrate(maxPolls int) (*Calibration, error) {
	if r.err != nil {
		return nil, r.err
	}
	if maxPolls <= 0 {
		maxPolls = DefaultCalibrationPolls
	}
	r.state = Calibrating

	origCal2 := r.port.Read(REG_FS_CAL2)
	high, err := r.calRun(origCal2+VCDACStartOffset, maxPolls)
	if err != nil {
		return nil, r.fail(err)
	}
	mid, err := r.calRun(origCal2, maxPolls)
	if err != nil {
		return nil, r.fail(err)
	}

	best, usedHigh := chooseCalibration(high, mid)
	r.port.Write(REG_FS_VCO2, best.VCO2)
	r.port.Write(REG_FS_VCO4, best.VCO4)
	r.port.Write(REG_FS_CHP, best.CHP)
	if err := r.portErr(); err != nil {
		return nil, r.fail(err)
	}

	r.stats.calibrations.Add(1)
	r.state = Idle
	cal := &Calibration{High: high, Mid: mid, UsedHigh: usedHigh}
	used := "mid"
	if usedHigh {
		used = "high"
	}
	r.log("calibration high=%+v mid=%+v, using %s", high, mid, used)
	return cal, nil
}

// calRun performs one calibration with the given VCDAC start value and returns the
// resulting synthesizer registers.
func (r *Radio) calRun(cal2 byte, maxPolls int) (CalTriple, error) {
	// Set VCO cap-array to 0 and program the VCDAC start value.
	r.port.Write(REG_FS_VCO2, 0x00)
	r.port.Write(REG_FS_CAL2, cal2)

	// Calibrate and wait for the radio to be back in IDLE.
	r.port.Strobe(SCAL)
	settled := false
	var marc byte
	for n := 0; n < maxPolls; n++ {
		if marc = r.port.Read(REG_MARCSTATE); marc == MARCSTATE_SETTLED {
			settled = true
			break
		}
	}
	if err := r.portErr(); err != nil {
		return CalTriple{}, err
	}
	if !settled {
		return CalTriple{}, fmt.Errorf("%w: MARCSTATE=%#02x after %d polls (FS_CAL2=%#02x)",
			ErrCalibrationTimeout, marc, maxPolls, cal2)
	}

	return CalTriple{
		VCO2: r.port.Read(REG_FS_VCO2),
		VCO4: r.port.Read(REG_FS_VCO4),
		CHP:  r.port.Read(REG_FS_CHP),
	}, nil
}
