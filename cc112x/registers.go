// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package cc112x

// Reg is a CC112x register address. Addresses above 0xFF live in the extended register
// space and are accessed through the 0x2F address prefix.
type Reg uint16

// Strobe is a CC112x command strobe.
type Strobe byte

// Regular register space.
const (
	REG_IOCFG3        Reg = 0x00
	REG_IOCFG2        Reg = 0x01
	REG_IOCFG1        Reg = 0x02
	REG_IOCFG0        Reg = 0x03
	REG_SYNC3         Reg = 0x04
	REG_SYNC2         Reg = 0x05
	REG_SYNC1         Reg = 0x06
	REG_SYNC0         Reg = 0x07
	REG_SYNC_CFG1     Reg = 0x08
	REG_SYNC_CFG0     Reg = 0x09
	REG_DEVIATION_M   Reg = 0x0A
	REG_MODCFG_DEV_E  Reg = 0x0B
	REG_DCFILT_CFG    Reg = 0x0C
	REG_PREAMBLE_CFG1 Reg = 0x0D
	REG_PREAMBLE_CFG0 Reg = 0x0E
	REG_FREQ_IF_CFG   Reg = 0x0F
	REG_IQIC          Reg = 0x10
	REG_CHAN_BW       Reg = 0x11
	REG_MDMCFG1       Reg = 0x12
	REG_MDMCFG0       Reg = 0x13
	REG_SYMBOL_RATE2  Reg = 0x14
	REG_SYMBOL_RATE1  Reg = 0x15
	REG_SYMBOL_RATE0  Reg = 0x16
	REG_AGC_REF       Reg = 0x17
	REG_AGC_CS_THR    Reg = 0x18
	REG_AGC_CFG3      Reg = 0x1A
	REG_AGC_CFG2      Reg = 0x1B
	REG_AGC_CFG1      Reg = 0x1C
	REG_AGC_CFG0      Reg = 0x1D
	REG_FIFO_CFG      Reg = 0x1E
	REG_SETTLING_CFG  Reg = 0x20
	REG_FS_CFG        Reg = 0x21
	REG_PKT_CFG2      Reg = 0x26
	REG_PKT_CFG1      Reg = 0x27
	REG_PKT_CFG0      Reg = 0x28
	REG_RFEND_CFG1    Reg = 0x29
	REG_RFEND_CFG0    Reg = 0x2A
	REG_PA_CFG2       Reg = 0x2B
	REG_PA_CFG1       Reg = 0x2C
	REG_PA_CFG0       Reg = 0x2D
	REG_PKT_LEN       Reg = 0x2E
)

// Extended register space.
const (
	REG_FREQOFF_CFG    Reg = 0x2F01
	REG_FREQ2          Reg = 0x2F0C
	REG_FREQ1          Reg = 0x2F0D
	REG_FREQ0          Reg = 0x2F0E
	REG_FS_DIG1        Reg = 0x2F12
	REG_FS_DIG0        Reg = 0x2F13
	REG_FS_CAL2        Reg = 0x2F15
	REG_FS_CAL1        Reg = 0x2F16
	REG_FS_CAL0        Reg = 0x2F17
	REG_FS_CHP         Reg = 0x2F18
	REG_FS_DIVTWO      Reg = 0x2F19
	REG_FS_DSM0        Reg = 0x2F1B
	REG_FS_DVC0        Reg = 0x2F1D
	REG_FS_PFD         Reg = 0x2F1F
	REG_FS_PRE         Reg = 0x2F20
	REG_FS_REG_DIV_CML Reg = 0x2F21
	REG_FS_SPARE       Reg = 0x2F22
	REG_FS_VCO4        Reg = 0x2F23
	REG_FS_VCO2        Reg = 0x2F25
	REG_FS_VCO0        Reg = 0x2F27
	REG_XOSC5          Reg = 0x2F32
	REG_XOSC1          Reg = 0x2F36
	REG_RSSI1          Reg = 0x2F71
	REG_MARCSTATE      Reg = 0x2F73
	REG_PARTNUMBER     Reg = 0x2F8F
	REG_PARTVERSION    Reg = 0x2F90
	REG_NUM_TXBYTES    Reg = 0x2FD6
	REG_NUM_RXBYTES    Reg = 0x2FD7
)

// Command strobes.
const (
	SRES    Strobe = 0x30
	SFSTXON Strobe = 0x31
	SXOFF   Strobe = 0x32
	SCAL    Strobe = 0x33
	SRX     Strobe = 0x34
	STX     Strobe = 0x35
	SIDLE   Strobe = 0x36
	SPWD    Strobe = 0x39
	SFRX    Strobe = 0x3A
	SFTX    Strobe = 0x3B
	SNOP    Strobe = 0x3D
)

// SPI header bits and special addresses.
const (
	readAccess  = 0x80
	burstAccess = 0x40
	extAddr     = 0x2F
	fifoAddr    = 0x3F
)

// MARCSTATE values. The low 5 bits hold the main radio state, bits 6:5 the 2-pin state.
const (
	MARC_STATE_MASK  = 0x1F
	MARC_IDLE        = 0x01
	MARC_RX          = 0x0D
	MARC_RX_FIFO_ERR = 0x11
	MARC_TX          = 0x13
	MARC_TX_FIFO_ERR = 0x16

	// MARCSTATE read back when the synthesizer calibration has finished and the
	// radio settled in IDLE (2-pin state IDLE + IDLE).
	MARCSTATE_SETTLED = 0x41
)

const (
	FIFO_SIZE        = 128 // bytes in each of the TX and RX FIFOs
	VCDACStartOffset = 2   // added to FS_CAL2 for the "high" calibration run
	MaxPacketLen     = 125 // largest packet length byte accepted by the codec
	DefaultPacketLen = 5   // length of the beacon packet, header included
	statusBytes      = 2   // RSSI and CRC_OK|LQI appended by PKT_CFG1.APPEND_STATUS
	partCC1120       = 0x48
	partCC1121       = 0x40
	partCC1125       = 0x58
	partCC1175       = 0x5A
)

// Setting is one <address, data> pair of a register profile.
type Setting struct {
	Addr Reg
	Data byte
}

// ReferenceProfile is the register profile of the beacon link: 437.5 MHz with a 32 MHz
// crystal, 2-FSK, fixed packet length, CRC on and status bytes appended, GPIO2 asserting
// on sync word and de-asserting at the end of a packet (falling edge = packet done).
// Flight builds replace it with the SmartRF Studio export for the board.
var ReferenceProfile = []Setting{
	{REG_IOCFG3, 0xB0},
	{REG_IOCFG2, 0x06}, // PKT_SYNC_RXTX
	{REG_IOCFG1, 0xB0},
	{REG_IOCFG0, 0x40},
	{REG_SYNC_CFG1, 0x08},
	{REG_DEVIATION_M, 0xA3},
	{REG_MODCFG_DEV_E, 0x02},
	{REG_DCFILT_CFG, 0x1C},
	{REG_PREAMBLE_CFG1, 0x18},
	{REG_IQIC, 0xC6},
	{REG_CHAN_BW, 0x08},
	{REG_MDMCFG0, 0x05},
	{REG_SYMBOL_RATE2, 0x43},
	{REG_SYMBOL_RATE1, 0xA9},
	{REG_SYMBOL_RATE0, 0x2A},
	{REG_AGC_REF, 0x20},
	{REG_AGC_CS_THR, 0x19},
	{REG_AGC_CFG1, 0xA9},
	{REG_AGC_CFG0, 0xCF},
	{REG_FIFO_CFG, 0x00},
	{REG_FS_CFG, 0x14},
	{REG_PKT_CFG1, 0x05}, // CRC on, append status
	{REG_PKT_CFG0, 0x00}, // fixed packet length
	{REG_PA_CFG0, 0x7E},
	{REG_FREQOFF_CFG, 0x22},
	{REG_FREQ2, 0x6D},
	{REG_FREQ1, 0x60},
	{REG_FREQ0, 0x00},
	{REG_FS_DIG1, 0x00},
	{REG_FS_DIG0, 0x5F},
	{REG_FS_CAL1, 0x40},
	{REG_FS_CAL0, 0x0E},
	{REG_FS_DIVTWO, 0x03},
	{REG_FS_DSM0, 0x33},
	{REG_FS_DVC0, 0x17},
	{REG_FS_PFD, 0x50},
	{REG_FS_PRE, 0x6E},
	{REG_FS_REG_DIV_CML, 0x14},
	{REG_FS_SPARE, 0xAC},
	{REG_FS_VCO0, 0xB4},
	{REG_XOSC5, 0x0E},
	{REG_XOSC1, 0x03},
}

// PartName maps a PARTNUMBER value to the chip name.
func PartName(p byte) string {
	switch p {
	case partCC1120:
		return "CC1120"
	case partCC1121:
		return "CC1121"
	case partCC1125:
		return "CC1125"
	case partCC1175:
		return "CC1175"
	}
	return "unknown"
}
