package ds1307

const (
	Address  = 0x68 // Fixed I2C address of the DS1307
	Seconds  = 0x00 // Seconds register, bit 7 is clock halt
	Minutes  = 0x01 // Minutes register
	Hours    = 0x02 // Hours register, bit 6 selects 12-hour mode
	Day      = 0x03 // Day of week, 1-7
	Date     = 0x04 // Day of month, 1-31
	Month    = 0x05 // Month, 1-12
	Year     = 0x06 // Year within the century, 0-99
	Control  = 0x07 // Square wave output control
	RAMStart = 0x08 // First byte of battery-backed RAM
	RAMEnd   = 0x3F // Last byte of battery-backed RAM

	// TimeRegisters is the number of registers holding time and date.
	TimeRegisters = 7
)

const (
	clockHalt  = 0b1000_0000 // Seconds: oscillator stopped
	mode12Hour = 0b0100_0000 // Hours: 12-hour mode
	pm         = 0b0010_0000 // Hours in 12-hour mode: PM
)
