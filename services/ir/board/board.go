// Package board provides the ir.Board for the running platform: the
// Raspberry Pi Pico on rp2040 builds and a simulated board elsewhere.
package board

import (
	"strconv"

	"irlink-go/errcode"
)

// pinSet tracks claimed pins so one pin cannot be handed out twice.
type pinSet uint32

func (p *pinSet) claim(op string, pin, max int) error {
	if pin < 0 || pin > max {
		return &errcode.E{C: errcode.UnknownPin, Op: op, Msg: "pin " + strconv.Itoa(pin)}
	}
	if *p&(1<<pin) != 0 {
		return &errcode.E{C: errcode.InitFault, Op: op, Msg: "pin " + strconv.Itoa(pin) + " in use"}
	}
	*p |= 1 << pin
	return nil
}
