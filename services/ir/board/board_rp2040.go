//go:build rp2040

package board

import (
	"context"
	"device/rp"
	"io"
	"machine"
	"runtime/interrupt"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"irlink-go/errcode"
	"irlink-go/services/ir"
	"irlink-go/x/mathx"
	"irlink-go/x/timex"
)

const DefaultDevice = "pico-ir-tx"

// BootDelay leaves time for a serial monitor to attach.
const BootDelay = 2 * time.Second

const maxPin = 28

// The runtime sleeps on alarm 0; the sampling clock owns alarm 3.
const alarm = 3

// Open configures UART0 as console and returns the Pico board.
func Open() (ir.Board, io.Writer, error) {
	uart := uartx.UART0
	if err := uart.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	}); err != nil {
		return nil, nil, errcode.Wrap(errcode.InitFault, "board.console", err)
	}
	return &pico{}, uart, nil
}

type pico struct {
	pins  pinSet
	timer bool
}

// ---- input line ----

type inputPin machine.Pin

func (p inputPin) Level() (bool, error) { return machine.Pin(p).Get(), nil }

func (b *pico) InputLine(pin int, pull ir.Pull) (ir.InputLine, error) {
	if err := b.pins.claim("board.input", pin, maxPin); err != nil {
		return nil, err
	}
	mode := machine.PinInput
	if pull == ir.PullUp {
		mode = machine.PinInputPullup
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: mode})
	return inputPin(pin), nil
}

// ---- emitter ----

type pwmGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Set(channel uint8, value uint32)
	Top() uint32
}

var pwmGroups = [...]pwmGroup{
	machine.PWM0, machine.PWM1, machine.PWM2, machine.PWM3,
	machine.PWM4, machine.PWM5, machine.PWM6, machine.PWM7,
}

// carrier gates a free-running PWM carrier by switching its duty.
type carrier struct {
	pwm  pwmGroup
	ch   uint8
	duty uint32
}

func (c *carrier) Energize()   { c.pwm.Set(c.ch, c.duty) }
func (c *carrier) Deenergize() { c.pwm.Set(c.ch, 0) }

func (b *pico) Emitter(pin int, carrierHz uint32, dutyPct uint8) (ir.Actuator, error) {
	if err := b.pins.claim("board.emitter", pin, maxPin); err != nil {
		return nil, err
	}
	pwm := pwmGroups[(pin>>1)&7]
	if err := pwm.Configure(machine.PWMConfig{Period: timex.PeriodFromHz(carrierHz)}); err != nil {
		return nil, errcode.Wrap(errcode.InitFault, "board.emitter", err)
	}
	ch, err := pwm.Channel(machine.Pin(pin))
	if err != nil {
		return nil, errcode.Wrap(errcode.InitFault, "board.emitter", err)
	}
	c := &carrier{pwm: pwm, ch: ch, duty: mathx.Percent(pwm.Top(), dutyPct)}
	c.Deenergize()
	return c, nil
}

// ---- TIMER alarm ----

var alarmISR func()

func timerIRQ(interrupt.Interrupt) {
	if f := alarmISR; f != nil {
		f()
	}
}

// alarmClock re-arms the alarm one period after its last deadline, so the
// cadence does not drift with handler latency.
type alarmClock struct {
	periodUs uint32
	next     uint32
}

func (c *alarmClock) Start() error {
	rp.TIMER.INTE.SetBits(1 << alarm)
	c.next = rp.TIMER.TIMERAWL.Get() + c.periodUs
	rp.TIMER.ALARM3.Set(c.next)
	irq := interrupt.New(rp.IRQ_TIMER_IRQ_3, timerIRQ)
	irq.Enable()
	return nil
}

func (c *alarmClock) ClearPending() {
	rp.TIMER.INTR.Set(1 << alarm)
	c.next += c.periodUs
	rp.TIMER.ALARM3.Set(c.next)
}

func (b *pico) newAlarm(period time.Duration) (*alarmClock, error) {
	if b.timer {
		return nil, &errcode.E{C: errcode.InitFault, Op: "board.clock", Msg: "timer in use"}
	}
	us := mathx.RoundDiv(uint64(period), uint64(time.Microsecond))
	if us < 20 {
		return nil, &errcode.E{C: errcode.InitFault, Op: "board.clock", Msg: "period too short"}
	}
	b.timer = true
	return &alarmClock{periodUs: uint32(us)}, nil
}

func (b *pico) InterruptClock(period time.Duration, isr func()) (ir.SampleClock, error) {
	c, err := b.newAlarm(period)
	if err != nil {
		return nil, err
	}
	alarmISR = isr
	return c, nil
}

// alarmTicks is the polling clock: the interrupt only acknowledges and
// signals, and Wait sleeps until then.
type alarmTicks struct {
	c chan struct{}
}

func (t *alarmTicks) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.c:
		return nil
	}
}

func (b *pico) PollingClock(period time.Duration) (ir.TickSource, error) {
	c, err := b.newAlarm(period)
	if err != nil {
		return nil, err
	}
	t := &alarmTicks{c: make(chan struct{}, 1)}
	alarmISR = func() {
		c.ClearPending()
		select {
		case t.c <- struct{}{}:
		default:
		}
	}
	if err := c.Start(); err != nil {
		return nil, err
	}
	return t, nil
}
