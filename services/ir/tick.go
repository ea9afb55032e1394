package ir

import "irlink-go/errcode"

// sample reads one level from line and feeds it to rx.
func sample(line InputLine, rx *Receiver) error {
	level, err := line.Level()
	if err != nil {
		return errcode.Wrap(errcode.PeripheralFault, "ir.sample", err)
	}
	rx.Feed(level)
	return nil
}

// drive applies the job's next level to act. Once the job is exhausted it
// leaves act de-energized and reports false.
func drive(act Actuator, job *TransmitJob) bool {
	level, ok := job.next()
	if !ok {
		act.Deenergize()
		return false
	}
	if level {
		act.Energize()
	} else {
		act.Deenergize()
	}
	return true
}
