package main

import (
	"context"
	"flag"
	"time"

	"irlink-go/bus"
	"irlink-go/services/beacon"
	"irlink-go/services/config"
	"irlink-go/services/ir"
	"irlink-go/services/ir/board"
	"irlink-go/x/logx"
)

// deviceID selects the embedded configuration; override with
// -ldflags "-X main.deviceID=pico-ir-rx".
var deviceID = board.DefaultDevice

func main() {
	flag.Parse()
	time.Sleep(board.BootDelay)

	ctx := context.Background()
	b, console, err := board.Open()
	if err != nil {
		panic(err) // no console to report on
	}
	logx.Start(ctx, console)
	log := logx.New("main")
	log.Info("boot", "device", deviceID)

	bs := bus.NewBus(8)
	cfgConn := bs.NewConnection("config")
	irConn := bs.NewConnection("ir")

	if err := <-config.NewConfigService().Start(config.WithDevice(ctx, deviceID), cfgConn); err != nil {
		halt(log, err)
	}
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	irCfg, err := config.Await(wctx, irConn, "ir", ir.DefaultConfig())
	cancel()
	if err != nil {
		halt(log, err)
	}

	svc, err := ir.NewService(irCfg, b, logx.New("ir"))
	if err != nil {
		halt(log, err)
	}
	if tx := svc.Transmitter(); tx != nil {
		beacon.New(tx, logx.New("beacon")).Start(ctx, bs.NewConnection("beacon"))
	}
	if err := svc.Run(ctx, irConn); err != nil {
		halt(log, err)
	}
}

// halt is the fatal path: report, let the console drain, stop.
func halt(log *logx.Logger, err error) {
	log.Error("fatal", "err", err)
	logx.Flush()
	time.Sleep(100 * time.Millisecond)
	panic(err)
}
