package main

import (
	"os"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/rs/zerolog"
	"github.com/xyproto/randomstring"

	"github.com/szymonmasternak/elevator-bank/internal/elevconfig"
	"github.com/szymonmasternak/elevator-bank/internal/elevconsts"
	"github.com/szymonmasternak/elevator-bank/internal/elevdispatch"
	"github.com/szymonmasternak/elevator-bank/internal/elevevent"
	"github.com/szymonmasternak/elevator-bank/internal/elevmetadata"
	"github.com/szymonmasternak/elevator-bank/internal/elevscript"
	"github.com/szymonmasternak/elevator-bank/internal/elevutils"
	"github.com/szymonmasternak/elevator-bank/internal/logger"
)

const IDENTIFIER_DEFAULT_LEN = 10

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

func main() {
	args := elevutils.ProcessCmdArgs()

	if args.Identifier == "" {
		args.Identifier = randomstring.EnglishFrequencyString(IDENTIFIER_DEFAULT_LEN)
		Logger.Warn().Msgf("No bank identifier provided, generated random identifier \"%v\"", args.Identifier)
	}

	timing, err := elevconfig.Load(args.ConfigPath)
	if err != nil {
		Logger.Fatal().Msgf("Could not load timing config: %v", err)
	}

	Logger.Info().Msg("Starting Elevator Bank Simulator")

	dispatcher, err := elevdispatch.NewDispatcher(args.Floors, args.Elevators, timing, elevevent.LogRecorder{})
	if err != nil {
		Logger.Fatal().Msgf("Could not build the bank: %v", err)
	}

	metadata := &elevmetadata.BankMetaData{
		SoftwareVersion: elevutils.GetGitHash(),
		Identifier:      args.Identifier,
		FloorCount:      args.Floors,
		ElevatorCount:   args.Elevators,
	}
	Logger.Info().Msgf("Bank: %v", metadata.String())

	dispatcher.Start()

	if args.ScriptPath != "" {
		file, err := os.Open(args.ScriptPath)
		if err != nil {
			Logger.Fatal().Msgf("Could not open script %v: %v", args.ScriptPath, err)
		}
		commands := elevscript.Parse(file)
		file.Close()
		Logger.Info().Msgf("Playing back %d script commands", len(commands))
		elevscript.Run(dispatcher, commands)
	}

	switch {
	case args.Interactive:
		runInteractive(dispatcher)
	case args.ScriptPath != "":
		waitSettled(dispatcher)
	default:
		select {}
	}

	dispatcher.Stop()
}

// waitSettled blocks until no hall calls are queued and every unit is idle.
func waitSettled(dispatcher *elevdispatch.Dispatcher) {
	for {
		time.Sleep(200 * time.Millisecond)
		if dispatcher.QueuedRequests() != 0 {
			continue
		}
		settled := true
		for i := 0; i < dispatcher.NumUnits(); i++ {
			if dispatcher.UnitAt(i).GetState().State != elevconsts.Idle {
				settled = false
				break
			}
		}
		if settled {
			return
		}
	}
}

// runInteractive reads single keys: digits request a floor, o/c toggle the
// door overrides on unit A, q or Ctrl-C quits.
func runInteractive(dispatcher *elevdispatch.Dispatcher) {
	Logger.Info().Msg("Interactive mode: 0-9 request a floor, o/c toggle force-open/force-close on unit A, q quits")

	forceOpen, forceClose := false, false
	for {
		char, key, err := keyboard.GetSingleKey()
		if err != nil {
			Logger.Error().Msgf("Keyboard read failed: %v", err)
			return
		}
		if key == keyboard.KeyCtrlC || char == 'q' {
			return
		}

		switch {
		case char >= '0' && char <= '9':
			floor := int(char - '0')
			direction := elevconsts.Up
			if floor == dispatcher.NumFloors()-1 {
				direction = elevconsts.Down
			}
			if err := dispatcher.RequestElevator(floor, direction); err != nil {
				Logger.Warn().Msgf("Ignoring request: %v", err)
			}
		case char == 'o':
			forceOpen = !forceOpen
			dispatcher.UnitAt(0).ForceOpenDoor(forceOpen)
			Logger.Info().Msgf("Force-open on unit A now %v", forceOpen)
		case char == 'c':
			forceClose = !forceClose
			dispatcher.UnitAt(0).ForceCloseDoor(forceClose)
			Logger.Info().Msgf("Force-close on unit A now %v", forceClose)
		}
	}
}
