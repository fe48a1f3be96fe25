package main

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/xyproto/randomstring"

	"github.com/szymonmasternak/elevator-bank/internal/elevconfig"
	"github.com/szymonmasternak/elevator-bank/internal/elevconsts"
	"github.com/szymonmasternak/elevator-bank/internal/elevdispatch"
	"github.com/szymonmasternak/elevator-bank/internal/elevevent"
	"github.com/szymonmasternak/elevator-bank/internal/elevrider"
	"github.com/szymonmasternak/elevator-bank/internal/elevutils"
	"github.com/szymonmasternak/elevator-bank/internal/logger"
)

const RIDER_COUNT = 20

var Logger = logger.GetLoggerConfigured(zerolog.DebugLevel)

// Random-load exerciser: throws a burst of riders at a bank and reports the
// trace counts once everything settles.
func main() {
	args := elevutils.ProcessCmdArgs()

	timing, err := elevconfig.Load(args.ConfigPath)
	if err != nil {
		Logger.Fatal().Msgf("Could not load timing config: %v", err)
	}

	recorder := &elevevent.MemoryRecorder{}
	dispatcher, err := elevdispatch.NewDispatcher(args.Floors, args.Elevators, timing, recorder)
	if err != nil {
		Logger.Fatal().Msgf("Could not build the bank: %v", err)
	}
	dispatcher.Start()

	Logger.Info().Msgf("Sending %d random riders into a %d-floor, %d-elevator bank",
		RIDER_COUNT, args.Floors, args.Elevators)

	for i := 0; i < RIDER_COUNT; i++ {
		from := rand.IntN(args.Floors)
		to := rand.IntN(args.Floors)
		if to == from {
			to = (from + 1) % args.Floors
		}
		rider := elevrider.NewRider(randomstring.HumanFriendlyString(6), to)
		dispatcher.FloorAt(from).AddRider(rider)
		if err := dispatcher.RequestElevator(from, rider.DirectionFrom(from)); err != nil {
			Logger.Error().Msgf("Hall call for %v rejected: %v", rider, err)
		}
		time.Sleep(timing.DispatchRetryInterval)
	}

	waitSettled(dispatcher)

	stranded := 0
	for i := 0; i < dispatcher.NumFloors(); i++ {
		stranded += dispatcher.FloorAt(i).WaitingCount()
	}
	Logger.Info().Msgf("Load test done: %d boarded, %d delivered, %d door cycles, %d still waiting",
		recorder.Count(elevevent.RiderLoaded),
		recorder.Count(elevevent.RiderUnloaded),
		recorder.Count(elevevent.DoorOpened),
		stranded)

	dispatcher.Stop()
}

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
