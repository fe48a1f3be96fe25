package elevscript

import (
	"time"

	"github.com/szymonmasternak/elevator-bank/internal/elevdispatch"
	"github.com/szymonmasternak/elevator-bank/internal/elevrider"
)

// Run plays a parsed script against a running dispatcher. Commands naming a
// floor or unit the bank does not have are boundary errors: logged, skipped,
// playback continues.
func Run(dispatcher *elevdispatch.Dispatcher, commands []Command) {
	for _, command := range commands {
		switch cmd := command.Value.(type) {
		case RequestCommand:
			if err := dispatcher.RequestElevator(cmd.Floor, cmd.Direction); err != nil {
				Log.Warn().Msgf("Skipping request command: %v", err)
			}

		case RiderCommand:
			if cmd.From < 0 || cmd.From >= dispatcher.NumFloors() ||
				cmd.To < 0 || cmd.To >= dispatcher.NumFloors() {
				Log.Warn().Msgf("Skipping rider %v: floors %d->%d outside [0,%d)",
					cmd.Name, cmd.From, cmd.To, dispatcher.NumFloors())
				continue
			}
			if cmd.From == cmd.To {
				Log.Warn().Msgf("Skipping rider %v: already at floor %d", cmd.Name, cmd.To)
				continue
			}
			rider := elevrider.NewRider(cmd.Name, cmd.To)
			dispatcher.FloorAt(cmd.From).AddRider(rider)
			if err := dispatcher.RequestElevator(cmd.From, rider.DirectionFrom(cmd.From)); err != nil {
				Log.Warn().Msgf("Skipping hall call for rider %v: %v", cmd.Name, err)
			}

		case ForceDoorCommand:
			if cmd.Unit < 0 || cmd.Unit >= dispatcher.NumUnits() {
				Log.Warn().Msgf("Skipping force-door command: unit %d outside [0,%d)", cmd.Unit, dispatcher.NumUnits())
				continue
			}
			if cmd.Open {
				dispatcher.UnitAt(cmd.Unit).ForceOpenDoor(cmd.Pressed)
			} else {
				dispatcher.UnitAt(cmd.Unit).ForceCloseDoor(cmd.Pressed)
			}

		case WaitCommand:
			time.Sleep(cmd.Duration)
		}
	}
}
