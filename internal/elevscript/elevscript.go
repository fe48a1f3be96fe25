package elevscript

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/szymonmasternak/elevator-bank/internal/elevconsts"
	"github.com/szymonmasternak/elevator-bank/internal/logger"
)

var Log = logger.GetLogger()

// Command wraps one parsed script instruction.
type Command struct {
	//Golang doesnt support union types,
	//so we have to pass any of the below
	//structs
	Value any
}

// RequestCommand is a hall call: "request FLOOR up|down".
type RequestCommand struct {
	Floor     int
	Direction elevconsts.Direction
}

// RiderCommand places a rider at a floor: "rider NAME FROM TO".
type RiderCommand struct {
	Name string
	From int
	To   int
}

// ForceDoorCommand flips a door override: "forceopen UNIT on|off" or
// "forceclose UNIT on|off". Unit is the bank index of the elevator.
type ForceDoorCommand struct {
	Unit    int
	Open    bool
	Pressed bool
}

// WaitCommand pauses script playback: "wait DURATION".
type WaitCommand struct {
	Duration time.Duration
}

func (c *Command) CommandType() string {
	switch c.Value.(type) {
	case RequestCommand:
		return "RequestCommand"
	case RiderCommand:
		return "RiderCommand"
	case ForceDoorCommand:
		return "ForceDoorCommand"
	case WaitCommand:
		return "WaitCommand"
	default:
		return "UnknownCommand"
	}
}

// Parse reads a command script. A malformed line is logged and skipped, the
// rest of the script still runs. Blank lines and '#' comments are ignored.
func Parse(reader io.Reader) []Command {
	var commands []Command
	scanner := bufio.NewScanner(reader)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		command, err := ParseLine(line)
		if err != nil {
			Log.Warn().Msgf("Skipping script line %d: %v", lineNumber, err)
			continue
		}
		commands = append(commands, command)
	}
	return commands
}

func ParseLine(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty instruction")
	}
	switch strings.ToLower(fields[0]) {
	case "request":
		if len(fields) != 3 {
			return Command{}, fmt.Errorf("request wants FLOOR DIRECTION, got %q", line)
		}
		floor, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("unparsable floor %q", fields[1])
		}
		direction, err := parseDirection(fields[2])
		if err != nil {
			return Command{}, err
		}
		return Command{Value: RequestCommand{Floor: floor, Direction: direction}}, nil

	case "rider":
		if len(fields) != 4 {
			return Command{}, fmt.Errorf("rider wants NAME FROM TO, got %q", line)
		}
		from, err := strconv.Atoi(fields[2])
		if err != nil {
			return Command{}, fmt.Errorf("unparsable floor %q", fields[2])
		}
		to, err := strconv.Atoi(fields[3])
		if err != nil {
			return Command{}, fmt.Errorf("unparsable floor %q", fields[3])
		}
		return Command{Value: RiderCommand{Name: fields[1], From: from, To: to}}, nil

	case "forceopen", "forceclose":
		if len(fields) != 3 {
			return Command{}, fmt.Errorf("%s wants UNIT on|off, got %q", fields[0], line)
		}
		unit, err := strconv.Atoi(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("unparsable unit index %q", fields[1])
		}
		pressed, err := parseOnOff(fields[2])
		if err != nil {
			return Command{}, err
		}
		open := strings.EqualFold(fields[0], "forceopen")
		return Command{Value: ForceDoorCommand{Unit: unit, Open: open, Pressed: pressed}}, nil

	case "wait":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("wait wants DURATION, got %q", line)
		}
		duration, err := time.ParseDuration(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("unparsable duration %q", fields[1])
		}
		return Command{Value: WaitCommand{Duration: duration}}, nil
	}
	return Command{}, fmt.Errorf("unknown instruction %q", fields[0])
}

func parseDirection(word string) (elevconsts.Direction, error) {
	switch strings.ToLower(word) {
	case "up":
		return elevconsts.Up, nil
	case "down":
		return elevconsts.Down, nil
	}
	return elevconsts.None, fmt.Errorf("unparsable direction %q", word)
}

func parseOnOff(word string) (bool, error) {
	switch strings.ToLower(word) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", word)
}
