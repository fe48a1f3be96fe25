package elevutils

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
)

//go:generate sh -c "printf %s $(git rev-parse HEAD) > githash.txt"
//go:embed githash.txt
var gitHash string

func GetGitHash() string {
	return gitHash
}

// Args holds the simulator's command-line parameters.
type Args struct {
	Floors      int
	Elevators   int
	ConfigPath  string
	ScriptPath  string
	Identifier  string
	Interactive bool
}

func ProcessCmdArgs() Args {
	help := flag.Bool("help", false, "Show Help Window")
	version := flag.Bool("version", false, "Show Version")
	floors := flag.Int("floors", 5, "Number of floors in the bank. Defaults to 5")
	elevators := flag.Int("elevators", 2, "Number of elevators in the bank. Defaults to 2")
	configPath := flag.String("config", "", "Path to a YAML timing config. Defaults to built-in timings")
	scriptPath := flag.String("script", "", "Path to a command script to play back")
	identifier := flag.String("id", "", "Set the identifier of the bank. Defaults to random string")
	interactive := flag.Bool("interactive", false, "Read single-key door overrides from the keyboard")

	flag.Parse()

	if *floors < 2 || *floors > 64 {
		fmt.Println("Floor count must be between 2 and 64")
		os.Exit(1)
	}
	if *elevators < 1 || *elevators > 26 {
		fmt.Println("Elevator count must be between 1 and 26")
		os.Exit(1)
	}

	if *version {
		fmt.Println("Version:", GetGitHash())
		os.Exit(0)
	}

	if *help {
		fmt.Println("Usage: ./elevatorbank [OPTIONS]")
		fmt.Println("Concurrent elevator bank simulator")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Script instructions:")
		fmt.Println("	request FLOOR up|down")
		fmt.Println("	rider NAME FROM TO")
		fmt.Println("	forceopen UNIT on|off")
		fmt.Println("	forceclose UNIT on|off")
		fmt.Println("	wait DURATION")
		os.Exit(0)
	}

	return Args{
		Floors:      *floors,
		Elevators:   *elevators,
		ConfigPath:  *configPath,
		ScriptPath:  *scriptPath,
		Identifier:  *identifier,
		Interactive: *interactive,
	}
}
