package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
)

var (
	serverURL   = flag.String("server", "http://localhost:8080/", "Webhook URL")
	state       = flag.String("state", "get_balance", "Dialog state of the turn")
	intent      = flag.String("intent", "get_balance_start", "Recognized intent of the turn")
	turnFile    = flag.String("file", "", "Read the turn document from a JSON file instead of building one")
	interactive = flag.Bool("interactive", false, "Enable interactive mode")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	config := &SimulatorConfig{
		ServerURL: *serverURL,
		State:     *state,
		Intent:    *intent,
		TurnFile:  *turnFile,
	}

	simulator := NewSimulator(config, logger)

	if *interactive {
		runInteractiveMode(simulator)
		return
	}

	if err := simulator.Run(); err != nil {
		logger.Fatal("Simulation failed", zap.Error(err))
	}
}

func runInteractiveMode(sim *Simulator) {
	fmt.Println("\nDialog Turn Simulator - Interactive Mode")
	fmt.Println("========================================")
	fmt.Println("Commands:")
	fmt.Println("  send                    - Send the current turn to the webhook")
	fmt.Println("  state <name>            - Set the dialog state of the next turn")
	fmt.Println("  intent <name>           - Set the intent of the next turn")
	fmt.Println("  slot <name> <tokens...> - Add an unresolved slot value to the next turn")
	fmt.Println("  session                 - Show the session carried between turns")
	fmt.Println("  show                    - Show the last webhook response")
	fmt.Println("  reset                   - Drop slots and session, start a fresh dialog")
	fmt.Println("  quit                    - Exit simulator")
	fmt.Println("")

	sim.RunInteractive()
}
