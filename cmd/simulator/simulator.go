package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SimulatorConfig holds the simulator configuration
type SimulatorConfig struct {
	ServerURL string
	State     string
	Intent    string
	TurnFile  string
}

// Simulator drives a conversation against the webhook one turn at a
// time, carrying the returned session and state forward so a multi-turn
// dialog (authentication detours included) can be walked by hand.
type Simulator struct {
	config *SimulatorConfig
	client *http.Client
	log    *zap.Logger

	// State carried between turns
	state   string
	intent  string
	session map[string]any
	slots   map[string]any
	lastDoc map[string]any
}

// NewSimulator creates a new dialog turn simulator
func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	return &Simulator{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
		state:   config.State,
		intent:  config.Intent,
		session: make(map[string]any),
		slots:   make(map[string]any),
	}
}

// Run sends a single turn and prints the webhook's response.
func (s *Simulator) Run() error {
	doc, err := s.buildTurn()
	if err != nil {
		return err
	}
	resp, err := s.SendTurn(doc)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

// buildTurn assembles the next turn document: from the configured file
// when one is given, otherwise from the simulator's accumulated state.
func (s *Simulator) buildTurn() (map[string]any, error) {
	if s.config.TurnFile != "" {
		raw, err := os.ReadFile(s.config.TurnFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read turn file: %w", err)
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("turn file is not a JSON object: %w", err)
		}
		return doc, nil
	}

	return map[string]any{
		"ai_version":       "v1",
		"device":           "simulator",
		"dialog":           uuid.New().String(),
		"external_user_id": "sim-user",
		"qid":              uuid.New().String(),
		"session_id":       uuid.New().String(),
		"lat":              0.0,
		"lon":              0.0,
		"state":            s.state,
		"intent":           s.intent,
		"session_info":     s.session,
		"slots":            s.slots,
	}, nil
}

// SendTurn posts one turn document and folds the response back into the
// simulator state for the next turn.
func (s *Simulator) SendTurn(doc map[string]any) (map[string]any, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	s.log.Info("Sending turn",
		zap.String("url", s.config.ServerURL),
		zap.String("state", s.state),
		zap.String("intent", s.intent),
	)

	resp, err := s.client.Post(s.config.ServerURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("webhook response is not JSON: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("webhook returned %d: %v", resp.StatusCode, result["error"])
	}

	// Carry the dialog forward: the fulfiller may have changed the
	// state, the session or the slots.
	if state, ok := result["state"].(string); ok {
		s.state = state
	}
	if session, ok := result["session_info"].(map[string]any); ok {
		s.session = session
	}
	if slots, ok := result["slots"].(map[string]any); ok {
		s.slots = slots
	}
	s.lastDoc = result

	return result, nil
}

// RunInteractive runs the simulator in interactive mode
func (s *Simulator) RunInteractive() {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		parts := strings.Fields(line)

		if len(parts) == 0 {
			fmt.Print("> ")
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "send":
			doc, err := s.buildTurn()
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				break
			}
			resp, err := s.SendTurn(doc)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				break
			}
			printJSON(resp)
			fmt.Printf("Now in state %q\n", s.state)

		case "state":
			if len(args) < 1 {
				fmt.Println("Usage: state <name>")
			} else {
				s.state = args[0]
				fmt.Printf("State set to %q\n", s.state)
			}

		case "intent":
			if len(args) < 1 {
				fmt.Println("Usage: intent <name>")
			} else {
				s.intent = args[0]
				fmt.Printf("Intent set to %q\n", s.intent)
			}

		case "slot":
			if len(args) < 2 {
				fmt.Println("Usage: slot <name> <tokens...>")
			} else {
				name := args[0]
				tokens := strings.Join(args[1:], " ")
				s.slots[name] = map[string]any{
					"type": "string",
					"values": []any{
						map[string]any{"tokens": tokens, "resolved": -1},
					},
				}
				fmt.Printf("Slot %q set to %q\n", name, tokens)
			}

		case "session":
			printJSON(s.session)

		case "show":
			if s.lastDoc == nil {
				fmt.Println("No turn sent yet")
			} else {
				printJSON(s.lastDoc)
			}

		case "reset":
			s.state = s.config.State
			s.intent = s.config.Intent
			s.session = make(map[string]any)
			s.slots = make(map[string]any)
			s.lastDoc = nil
			fmt.Println("Dialog reset")

		case "quit", "exit":
			fmt.Println("Goodbye!")
			return

		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}

		fmt.Print("> ")
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
