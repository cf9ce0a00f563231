package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/ludo/game/engine"
	"github.com/wricardo/mcp-training/ludo/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Ludo Simulator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Ludo Simulator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

The simulator plays a simplified, fully deterministic Ludo: 2 to 4 players
(quadrants A, B, C, D), two tokens each, and a fixed rule decides which token
a roll moves. You supply the players and the rolls; the server returns the
final board and a turn-by-turn trace.

POSITION ENCODING:
H = at home, R = on the entry cell, 1-56 = shared track cell,
A1..A6 = home stretch of quadrant A (same for B, C, D), E = finished.

AVAILABLE TOOLS:
- simulate: Run a list of turns such as ["A:6", "A:5", "B:6"]
- get_simulation: Fetch a stored simulation and its trace
- list_simulations: List stored simulations
- list_scenarios: List saved scenarios
- run_scenario: Run a saved scenario and check its expected board
- ludo_rules: Board constants, quadrant geometry and move priorities`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "simulate",
		Description: "Run a sequence of die rolls for the given players and return the final board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"players": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"A", "B", "C", "D"},
					},
					"description": "Participating quadrants in order, e.g. [\"A\", \"B\"]",
				},
				"turns": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
					},
					"description": "Turns as PLAYER:ROLL, e.g. [\"A:6\", \"A:5\", \"B:6\"]",
				},
				"trace": map[string]interface{}{
					"type":        "boolean",
					"description": "Include the turn-by-turn trace in the result",
				},
			},
			Required: []string{"players", "turns"},
		},
	}, c.handleSimulate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_simulation",
		Description: "Get a stored simulation with its trace and statistics",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"simulation_id": map[string]interface{}{
					"type":        "string",
					"description": "Simulation ID returned by simulate or run_scenario",
				},
			},
			Required: []string{"simulation_id"},
		},
	}, c.handleGetSimulation)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_simulations",
		Description: "List stored simulations, most recently used first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of simulations to list",
				},
			},
		},
	}, c.handleListSimulations)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List saved scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_scenario",
		Description: "Run a saved scenario and report whether the final board matches its expectation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Scenario ID from list_scenarios",
				},
				"trace": map[string]interface{}{
					"type":        "boolean",
					"description": "Include the turn-by-turn trace in the result",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleRunScenario)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "ludo_rules",
		Description: "Describe the board, the position encoding and the token priority rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRules)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the MCP tools over stdin/stdout
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// stringList accepts a JSON array of strings or a single comma separated string
func stringList(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Tool handlers

func (c *Client) handleSimulate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	players := stringList(args["players"])
	if len(players) == 0 {
		return mcp.NewToolResultError("players is required"), nil
	}
	// "A,B" is accepted as well as ["A","B"].
	if len(players) == 1 && strings.Contains(players[0], ",") {
		players = strings.Split(players[0], ",")
	}

	turns, err := engine.ParseTurns(stringList(args["turns"]))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	trace, _ := args["trace"].(bool)

	var sim service.Simulation
	req := service.SimulationRequest{Players: players, Turns: turns}
	if err := c.apiCall(ctx, "POST", "/api/simulate", req, &sim); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSimulation(&sim, trace)), nil
}

func (c *Client) handleGetSimulation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := arguments(request)["simulation_id"].(string)
	if id == "" {
		return mcp.NewToolResultError("simulation_id is required"), nil
	}

	var sim service.Simulation
	if err := c.apiCall(ctx, "GET", "/api/simulations/"+url.PathEscape(id), nil, &sim); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSimulation(&sim, true)), nil
}

func (c *Client) handleListSimulations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/simulations"
	if limit, ok := arguments(request)["limit"].(float64); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", int(limit))
	}

	var resp struct {
		Total       int                          `json:"total"`
		Simulations []*service.SimulationSummary `json:"simulations"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(resp.Simulations) == 0 {
		return mcp.NewToolResultText("No simulations stored"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Simulations (%d of %d):\n", len(resp.Simulations), resp.Total)
	for _, s := range resp.Simulations {
		fmt.Fprintf(&b, "- %s", s.ID)
		if s.Scenario != "" {
			fmt.Fprintf(&b, " [%s]", s.Scenario)
		}
		fmt.Fprintf(&b, " %d turns: %s\n", s.TurnsPlayed, engine.FormatBoard(s.Players, s.Positions))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []*service.ScenarioInfo
	if err := c.apiCall(ctx, "GET", "/api/scenarios", nil, &scenarios); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(scenarios) == 0 {
		return mcp.NewToolResultText("No scenarios available"), nil
	}

	var b strings.Builder
	b.WriteString("Available scenarios:\n")
	for _, s := range scenarios {
		fmt.Fprintf(&b, "- %s: %s (%d players, %d turns", s.ScenarioID, s.Name, len(s.Players), s.TurnCount)
		if s.HasExpect {
			b.WriteString(", has expectation")
		}
		b.WriteString(")\n")
		if s.Description != "" {
			fmt.Fprintf(&b, "  %s\n", s.Description)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleRunScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	trace, _ := args["trace"].(bool)

	var sim service.Simulation
	if err := c.apiCall(ctx, "POST", "/api/scenarios/"+url.PathEscape(name)+"/run", nil, &sim); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSimulation(&sim, trace)), nil
}

func (c *Client) handleRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rules engine.RulesInfo
	if err := c.apiCall(ctx, "GET", "/api/rules", nil, &rules); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRules(rules)), nil
}

// Formatting helpers

func formatSimulation(sim *service.Simulation, trace bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Simulation: %s\n", sim.ID)
	if sim.Scenario != "" {
		fmt.Fprintf(&b, "Scenario: %s\n", sim.Scenario)
	}
	fmt.Fprintf(&b, "Turns played: %d\n", len(sim.Turns))
	fmt.Fprintf(&b, "Final board: %s\n", engine.FormatBoard(sim.Players, sim.Positions))
	fmt.Fprintf(&b, "Positions: [%s]\n", strings.Join(sim.Positions, ", "))

	if len(sim.Completed) > 0 {
		names := make([]string, len(sim.Completed))
		for i, q := range sim.Completed {
			names[i] = string(q)
		}
		fmt.Fprintf(&b, "Completed: %s\n", strings.Join(names, ", "))
	}

	if sim.Matches != nil {
		if *sim.Matches {
			b.WriteString("✓ Expected board reached\n")
		} else {
			fmt.Fprintf(&b, "✗ Expected [%s]\n", strings.Join(sim.Expected, ", "))
		}
	}

	if len(sim.Stats) > 0 {
		b.WriteString("\nStats:\n")
		for _, s := range sim.Stats {
			fmt.Fprintf(&b, "  %s: %d moves, %d idle, %d skipped, %d entries, %d captures, %d lost, %d finishes\n",
				s.Player, s.Moves, s.Idle, s.Skipped, s.Entries, s.Captures, s.Lost, s.Finishes)
		}
	}

	if trace && len(sim.History) > 0 {
		b.WriteString("\nTrace:\n")
		for _, rec := range sim.History {
			fmt.Fprintf(&b, "%s  [%s]\n", rec, strings.Join(rec.Board, " "))
		}
	}

	return b.String()
}

func formatRules(rules engine.RulesInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Track: %d shared cells, home stretch of %d, finish at step %d\n",
		rules.TrackCells, rules.StretchLength, rules.FinishStep)
	fmt.Fprintf(&b, "Rolls: %d-%d, a %d brings a token out of home\n",
		rules.MinRoll, rules.MaxRoll, rules.EntryRoll)
	fmt.Fprintf(&b, "Players: up to %d\n", rules.MaxPlayers)

	b.WriteString("\nQuadrants (entry cell / last track cell):\n")
	for _, q := range engine.Quadrants() {
		if g, ok := rules.Geometry[q]; ok {
			fmt.Fprintf(&b, "  %s: %d / %d\n", q, g.Start, g.End)
		}
	}

	b.WriteString("\nToken priority, first match wins:\n")
	for i, p := range rules.Priorities {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}

	b.WriteString("\nPosition encoding:\n")
	for _, key := range []string{"H", "R", "N", "XN", "E"} {
		if desc, ok := rules.Encodings[key]; ok {
			fmt.Fprintf(&b, "  %-2s %s\n", key, desc)
		}
	}

	return b.String()
}
