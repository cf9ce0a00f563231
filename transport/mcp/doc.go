// Package mcp exposes the Ludo simulator to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API, and the JSON response is rendered as text for the agent.
//
// MCP Tools:
//   - simulate: Run players and turns, return the final board
//   - get_simulation: Fetch a stored simulation with trace and stats
//   - list_simulations: List stored simulations
//   - list_scenarios: List saved scenarios
//   - run_scenario: Run a saved scenario and check its expectation
//   - ludo_rules: Describe board, encoding and priorities
//
// Transport Modes:
//   - Stdio: ServeStdio for local MCP clients (the server's -stdio-mcp flag)
//   - HTTP: GetMCPServer().HandleMessage behind an HTTP endpoint
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
