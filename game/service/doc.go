// Package service provides the business logic layer for the Ludo simulator.
//
// The service package implements:
//   - Running turn sequences through the rules engine
//   - Storing finished simulations for later lookup and replay
//   - Loading, saving and running named scenarios
//
// Core Interfaces:
//
// SimulationService is the main service interface used by every transport.
// SimulationStore keeps finished simulations keyed by a generated ID.
// ScenarioManager loads and saves scenario files.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine. Every call builds a fresh engine.Game, so simulations never share
// state; only the finished result is kept in the store.
//
// Usage:
//
//	results := store.NewManager(30 * time.Minute)
//	scenarios := scenario.NewManager("scenarios")
//	svc := service.NewSimulationService(results, scenarios)
//
//	sim, err := svc.Simulate(ctx, service.SimulationRequest{
//		Players: []string{"A", "B"},
//		Turns:   turns,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(sim.Positions)
package service
