// Package api provides HTTP REST API handlers for the Ludo simulator.
//
// Endpoints:
//
// Simulations:
//   - POST /api/simulate - Run a list of turns and store the result
//   - GET /api/simulations - List stored simulations (sort, order, limit)
//   - GET /api/simulations/{id} - Get a simulation with its trace (history=false drops it)
//   - DELETE /api/simulations/{id} - Delete a simulation
//
// Scenarios:
//   - GET /api/scenarios - List available scenarios
//   - POST /api/scenarios - Save a scenario
//   - GET /api/scenarios/{name} - Get a scenario definition
//   - POST /api/scenarios/{name}/run - Run a scenario and store the result
//
// Other:
//   - GET /api/rules - Board constants, geometry and move priorities
//   - GET /health - Liveness check
//   - GET /ws - Live feed of every new simulation
//   - GET /ws?simulation={id} - Replay a stored simulation turn by turn
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Turns may be written as strings or objects:
//
//	{
//	  "players": ["A", "B"],
//	  "turns": ["A:6", {"player": "A", "roll": 5}, "B:6"]
//	}
//
// Errors are returned as {"error": "message"} with 400 for rule violations,
// 404 for unknown simulations or scenarios and 500 otherwise.
package api
