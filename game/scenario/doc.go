// Package scenario loads and saves scenario files.
//
// A scenario is a JSON document in the scenario directory; its file name
// without the .json extension is the scenario ID used by the API, the MCP
// tools and the CLI:
//
//	{
//	  "name": "Opening",
//	  "players": ["A", "B"],
//	  "turns": ["A:6", "A:5", "B:6"],
//	  "expect": ["5", "H", "R", "H"]
//	}
//
// Scenarios are validated on load and on save and cached after the first read.
package scenario
