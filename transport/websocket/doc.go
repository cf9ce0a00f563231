// Package websocket streams simulation traces to WebSocket clients.
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection. Clients subscribe to a channel: either the ID of a stored
// simulation, which replays that simulation turn by turn, or LiveChannel,
// which receives every simulation the server runs from then on.
//
// Message Protocol:
//
// Every frame is one JSON object:
//
//	{"simulation_id":"…","event":"turn","turn":{…},"positions":["R","H"]}
//	{"simulation_id":"…","event":"completed","positions":["E","E"]}
//
// A simulation is always sent as its turn records in order followed by a
// single completed message. Incoming client frames are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, websocket.LiveChannel, nil)
//	})
//
// All hub state is owned by the Run goroutine; the exported methods only
// talk to it over channels.
package websocket
