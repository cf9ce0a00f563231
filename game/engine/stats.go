package engine

// PlayerStats aggregates one player's activity over a turn trace
type PlayerStats struct {
	Player    Quadrant `json:"player"`
	Turns     int      `json:"turns"`
	Skipped   int      `json:"skipped"`
	Moves     int      `json:"moves"`
	Idle      int      `json:"idle"`
	Entries   int      `json:"entries"`
	Captures  int      `json:"captures"`
	Lost      int      `json:"lost"`
	Finishes  int      `json:"finishes"`
	Completed bool     `json:"completed"`
	// Turn index on which the player completed, 0 if it never did
	CompletedAt int `json:"completed_at,omitempty"`
}

// Summarize computes per-player statistics from a trace, in the order of players
func Summarize(players []Quadrant, history []TurnRecord) []PlayerStats {
	stats := make([]PlayerStats, len(players))
	index := make(map[Quadrant]*PlayerStats, len(players))
	for i, q := range players {
		stats[i].Player = q
		index[q] = &stats[i]
	}

	for _, rec := range history {
		s, ok := index[rec.Turn.Player]
		if !ok {
			continue
		}
		s.Turns++

		switch {
		case rec.Skipped:
			s.Skipped++
			continue
		case rec.Move == nil || !rec.Move.Moved():
			s.Idle++
		default:
			s.Moves++
			if rec.Move.From.Kind() == KindHome {
				s.Entries++
			}
			if rec.Move.To.Kind() == KindFinished {
				s.Finishes++
			}
			for _, c := range rec.Move.Captures {
				s.Captures++
				if victim, ok := index[c.Player]; ok {
					victim.Lost++
				}
			}
		}

		if rec.Completed {
			s.Completed = true
			s.CompletedAt = rec.Index
		}
	}

	return stats
}
