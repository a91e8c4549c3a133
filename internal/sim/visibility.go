package sim

// updateVisibility rebuilds each entity's known set from a radius query
// and counts enter/leave transitions. Same diffing shape as a game
// server's AOI pass: new IDs in range produce an enter event, known IDs
// no longer in range produce a leave event.
func (w *World) updateVisibility() {
	for id, e := range w.entities {
		got, err := w.grid.Query(e.Pos, w.view, &w.aoiBuf)
		if err != nil {
			// Only possible with a nil buffer, which we own.
			panic(err)
		}

		for _, other := range got {
			if other == id {
				continue
			}
			if _, known := e.known[other]; !known {
				e.known[other] = struct{}{}
				w.enterEvents++
			}
		}

		for other := range e.known {
			if !contains(got, other) {
				delete(e.known, other)
				w.leaveEvents++
			}
		}
	}
}

func contains(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
