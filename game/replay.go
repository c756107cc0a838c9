package game

// Apply folds events onto a snapshot, advancing it to the state after the
// last event. Event payloads carry the complete effect of each transition,
// so a client holding an older snapshot reconstructs the current state from
// the event tail alone.
func Apply(s Snapshot, events []Event) Snapshot {
	for _, ev := range events {
		if ev.Seq <= s.Seq {
			continue
		}
		applyEvent(&s, ev)
		s.Seq = ev.Seq
	}
	return s
}

func applyEvent(s *Snapshot, ev Event) {
	switch payload := ev.Payload.(type) {
	case JoinedPayload:
		s.Players = append(s.Players, PlayerView{
			ID:     payload.PlayerID,
			Name:   payload.Name,
			Color:  payload.Color,
			Bot:    payload.Bot,
			Seat:   len(s.Players),
			Status: PlayerWaiting,
		})
	case LeftPayload:
		for i := range s.Players {
			if s.Players[i].ID == payload.PlayerID {
				s.Players = append(s.Players[:i], s.Players[i+1:]...)
				break
			}
		}
		for i := range s.Players {
			s.Players[i].Seat = i
		}
	case StartedPayload:
		s.Status = StatusInProgress
		reseated := make([]PlayerView, 0, len(s.Players))
		for seat, id := range payload.Seats {
			if p := s.PlayerByID(id); p != nil {
				p.Seat = seat
				p.Status = PlayerActive
				reseated = append(reseated, *p)
			}
		}
		s.Players = reseated
		for i := range s.Territories {
			t := &s.Territories[i]
			t.OwnerID = payload.Ownership[t.ID]
			t.Armies = payload.Armies[t.ID]
		}
		if p := s.PlayerByID(payload.FirstPlayerID); p != nil {
			p.TroopsToPlace = payload.TroopsToPlace
		}
	case DeployPayload:
		if t := s.TerritoryByID(payload.TerritoryID); t != nil {
			t.Armies += payload.Troops
		}
		if p := s.PlayerByID(ev.PlayerID); p != nil {
			p.TroopsToPlace = payload.Remaining
		}
	case AttackPayload:
		// Remaining counts are absolute; conquest ownership arrives in the
		// paired conquest event.
		if t := s.TerritoryByID(payload.From); t != nil {
			t.Armies = payload.AttackerRemaining
		}
		if t := s.TerritoryByID(payload.To); t != nil {
			t.Armies = payload.DefenderRemaining
		}
	case ConquestPayload:
		if t := s.TerritoryByID(payload.TerritoryID); t != nil {
			t.OwnerID = payload.NewOwnerID
		}
	case FortifyPayload:
		if t := s.TerritoryByID(payload.From); t != nil {
			t.Armies -= payload.Troops
		}
		if t := s.TerritoryByID(payload.To); t != nil {
			t.Armies += payload.Troops
		}
	case TradePayload:
		s.Trades = payload.TradeNumber
		if p := s.PlayerByID(ev.PlayerID); p != nil {
			for _, traded := range payload.Cards {
				for i, held := range p.Cards {
					if held.ID == traded.ID {
						p.Cards = append(p.Cards[:i], p.Cards[i+1:]...)
						break
					}
				}
			}
			p.TroopsToPlace += payload.Bonus
		}
		if payload.BonusTerritory != "" {
			if t := s.TerritoryByID(payload.BonusTerritory); t != nil {
				t.Armies += payload.BonusArmies
			}
		}
	case CardDrawnPayload:
		if p := s.PlayerByID(ev.PlayerID); p != nil {
			p.Cards = append(p.Cards, payload.Card)
		}
	case PhasePayload:
		s.Turn.Phase = payload.Phase
	case TurnPayload:
		s.Turn.Number = payload.Number
		s.Turn.PlayerID = payload.PlayerID
		s.Turn.Phase = Deployment
		if p := s.PlayerByID(payload.PlayerID); p != nil {
			p.TroopsToPlace = payload.TroopsToPlace
		}
	case EliminationPayload:
		if p := s.PlayerByID(payload.PlayerID); p != nil {
			p.Status = PlayerEliminated
			if payload.ByPlayerID != "" && payload.CardsPassed > 0 {
				if by := s.PlayerByID(payload.ByPlayerID); by != nil {
					by.Cards = append(by.Cards, p.Cards...)
				}
			}
			p.Cards = nil
		}
		for tid, owner := range payload.Reassigned {
			if t := s.TerritoryByID(tid); t != nil {
				t.OwnerID = owner
			}
		}
	case VictoryPayload:
		s.WinnerID = payload.PlayerID
		if p := s.PlayerByID(payload.PlayerID); p != nil {
			p.Status = PlayerWinner
			if p.Objective != nil {
				p.Objective.Achieved = true
			}
		}
	case LifecyclePayload:
		s.Status = payload.Status
	}
}
