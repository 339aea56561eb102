package game

import "fmt"

/**
NOTE: Seats are indexed from 0-3. Seats 0 and 2 play against seats 1 and 3.
Seat s+1 sits to the right of seat s.
**/

type Seat int

const (
	NumSeats = 4
	NoSeat   = Seat(-1)
)

var AllSeats = [NumSeats]Seat{0, 1, 2, 3}

func (s Seat) Valid() bool {
	return s >= 0 && s < NumSeats
}

func (s Seat) Next() Seat {
	return (s + 1) % NumSeats
}

func (s Seat) Partner() Seat {
	return (s + 2) % NumSeats
}

func (s Seat) Left() Seat {
	return (s + NumSeats - 1) % NumSeats
}

func (s Seat) Right() Seat {
	return s.Next()
}

func (s Seat) Team() Team {
	if s%2 == 0 {
		return Team02
	}
	return Team13
}

func (s Seat) IsOpponentOf(other Seat) bool {
	return s.Valid() && other.Valid() && s.Team() != other.Team()
}

func (s Seat) String() string {
	return fmt.Sprintf("player%d", int(s)+1)
}

type Team string

const (
	Team02 Team = "TEAM_02"
	Team13 Team = "TEAM_13"
)

func (t Team) Opponent() Team {
	if t == Team02 {
		return Team13
	}
	return Team02
}

// Seats returns the two seats of the team.
func (t Team) Seats() [2]Seat {
	if t == Team02 {
		return [2]Seat{0, 2}
	}
	return [2]Seat{1, 3}
}

type Bet int

const (
	BetNone Bet = 0
	BetLow  Bet = 100
	BetHigh Bet = 200
)

func (b Bet) Valid() bool {
	return b == BetNone || b == BetLow || b == BetHigh
}

type Status string

const (
	StatusInit       Status = "INIT"
	StatusInProgress Status = "IN_PROGRESS"
	StatusOver       Status = "OVER"
)

type Result string

const (
	ResultNone   Result = ""
	ResultTeam02 Result = Result(Team02)
	ResultTeam13 Result = Result(Team13)
	ResultTie    Result = "TIE"
)

// RoundScore is the score of a single round per team.
type RoundScore struct {
	Team02 int `json:"team02"`
	Team13 int `json:"team13"`
}

func (s *RoundScore) add(team Team, points int) {
	if team == Team02 {
		s.Team02 += points
	} else {
		s.Team13 += points
	}
}

func (s RoundScore) Of(team Team) int {
	if team == Team02 {
		return s.Team02
	}
	return s.Team13
}
