package nats

import (
	"fmt"

	"tichu.com/server/game"
)

// GetPlayer2GameSubject carries intents from the players to the game.
func GetPlayer2GameSubject(gameCode string) string {
	return fmt.Sprintf("player.%s.game", gameCode)
}

func GetGame2AllPlayerSubject(gameCode string) string {
	return fmt.Sprintf("game.%s.player", gameCode)
}

func GetGame2PlayerSubject(gameCode string, seat game.Seat) string {
	return fmt.Sprintf("game.%s.player.%d", gameCode, int(seat))
}
