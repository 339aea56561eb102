package game

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PersistGameState stores a snapshot of the game after every accepted intent.
type PersistGameState interface {
	Load(gameCode string) (*GameState, error)
	Save(gameCode string, state *GameState) error
	Remove(gameCode string) error
}

type StateNotFoundError struct {
	GameCode string
}

func (e StateNotFoundError) Error() string {
	return fmt.Sprintf("Game state for Key: %s is not found", e.GameCode)
}

// MarshalState encodes the snapshot. Map keys are sorted so equal states
// produce equal bytes.
func MarshalState(state *GameState) ([]byte, error) {
	return json.Marshal(state)
}

func UnmarshalState(b []byte) (*GameState, error) {
	state := &GameState{}
	if err := json.Unmarshal(b, state); err != nil {
		return nil, err
	}
	state.SetDeckSource(nil)
	return state, nil
}
