package game

import (
	"sync"
)

type MemoryGameStateTracker struct {
	lock        sync.RWMutex
	activeGames map[string][]byte
}

func NewMemoryGameStateTracker() *MemoryGameStateTracker {
	return &MemoryGameStateTracker{
		activeGames: make(map[string][]byte),
	}
}

func (m *MemoryGameStateTracker) Load(gameCode string) (*GameState, error) {
	m.lock.RLock()
	stateBytes, ok := m.activeGames[gameCode]
	m.lock.RUnlock()
	if !ok {
		return nil, StateNotFoundError{GameCode: gameCode}
	}
	return UnmarshalState(stateBytes)
}

func (m *MemoryGameStateTracker) Save(gameCode string, state *GameState) error {
	stateInBytes, err := MarshalState(state)
	if err != nil {
		return err
	}
	m.lock.Lock()
	m.activeGames[gameCode] = stateInBytes
	m.lock.Unlock()
	return nil
}

func (m *MemoryGameStateTracker) Remove(gameCode string) error {
	m.lock.Lock()
	delete(m.activeGames, gameCode)
	m.lock.Unlock()
	return nil
}
