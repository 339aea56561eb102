package internal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

const gameCodeLength = 6

type GameCodeCacheStruct struct {
	gameIDToCode *lru.Cache
	gameCodeToID *lru.Cache
}

var GameCodeCache = createCache()

func createCache() *GameCodeCacheStruct {
	c, err := NewCache(100000)
	if err != nil {
		panic("Cannot initialize game code cache")
	}
	return c
}

func NewCache(size int) (*GameCodeCacheStruct, error) {
	gameIDToCode, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to initialize gameIDToCode cache")
	}
	gameCodeToID, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to initialize gameCodeToID cache")
	}
	return &GameCodeCacheStruct{
		gameIDToCode: gameIDToCode,
		gameCodeToID: gameCodeToID,
	}, nil
}

func (c *GameCodeCacheStruct) Add(gameID string, gameCode string) error {
	if gameID == "" {
		return fmt.Errorf("Invalid game ID [%s]", gameID)
	} else if gameCode == "" {
		return fmt.Errorf("Invalid game Code [%s]", gameCode)
	}

	c.gameIDToCode.Add(gameID, gameCode)
	c.gameCodeToID.Add(gameCode, gameID)
	return nil
}

func (c *GameCodeCacheStruct) GameIDToCode(gameID string) (string, bool) {
	v, exists := c.gameIDToCode.Get(gameID)
	if !exists {
		return "", false
	}
	return v.(string), true
}

func (c *GameCodeCacheStruct) GameCodeToID(gameCode string) (string, bool) {
	v, exists := c.gameCodeToID.Get(gameCode)
	if !exists {
		return "", false
	}
	return v.(string), true
}

// Remove forgets both directions of the mapping for gameCode.
func (c *GameCodeCacheStruct) Remove(gameCode string) {
	if gameID, exists := c.GameCodeToID(gameCode); exists {
		c.gameIDToCode.Remove(gameID)
	}
	c.gameCodeToID.Remove(gameCode)
}

// NewGameID returns a fresh random game id.
func NewGameID() string {
	return uuid.New().String()
}

// NewGameCode derives a short upper case code from a random uuid.
func NewGameCode() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(id[:gameCodeLength])
}
