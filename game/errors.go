package game

import (
	"fmt"

	"github.com/pkg/errors"
)

// Rule violation codes sent back with BUSINESS_ERROR.
const (
	CodeWrongPhase         = "WRONG_PHASE"
	CodeGameNotInProgress  = "GAME_NOT_IN_PROGRESS"
	CodeSeatTaken          = "SEAT_TAKEN"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeAlreadyHanded      = "ALREADY_HANDED"
	CodeAlreadyBet         = "ALREADY_BET"
	CodeHighBetAfterReveal = "HIGH_BET_AFTER_REVEAL"
	CodeCardsLeftHand      = "CARDS_LEFT_HAND"
	CodeAlreadyRevealed    = "ALREADY_REVEALED"
	CodeNotRevealed        = "NOT_REVEALED"
	CodeAlreadyTraded      = "ALREADY_TRADED"
	CodeTradesNotSent      = "TRADES_NOT_SENT"
	CodeAlreadyReceived    = "ALREADY_RECEIVED"
	CodeCardNotHeld        = "CARD_NOT_HELD"
	CodeInvalidCombination = "INVALID_COMBINATION"
	CodeCannotBeat         = "CANNOT_BEAT"
	CodeBombRequired       = "BOMB_REQUIRED"
	CodeMahjongRequired    = "MAHJONG_REQUIRED"
	CodeWishNotSatisfied   = "WISH_NOT_SATISFIED"
	CodeCannotPass         = "CANNOT_PASS"
	CodeNoBomb             = "NO_BOMB"
	CodeBombPending        = "BOMB_PENDING"
	CodeDragonPending      = "DRAGON_PENDING"
	CodeNoRequestCard      = "NO_REQUEST_CARD"
	CodeWishAlreadyUsed    = "WISH_ALREADY_USED"
	CodeNoDragonPending    = "NO_DRAGON_PENDING"
	CodeNotTrickOwner      = "NOT_TRICK_OWNER"
	CodeInvalidTarget      = "INVALID_DRAGON_TARGET"
	CodeRoundNotOver       = "ROUND_NOT_OVER"
	CodeRateLimited        = "RATE_LIMITED"
)

// RuleViolationError is returned when an intent contradicts the game rules.
// The engine state is untouched when it is returned.
type RuleViolationError struct {
	Code string
	Msg  string
}

func (e RuleViolationError) Error() string {
	return e.Msg
}

func ruleViolation(code string, format string, args ...interface{}) error {
	return RuleViolationError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// InvariantError signals an engine bug.
type InvariantError struct {
	Msg string
}

func (e InvariantError) Error() string {
	return "Unexpected Error: " + e.Msg
}

// MalformedInputError is returned for structurally invalid intents
// (unknown card key, seat out of range, unknown intent type).
type MalformedInputError struct {
	Msg string
}

func (e MalformedInputError) Error() string {
	return e.Msg
}

type UnexpectedGameStatusError struct {
	Status Status
}

func (e UnexpectedGameStatusError) Error() string {
	return fmt.Sprintf("Unexpected game status: %s", e.Status)
}

func IsRuleViolation(err error) bool {
	var rv RuleViolationError
	return errors.As(err, &rv)
}

func IsMalformedInput(err error) bool {
	var mi MalformedInputError
	return errors.As(err, &mi)
}

// ErrorCode returns the violation code for rule violations, or a generic code.
func ErrorCode(err error) string {
	var rv RuleViolationError
	if errors.As(err, &rv) {
		return rv.Code
	}
	if IsMalformedInput(err) {
		return "MALFORMED_INPUT"
	}
	return "INTERNAL_ERROR"
}
