package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every rejection the engine can produce.
type ErrorKind string

const (
	KindInvalidAction    ErrorKind = "invalid_action"
	KindIllegalTarget    ErrorKind = "illegal_target"
	KindResourceExceeded ErrorKind = "resource_exceeded"
	KindStateCorruption  ErrorKind = "state_corruption"
)

// Recoverable reports whether a game can continue after an error of this kind.
func (k ErrorKind) Recoverable() bool {
	return k != KindStateCorruption
}

// Precondition failures.
var (
	ErrGameOver             = errors.New("game is over")
	ErrGameLocked           = errors.New("game is locked after an internal error")
	ErrNotStarted           = errors.New("game has not started")
	ErrWrongPhase           = errors.New("action not allowed in the current phase")
	ErrNotYourTurn          = errors.New("not your turn")
	ErrUnknownPlayer        = errors.New("unknown player")
	ErrUnknownAction        = errors.New("unknown action kind")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientGold     = errors.New("not enough gold")
	ErrInsufficientSoldiers = errors.New("not enough soldiers")
	ErrBelowMinimumAttack   = errors.New("attack below the minimum force")
	ErrWarAlreadyFought     = errors.New("a war was already fought this turn")
	ErrPeaceEnforced        = errors.New("wars are forbidden this round")
	ErrMercenariesForbidden = errors.New("mercenaries are forbidden this round")
	ErrAlreadyDrawn         = errors.New("a card was already drawn this turn")
	ErrDrawNotEligible      = errors.New("too many towns to draw a card")
	ErrDeckExhausted        = errors.New("deck and discard pile are empty")
	ErrCardNotInHand        = errors.New("card not in hand")
	ErrCardNotPlayable      = errors.New("card cannot be played this way")
	ErrNoPendingCombat      = errors.New("no combat is waiting for this player")
	ErrTitlePrerequisites   = errors.New("title prerequisites not met")
	ErrTitleAlreadyHeld     = errors.New("title already held")
	ErrFortsNotExhausted    = errors.New("fortifications can only be relocated once all are placed")
)

// Target mismatches.
var (
	ErrUnknownHolding  = errors.New("unknown holding")
	ErrNotAdjacent     = errors.New("holdings are not adjacent")
	ErrNotOwned        = errors.New("holding not owned by player")
	ErrOwnHolding      = errors.New("holding already owned by player")
	ErrNotATown        = errors.New("target is not a town")
	ErrNotASeat        = errors.New("target is not a title seat")
	ErrTargetOwned     = errors.New("target is already owned")
	ErrSeatTaken       = errors.New("title seat is held by another player")
	ErrVassalProtected = errors.New("target lies inside the player's own domain")
	ErrNoClaim         = errors.New("no claim on target")
	ErrAlreadyClaimed  = errors.New("target already claimed")
	ErrClaimScope      = errors.New("target outside the claim card's scope")
	ErrNoFortification = errors.New("no fortification of the player on source")
	ErrSameHolding     = errors.New("source and target are the same holding")
	ErrNotDefender     = errors.New("player is not the defender of the pending combat")
)

// Caps.
var (
	ErrTownFortCap   = errors.New("holding already has the maximum fortifications")
	ErrOwnerFortCap  = errors.New("player already has the maximum fortifications on this holding")
	ErrGlobalFortCap = errors.New("player has placed every fortification")
	ErrArmyCap       = errors.New("army cap exceeded")
)

// ErrInvariantViolated marks an engine bug detected after an action was applied.
var ErrInvariantViolated = errors.New("state invariant violated")

var kindBySentinel = map[error]ErrorKind{
	ErrUnknownHolding:    KindIllegalTarget,
	ErrNotAdjacent:       KindIllegalTarget,
	ErrNotOwned:          KindIllegalTarget,
	ErrOwnHolding:        KindIllegalTarget,
	ErrNotATown:          KindIllegalTarget,
	ErrNotASeat:          KindIllegalTarget,
	ErrTargetOwned:       KindIllegalTarget,
	ErrSeatTaken:         KindIllegalTarget,
	ErrVassalProtected:   KindIllegalTarget,
	ErrNoClaim:           KindIllegalTarget,
	ErrAlreadyClaimed:    KindIllegalTarget,
	ErrClaimScope:        KindIllegalTarget,
	ErrNoFortification:   KindIllegalTarget,
	ErrSameHolding:       KindIllegalTarget,
	ErrNotDefender:       KindIllegalTarget,
	ErrTownFortCap:       KindResourceExceeded,
	ErrOwnerFortCap:      KindResourceExceeded,
	ErrGlobalFortCap:     KindResourceExceeded,
	ErrArmyCap:           KindResourceExceeded,
	ErrInvariantViolated: KindStateCorruption,
	ErrGameLocked:        KindStateCorruption,
}

// KindOf classifies err. Errors that are not engine sentinels are invalid actions.
func KindOf(err error) ErrorKind {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Kind
	}
	for sentinel, kind := range kindBySentinel {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInvalidAction
}

// RuleError is a rejected or failed action. It wraps one of the sentinels above.
type RuleError struct {
	Kind     ErrorKind  `json:"kind"`
	Action   ActionKind `json:"action,omitempty"`
	PlayerID string     `json:"player_id,omitempty"`
	Reason   string     `json:"reason"`
	Err      error      `json:"-"`
}

func (e *RuleError) Error() string {
	prefix := "engine"
	if e.PlayerID != "" {
		prefix = "player " + e.PlayerID
	}
	if e.Action != "" {
		prefix += ": " + string(e.Action)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Reason)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Is matches another RuleError by kind, so errors.Is(err, &RuleError{Kind: KindIllegalTarget}) works.
func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Err == nil && t.Reason == ""
}

// Reject builds the RuleError for action failing with err. The reason is the
// sentinel message followed by the optional detail.
func Reject(action Action, err error, format string, args ...any) *RuleError {
	reason := err.Error()
	if format != "" {
		reason = fmt.Sprintf("%s: %s", reason, fmt.Sprintf(format, args...))
	}
	return &RuleError{
		Kind:     KindOf(err),
		Action:   action.Kind,
		PlayerID: action.PlayerID,
		Reason:   reason,
		Err:      err,
	}
}

// Corruption builds a fatal RuleError for a broken invariant.
func Corruption(action Action, detail string) *RuleError {
	return &RuleError{
		Kind:     KindStateCorruption,
		Action:   action.Kind,
		PlayerID: action.PlayerID,
		Reason:   fmt.Sprintf("%s: %s", ErrInvariantViolated, detail),
		Err:      ErrInvariantViolated,
	}
}

// WrapActionError annotates err with the acting player and action.
func WrapActionError(action *Action, err error) error {
	if err == nil {
		return nil
	}
	if action == nil {
		return fmt.Errorf("player action: %w", err)
	}
	return fmt.Errorf("player %s: %s: %w", action.PlayerID, action.Describe(), err)
}

// WrapGameStateError annotates err with the round and phase it occurred in.
func WrapGameStateError(round int, phase string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("game round %d [%s]: %w", round, phase, err)
}
