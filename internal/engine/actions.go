package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/world"
)

// Action request failures, checked in this order: the citizen must
// exist, the token must match, the action verb must be known, and its
// parameters must be valid. Any failure leaves the world untouched.
var (
	ErrNotFound      = errors.New("citizen not found")
	ErrUnauthorized  = errors.New("invalid token")
	ErrInvalidAction = errors.New("unknown action")
	ErrInvalidTarget = errors.New("invalid target")
)

// ActionRequest is a control command for an externally driven citizen.
type ActionRequest struct {
	Type    string `json:"type"`              // "move", "speak", or "work"
	Target  string `json:"target,omitempty"`  // location id for move
	Message string `json:"message,omitempty"` // text for speak
}

// ActionAck reports what an accepted action did: moves confirm the new
// target, work reports the citizen's money after payment.
type ActionAck struct {
	Status string `json:"status"`
	Target string `json:"target,omitempty"`
	Money  int    `json:"money,omitempty"`
}

// RegisterExternal creates an externally controlled citizen and returns
// its snapshot view plus the capability token. The token is shown once;
// it is never included in any snapshot.
func (s *Simulation) RegisterExternal(name, role string) (CitizenView, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CitizenView{}, "", fmt.Errorf("%w: empty name", ErrInvalidAction)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, token := s.Citizens.RegisterExternal(name, citizens.ParseRole(role), citizens.RandomPersonality(s.rand), s.rand)
	s.addNews(fmt.Sprintf("🚪 %s has moved to the city", c.Name), "social")
	s.log.Info("external citizen registered", "id", c.ID, "name", c.Name, "role", citizens.RoleName(c.Role))
	return s.citizenView(c), token, nil
}

// ApplyExternalAction authenticates and executes one action for an
// external citizen, returning the verb-specific acknowledgment.
// Imprisoned citizens are refused movement.
func (s *Simulation) ApplyExternalAction(citizenID, token string, req ActionRequest) (ActionAck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.Citizens.Get(citizenID)
	if c == nil {
		return ActionAck{}, ErrNotFound
	}
	if !s.Citizens.Authenticate(citizenID, token) {
		return ActionAck{}, ErrUnauthorized
	}

	switch req.Type {
	case "move":
		target := world.LocationID(req.Target)
		loc := world.Lookup(target)
		if loc == nil {
			return ActionAck{}, fmt.Errorf("%w: %q", ErrInvalidTarget, req.Target)
		}
		if s.Justice.IsImprisoned(c.ID) {
			return ActionAck{}, fmt.Errorf("%w: citizen is imprisoned", ErrInvalidAction)
		}
		c.SetTarget(target, s.rand)
		c.Action = "heading to " + loc.Name
		return ActionAck{Status: "moving", Target: req.Target}, nil

	case "speak":
		if strings.TrimSpace(req.Message) == "" {
			return ActionAck{}, fmt.Errorf("%w: empty message", ErrInvalidAction)
		}
		c.Say(req.Message, "", 10)
		return ActionAck{Status: "speaking"}, nil

	case "work":
		c.Money += 100
		c.Hunger = clampStat(c.Hunger + 5)
		c.Action = "working hard"
		return ActionAck{Status: "working", Money: c.Money}, nil

	default:
		return ActionAck{}, fmt.Errorf("%w: %q", ErrInvalidAction, req.Type)
	}
}
