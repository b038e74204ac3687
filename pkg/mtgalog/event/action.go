package event

import "time"

// GameAction is a discrete fact derived from one game-state snapshot.
// The set of implementations is closed: every variant embeds Meta.
type GameAction interface {
	ActionKind() Type
	ActionTime() time.Time
	gameAction()
}

// Meta carries the fields common to every GameAction.
type Meta struct {
	Kind      Type      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func (m Meta) ActionKind() Type      { return m.Kind }
func (m Meta) ActionTime() time.Time { return m.Timestamp }
func (Meta) gameAction()             {}

// NewMeta returns a Meta for the given kind.
func NewMeta(kind Type, ts time.Time) Meta {
	return Meta{Kind: kind, Timestamp: ts}
}

// ManaCost is one colored component of a spell's cost.
type ManaCost struct {
	Color []string `json:"color"`
	Count int      `json:"count"`
}

// CardRef identifies a game object and whatever card metadata was visible.
// Zero ids mean the field was not present.
type CardRef struct {
	InstanceID       int      `json:"instance_id"`
	GrpID            int      `json:"grp_id,omitempty"`
	OwnerSeatID      int      `json:"owner_seat_id,omitempty"`
	ControllerSeatID int      `json:"controller_seat_id,omitempty"`
	Name             int      `json:"name,omitempty"`
	CardTypes        []string `json:"card_types,omitempty"`
	Subtypes         []string `json:"subtypes,omitempty"`
	Color            []string `json:"color,omitempty"`
}

type MatchStartedAction struct {
	Meta
	MatchID        string `json:"match_id,omitempty"`
	LocalSeatID    int    `json:"local_seat_id"`
	OpponentSeatID int    `json:"opponent_seat_id,omitempty"`
}

type DeckStateAction struct {
	Meta
	LocalSeatID int       `json:"local_seat_id"`
	MainDeck    []CardRef `json:"main_deck"`
	Sideboard   []CardRef `json:"sideboard"`
}

type OpeningHandAction struct {
	Meta
	LocalSeatID int       `json:"local_seat_id"`
	Cards       []CardRef `json:"cards"`
}

// TurnStartedAction is emitted on a new turn and on phase/step changes
// within a turn. TurnNumber carries the last known turn in the latter case.
type TurnStartedAction struct {
	Meta
	TurnNumber   int    `json:"turn_number"`
	ActiveSeatID int    `json:"active_seat_id,omitempty"`
	Phase        string `json:"phase,omitempty"`
	Step         string `json:"step,omitempty"`
}

type ZoneTransferAction struct {
	Meta
	SeatID       int    `json:"seat_id,omitempty"`
	InstanceID   int    `json:"instance_id"`
	GrpID        int    `json:"grp_id,omitempty"`
	FromZoneID   int    `json:"from_zone_id,omitempty"`
	ToZoneID     int    `json:"to_zone_id,omitempty"`
	FromZoneType string `json:"from_zone_type,omitempty"`
	ToZoneType   string `json:"to_zone_type,omitempty"`
	Category     string `json:"category,omitempty"`
}

type PermanentTappedAction struct {
	Meta
	SeatID     int  `json:"seat_id,omitempty"`
	InstanceID int  `json:"instance_id"`
	GrpID      int  `json:"grp_id,omitempty"`
	IsTapped   bool `json:"is_tapped"`
}

type CardDrawnAction struct {
	Meta
	SeatID     int      `json:"seat_id,omitempty"`
	InstanceID int      `json:"instance_id"`
	GrpID      int      `json:"grp_id,omitempty"`
	Card       *CardRef `json:"card,omitempty"`
}

// PlayKind distinguishes a land play from a spell cast.
type PlayKind string

const (
	PlayKindCast PlayKind = "cast"
	PlayKindPlay PlayKind = "play"
)

type CardPlayedAction struct {
	Meta
	SeatID     int        `json:"seat_id,omitempty"`
	InstanceID int        `json:"instance_id"`
	GrpID      int        `json:"grp_id,omitempty"`
	ActionType PlayKind   `json:"action_type"`
	ManaCost   []ManaCost `json:"mana_cost,omitempty"`
	Card       *CardRef   `json:"card,omitempty"`
}

type CardAttackedAction struct {
	Meta
	SeatID           int      `json:"seat_id,omitempty"`
	InstanceID       int      `json:"instance_id"`
	GrpID            int      `json:"grp_id,omitempty"`
	TargetSeatID     int      `json:"target_seat_id,omitempty"`
	TargetInstanceID int      `json:"target_instance_id,omitempty"`
	Card             *CardRef `json:"card,omitempty"`
}

// CardBlockedAction is part of the closed set but block detection does not
// produce it yet.
type CardBlockedAction struct {
	Meta
	AttackerSeatID     int      `json:"attacker_seat_id,omitempty"`
	AttackerInstanceID int      `json:"attacker_instance_id"`
	AttackerGrpID      int      `json:"attacker_grp_id,omitempty"`
	BlockerSeatID      int      `json:"blocker_seat_id,omitempty"`
	BlockerInstanceID  int      `json:"blocker_instance_id"`
	BlockerGrpID       int      `json:"blocker_grp_id,omitempty"`
	AttackerCard       *CardRef `json:"attacker_card,omitempty"`
	BlockerCard        *CardRef `json:"blocker_card,omitempty"`
}

type GameEndedAction struct {
	Meta
	WinningTeamID int    `json:"winning_team_id,omitempty"`
	WinningSeatID int    `json:"winning_seat_id,omitempty"`
	LosingSeatID  int    `json:"losing_seat_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
	MatchState    string `json:"match_state,omitempty"`
}
