package gre

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Envelope is the outer object of a GRE-to-client log line.
type Envelope struct {
	TransactionID    string            `json:"transactionId"`
	RequestID        int               `json:"requestId"`
	Timestamp        Timestamp         `json:"timestamp"`
	GreToClientEvent *GreToClientEvent `json:"greToClientEvent"`
}

type GreToClientEvent struct {
	Messages Lenient[Message] `json:"greToClientMessages"`
}

// Message is one GRE message inside an envelope.
type Message struct {
	Type             MessageType       `json:"type"`
	SystemSeatIDs    []int             `json:"systemSeatIds"`
	MsgID            int               `json:"msgId"`
	GameStateID      int               `json:"gameStateId"`
	GameStateMessage *GameStateMessage `json:"gameStateMessage"`
}

// GameStateMessage is a full or diff snapshot of the game.
type GameStateMessage struct {
	Type        string        `json:"type"`
	GameStateID int           `json:"gameStateId"`
	TurnInfo    *TurnInfo     `json:"turnInfo"`
	Zones       Lenient[Zone]        `json:"zones"`
	GameObjects Lenient[GameObject]  `json:"gameObjects"`
	Annotations Lenient[Annotation]  `json:"annotations"`
	Actions     Lenient[ActionEntry] `json:"actions"`
	GameInfo    *GameInfo            `json:"gameInfo"`
	Players     Lenient[Player]      `json:"players"`
}

type TurnInfo struct {
	Phase          string `json:"phase"`
	Step           string `json:"step"`
	TurnNumber     *int   `json:"turnNumber"`
	ActivePlayer   int    `json:"activePlayer"`
	PriorityPlayer int    `json:"priorityPlayer"`
	DecisionPlayer int    `json:"decisionPlayer"`
}

// Zone is a container of game objects. Zones are replaced wholesale by
// every snapshot that carries them.
type Zone struct {
	ZoneID      int        `json:"zoneId"`
	Type        ZoneType   `json:"type"`
	Visibility  Visibility `json:"visibility"`
	OwnerSeatID int        `json:"ownerSeatId"`
	// ObjectInstanceIDs is nil when the field is absent and empty when the
	// zone is known to be empty.
	ObjectInstanceIDs []int `json:"objectInstanceIds"`
	Viewers           []int `json:"viewers"`
}

// GameObject is a card or token. Hidden objects omit identity fields.
type GameObject struct {
	InstanceID       int        `json:"instanceId"`
	GrpID            int        `json:"grpId"`
	Type             string     `json:"type"`
	ZoneID           int        `json:"zoneId"`
	Visibility       Visibility `json:"visibility"`
	OwnerSeatID      int        `json:"ownerSeatId"`
	ControllerSeatID int        `json:"controllerSeatId"`
	CardTypes        []string   `json:"cardTypes"`
	Subtypes         []string   `json:"subtypes"`
	SuperTypes       []string   `json:"superTypes"`
	Color            []string   `json:"color"`
	IsTapped         bool       `json:"isTapped"`
	Name             int        `json:"name"`
}

// Seat returns the controller seat, falling back to the owner.
func (o *GameObject) Seat() int {
	if o.ControllerSeatID != 0 {
		return o.ControllerSeatID
	}
	return o.OwnerSeatID
}

// IsLand reports whether the object carries the land card type.
func (o *GameObject) IsLand() bool {
	for _, t := range o.CardTypes {
		if t == CardTypeLand {
			return true
		}
	}
	return false
}

// Annotation describes a transition since the previous snapshot.
type Annotation struct {
	ID          int                `json:"id"`
	AffectorID  int                `json:"affectorId"`
	AffectedIDs []int              `json:"affectedIds"`
	Types       []AnnotationType   `json:"type"`
	Details     []AnnotationDetail `json:"details"`
}

// Has reports whether the annotation carries the given type.
func (a *Annotation) Has(t AnnotationType) bool {
	for _, at := range a.Types {
		if at == t {
			return true
		}
	}
	return false
}

// FirstAffected returns the first affected instance id.
func (a *Annotation) FirstAffected() (int, bool) {
	if len(a.AffectedIDs) == 0 {
		return 0, false
	}
	return a.AffectedIDs[0], true
}

type AnnotationDetail struct {
	Key         string   `json:"key"`
	Type        string   `json:"type"`
	ValueInt32  []int    `json:"valueInt32"`
	ValueString []string `json:"valueString"`
}

// detailValue is a typed annotation detail value.
type detailValue struct {
	i     int
	s     string
	isInt bool
}

// Details is the key-value view of an annotation's details.
type Details map[string]detailValue

// DetailMap flattens details by key, keeping the first value of each.
// A string-typed "category" detail is stored under "categoryString".
func (a *Annotation) DetailMap() Details {
	m := make(Details, len(a.Details))
	for _, d := range a.Details {
		if d.Key == "" {
			continue
		}
		switch {
		case len(d.ValueInt32) > 0:
			m[d.Key] = detailValue{i: d.ValueInt32[0], isInt: true}
		case len(d.ValueString) > 0:
			key := d.Key
			if key == "category" {
				key = "categoryString"
			}
			m[key] = detailValue{s: d.ValueString[0]}
		}
	}
	return m
}

// Int returns an integer detail.
func (d Details) Int(key string) (int, bool) {
	v, ok := d[key]
	if !ok || !v.isInt {
		return 0, false
	}
	return v.i, true
}

// String returns a string detail.
func (d Details) String(key string) (string, bool) {
	v, ok := d[key]
	if !ok || v.isInt {
		return "", false
	}
	return v.s, true
}

type ActionEntry struct {
	SeatID int     `json:"seatId"`
	Action *Action `json:"action"`
}

type Action struct {
	ActionType string         `json:"actionType"`
	InstanceID int            `json:"instanceId"`
	ManaCost   []ManaCostPart `json:"manaCost"`
}

type ManaCostPart struct {
	Color []string `json:"color"`
	Count int      `json:"count"`
}

type GameInfo struct {
	Stage      string   `json:"stage"`
	MatchState string   `json:"matchState"`
	Results    Lenient[Result] `json:"results"`
}

type Result struct {
	Scope         string `json:"scope"`
	Result        string `json:"result"`
	WinningTeamID int    `json:"winningTeamId"`
	Reason        string `json:"reason"`
}

type Player struct {
	SystemSeatNumber int    `json:"systemSeatNumber"`
	Status           string `json:"status"`
	TeamID           int    `json:"teamId"`
	LifeTotal        int    `json:"lifeTotal"`
}

// Protocol string tags that are compared but not enumerated.
const (
	StepDeclareAttack = "Step_DeclareAttack"
	StepDeclareBlock  = "Step_DeclareBlock"

	ActionTypePlay = "ActionType_Play"
	ActionTypeCast = "ActionType_Cast"

	CardTypeLand = "CardType_Land"

	CategoryPlayLand  = "PlayLand"
	CategoryCastSpell = "CastSpell"

	StageGameOver           = "GameStage_GameOver"
	MatchStateGameComplete  = "MatchState_GameComplete"
	MatchStateMatchComplete = "MatchState_MatchComplete"

	ScopeMatch = "MatchScope_Match"
	ScopeGame  = "MatchScope_Game"

	PlayerStatusPendingLoss = "PlayerStatus_PendingLoss"
	PlayerStatusLost        = "PlayerStatus_Lost"
)

// Lenient decodes a JSON array element by element and drops the elements
// that fail to decode. A value that is not an array decodes as empty, and
// null stays nil.
type Lenient[T any] []T

func (l *Lenient[T]) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		*l = Lenient[T]{}
		return nil
	}
	if raws == nil {
		*l = nil
		return nil
	}
	out := make(Lenient[T], 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			out = append(out, v)
		}
	}
	*l = out
	return nil
}

// .NET ticks are 100ns units since 0001-01-01.
const (
	ticksPerMilli     = 10000
	ticksEpochMillis  = 62135596800000 // 0001-01-01 to 1970-01-01
	minTicksTimestamp = 1e16
	maxTimestampYear  = 9999
)

// Timestamp is the envelope timestamp. The client writes .NET ticks as a
// string; epoch milliseconds, numbers and date strings are accepted too.
type Timestamp struct {
	raw string
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		t.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		t.raw = n.String()
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

// Time resolves the timestamp, returning false when it is absent or unparseable.
func (t Timestamp) Time() (time.Time, bool) {
	raw := strings.TrimSpace(t.raw)
	if raw == "" {
		return time.Time{}, false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return fromNumber(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		if math.Abs(f) >= math.MaxInt64 {
			return time.Time{}, false
		}
		return fromNumber(int64(f))
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return inRange(ts)
		}
	}
	return time.Time{}, false
}

// fromNumber reads n as .NET ticks when it is too large to be epoch
// milliseconds of a plausible date.
func fromNumber(n int64) (time.Time, bool) {
	ms := n
	if n >= minTicksTimestamp {
		ms = n/ticksPerMilli - ticksEpochMillis
	}
	return inRange(time.UnixMilli(ms))
}

// inRange rejects times that cannot be encoded as RFC 3339.
func inRange(ts time.Time) (time.Time, bool) {
	if y := ts.UTC().Year(); y < 0 || y > maxTimestampYear {
		return time.Time{}, false
	}
	return ts, true
}
