// Package gre tracks MTGA match state from GRE-to-client log lines and
// derives game actions by diffing consecutive snapshots.
package gre

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog/event"
)

// Config configures a Tracker.
type Config struct {
	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger

	// Now supplies the fallback timestamp. Defaults to time.Now.
	Now func() time.Time
}

type turnSnapshot struct {
	turnNumber   *int
	phase        string
	step         string
	activePlayer int
}

// Tracker holds per-match session state. It is not safe for concurrent use;
// lines must be fed in arrival order from a single goroutine.
type Tracker struct {
	logger *slog.Logger
	now    func() time.Time

	matchID      string
	localSeat    int
	opponentSeat int
	lastTurn     *turnSnapshot

	hasEmittedDeckState   bool
	hasEmittedOpeningHand bool

	lastHandSize      map[int]int
	lastHandCards     map[int]map[int]struct{}
	lastBattlefield   map[int]map[int]struct{}
	lastTapped        map[int]bool
	lastDeclareAttack bool
}

// New creates a Tracker.
func New(cfg Config) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	t := &Tracker{logger: logger, now: now}
	t.Reset()
	return t
}

// Reset clears all session state.
func (t *Tracker) Reset() {
	t.matchID = ""
	t.localSeat = 0
	t.opponentSeat = 0
	t.lastTurn = nil
	t.hasEmittedDeckState = false
	t.hasEmittedOpeningHand = false
	t.lastHandSize = make(map[int]int)
	t.lastHandCards = make(map[int]map[int]struct{})
	t.lastBattlefield = make(map[int]map[int]struct{})
	t.lastTapped = make(map[int]bool)
	t.lastDeclareAttack = false
}

// MatchID returns the transaction id of the current match, if known.
func (t *Tracker) MatchID() string { return t.matchID }

// Seats returns the local and opponent seat ids. Zero means unknown.
func (t *Tracker) Seats() (local, opponent int) {
	return t.localSeat, t.opponentSeat
}

// ProcessLine advances session state with one framed line and returns the
// actions it produced. Lines that are not GRE envelopes yield nil.
func (t *Tracker) ProcessLine(line event.RawLine) []event.GameAction {
	text := strings.TrimSpace(line.Message)
	if !strings.HasPrefix(text, "{") || !strings.Contains(text, "greToClientEvent") {
		return nil
	}

	var env Envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		t.logger.Debug("skipping malformed GRE envelope", "line", line.Index, "error", err)
		return nil
	}
	if env.GreToClientEvent == nil || len(env.GreToClientEvent.Messages) == 0 {
		return nil
	}

	ts, ok := env.Timestamp.Time()
	if !ok {
		ts = t.now()
	}

	var actions []event.GameAction
	for i := range env.GreToClientEvent.Messages {
		msg := &env.GreToClientEvent.Messages[i]
		switch msg.Type {
		case MessageConnectResp:
			if a := t.connect(&env, msg, ts); a != nil {
				actions = append(actions, a)
			}
		case MessageGameStateMessage, MessageQueuedGameStateMessage:
			if msg.GameStateMessage != nil {
				actions = append(actions, t.gameState(msg.GameStateMessage, ts)...)
			}
		}
	}
	return actions
}

func (t *Tracker) connect(env *Envelope, msg *Message, ts time.Time) event.GameAction {
	t.Reset()
	t.matchID = env.TransactionID
	if len(msg.SystemSeatIDs) > 0 {
		t.localSeat = msg.SystemSeatIDs[0]
	}
	t.logger.Debug("match connected", "match_id", t.matchID, "local_seat", t.localSeat)

	if t.localSeat == 0 {
		return nil
	}
	return &event.MatchStartedAction{
		Meta:        event.NewMeta(event.MatchStarted, ts),
		MatchID:     t.matchID,
		LocalSeatID: t.localSeat,
	}
}

// snapshot indexes one GameStateMessage. It never outlives the message.
type snapshot struct {
	state   *GameStateMessage
	objects map[int]*GameObject
	zones   map[int]*Zone
}

func newSnapshot(state *GameStateMessage) *snapshot {
	s := &snapshot{
		state:   state,
		objects: make(map[int]*GameObject, len(state.GameObjects)),
		zones:   make(map[int]*Zone, len(state.Zones)),
	}
	for i := range state.GameObjects {
		obj := &state.GameObjects[i]
		s.objects[obj.InstanceID] = obj
	}
	for i := range state.Zones {
		z := &state.Zones[i]
		s.zones[z.ZoneID] = z
	}
	return s
}

// zoneType resolves a zone id to its type within the snapshot.
func (s *snapshot) zoneType(id int, ok bool) ZoneType {
	if !ok {
		return ZoneUnknown
	}
	if z, found := s.zones[id]; found {
		return z.Type
	}
	return ZoneUnknown
}

func (t *Tracker) gameState(state *GameStateMessage, ts time.Time) []event.GameAction {
	var actions []event.GameAction

	if t.localSeat == 0 && state.Zones != nil {
		t.discoverSeats(state.Zones)
	}

	if a := t.turn(state, ts); a != nil {
		actions = append(actions, a)
	}

	snap := newSnapshot(state)

	if state.Zones != nil && state.GameObjects != nil && t.localSeat != 0 {
		if !t.hasEmittedDeckState {
			if a := t.deckState(snap, ts); a != nil {
				actions = append(actions, a)
				t.hasEmittedDeckState = true
			}
		}
		if !t.hasEmittedOpeningHand {
			if a := t.openingHand(snap, ts); a != nil {
				actions = append(actions, a)
				t.hasEmittedOpeningHand = true
				hand := make(map[int]struct{}, len(a.Cards))
				for _, c := range a.Cards {
					hand[c.InstanceID] = struct{}{}
				}
				t.lastHandCards[t.localSeat] = hand
				t.lastHandSize[t.localSeat] = len(hand)
			}
		}
	}

	actions = append(actions, t.annotations(snap, ts)...)
	actions = append(actions, t.draws(snap, ts)...)
	actions = append(actions, t.plays(snap, ts)...)
	actions = append(actions, t.attacks(snap, ts)...)
	actions = append(actions, t.blocks(snap, ts)...)

	if a := t.gameEnd(state, ts); a != nil {
		actions = append(actions, a)
	}
	return actions
}

func (t *Tracker) discoverSeats(zones []Zone) {
	for i := range zones {
		z := &zones[i]
		if z.Type != ZoneHand || z.Visibility != VisibilityPrivate || z.OwnerSeatID == 0 {
			continue
		}
		if len(z.Viewers) == 0 || slices.Contains(z.Viewers, z.OwnerSeatID) {
			t.localSeat = z.OwnerSeatID
			break
		}
	}
	if t.localSeat == 0 {
		return
	}

	for i := range zones {
		if owner := zones[i].OwnerSeatID; owner != 0 && owner != t.localSeat {
			t.opponentSeat = owner
			break
		}
	}
	t.logger.Debug("seats discovered", "local_seat", t.localSeat, "opponent_seat", t.opponentSeat)
}

func (t *Tracker) turn(state *GameStateMessage, ts time.Time) event.GameAction {
	info := state.TurnInfo
	if info == nil {
		return nil
	}

	last := t.lastTurn
	prev := turnSnapshot{}
	if last != nil {
		prev = *last
	}

	isNewTurn := info.TurnNumber != nil &&
		(prev.turnNumber == nil || *info.TurnNumber != *prev.turnNumber)
	isPhaseChange := !isNewTurn &&
		(info.Phase != prev.phase || info.Step != prev.step || info.ActivePlayer != prev.activePlayer)

	t.lastTurn = &turnSnapshot{
		turnNumber:   info.TurnNumber,
		phase:        info.Phase,
		step:         info.Step,
		activePlayer: info.ActivePlayer,
	}

	if !isNewTurn && !isPhaseChange {
		return nil
	}

	number := 0
	switch {
	case info.TurnNumber != nil:
		number = *info.TurnNumber
	case prev.turnNumber != nil:
		number = *prev.turnNumber
	}

	return &event.TurnStartedAction{
		Meta:         event.NewMeta(event.TurnStarted, ts),
		TurnNumber:   number,
		ActiveSeatID: info.ActivePlayer,
		Phase:        info.Phase,
		Step:         info.Step,
	}
}

func (t *Tracker) deckState(snap *snapshot, ts time.Time) *event.DeckStateAction {
	var main, side []event.CardRef
	for i := range snap.state.Zones {
		z := &snap.state.Zones[i]
		if z.OwnerSeatID != t.localSeat || len(z.ObjectInstanceIDs) == 0 {
			continue
		}
		switch z.Type {
		case ZoneLibrary, ZoneMainDeck:
			main = append(main, snap.cardRefs(z.ObjectInstanceIDs)...)
		case ZoneSideboard:
			side = append(side, snap.cardRefs(z.ObjectInstanceIDs)...)
		}
	}
	if len(main) == 0 && len(side) == 0 {
		return nil
	}
	if main == nil {
		main = []event.CardRef{}
	}
	if side == nil {
		side = []event.CardRef{}
	}
	return &event.DeckStateAction{
		Meta:        event.NewMeta(event.DeckState, ts),
		LocalSeatID: t.localSeat,
		MainDeck:    main,
		Sideboard:   side,
	}
}

func (t *Tracker) openingHand(snap *snapshot, ts time.Time) *event.OpeningHandAction {
	for i := range snap.state.Zones {
		z := &snap.state.Zones[i]
		if z.OwnerSeatID != t.localSeat || z.Type != ZoneHand || z.Visibility != VisibilityPrivate {
			continue
		}
		cards := snap.cardRefs(z.ObjectInstanceIDs)
		if len(cards) == 0 {
			return nil
		}
		return &event.OpeningHandAction{
			Meta:        event.NewMeta(event.OpeningHand, ts),
			LocalSeatID: t.localSeat,
			Cards:       cards,
		}
	}
	return nil
}

// cardRefs resolves instance ids, skipping ids with no object.
func (s *snapshot) cardRefs(ids []int) []event.CardRef {
	var refs []event.CardRef
	for _, id := range ids {
		if obj, ok := s.objects[id]; ok {
			refs = append(refs, cardRef(obj))
		}
	}
	return refs
}

func cardRef(obj *GameObject) event.CardRef {
	return event.CardRef{
		InstanceID:       obj.InstanceID,
		GrpID:            obj.GrpID,
		OwnerSeatID:      obj.OwnerSeatID,
		ControllerSeatID: obj.ControllerSeatID,
		Name:             obj.Name,
		CardTypes:        obj.CardTypes,
		Subtypes:         obj.Subtypes,
		Color:            obj.Color,
	}
}

func cardRefPtr(obj *GameObject) *event.CardRef {
	ref := cardRef(obj)
	return &ref
}

func (t *Tracker) annotations(snap *snapshot, ts time.Time) []event.GameAction {
	var actions []event.GameAction
	for i := range snap.state.Annotations {
		ann := &snap.state.Annotations[i]
		if ann.Has(AnnotationZoneTransfer) {
			if a := zoneTransfer(snap, ann, ts); a != nil {
				actions = append(actions, a)
			}
		}
		if ann.Has(AnnotationTappedUntappedPermanent) {
			if a := t.tapped(snap, ann, ts); a != nil {
				actions = append(actions, a)
			}
		}
	}
	return actions
}

func zoneTransfer(snap *snapshot, ann *Annotation, ts time.Time) event.GameAction {
	id, ok := ann.FirstAffected()
	if !ok {
		return nil
	}
	details := ann.DetailMap()
	src, srcOK := details.Int("zone_src")
	dst, dstOK := details.Int("zone_dest")
	category, _ := details.String("categoryString")

	a := &event.ZoneTransferAction{
		Meta:         event.NewMeta(event.ZoneTransfer, ts),
		InstanceID:   id,
		FromZoneID:   src,
		ToZoneID:     dst,
		FromZoneType: snap.zoneType(src, srcOK).String(),
		ToZoneType:   snap.zoneType(dst, dstOK).String(),
		Category:     category,
	}
	if obj, ok := snap.objects[id]; ok {
		a.SeatID = obj.Seat()
		a.GrpID = obj.GrpID
	}
	return a
}

func (t *Tracker) tapped(snap *snapshot, ann *Annotation, ts time.Time) event.GameAction {
	id, ok := ann.FirstAffected()
	if !ok {
		return nil
	}
	flag, ok := ann.DetailMap().Int("tapped")
	if !ok {
		return nil
	}

	isTapped := flag == 1
	t.lastTapped[id] = isTapped

	a := &event.PermanentTappedAction{
		Meta:       event.NewMeta(event.PermanentTapped, ts),
		InstanceID: id,
		IsTapped:   isTapped,
	}
	if obj, ok := snap.objects[id]; ok {
		a.SeatID = obj.Seat()
		a.GrpID = obj.GrpID
	}
	return a
}

func (t *Tracker) draws(snap *snapshot, ts time.Time) []event.GameAction {
	var actions []event.GameAction
	for i := range snap.state.Zones {
		z := &snap.state.Zones[i]
		if z.Type != ZoneHand || z.OwnerSeatID <= 0 || z.ObjectInstanceIDs == nil {
			continue
		}

		last := t.lastHandCards[z.OwnerSeatID]
		current := make(map[int]struct{}, len(z.ObjectInstanceIDs))
		for _, id := range z.ObjectInstanceIDs {
			if _, seen := current[id]; seen {
				continue
			}
			current[id] = struct{}{}
			if _, had := last[id]; had {
				continue
			}
			obj, ok := snap.objects[id]
			if !ok {
				continue
			}
			actions = append(actions, &event.CardDrawnAction{
				Meta:       event.NewMeta(event.CardDrawn, ts),
				SeatID:     z.OwnerSeatID,
				InstanceID: obj.InstanceID,
				GrpID:      obj.GrpID,
				Card:       cardRefPtr(obj),
			})
		}

		t.lastHandCards[z.OwnerSeatID] = current
		t.lastHandSize[z.OwnerSeatID] = len(current)
	}
	return actions
}

func (t *Tracker) plays(snap *snapshot, ts time.Time) []event.GameAction {
	var actions []event.GameAction
	for i := range snap.state.Annotations {
		ann := &snap.state.Annotations[i]
		if !ann.Has(AnnotationZoneTransfer) {
			continue
		}
		id, ok := ann.FirstAffected()
		if !ok {
			continue
		}
		obj, ok := snap.objects[id]
		if !ok {
			continue
		}

		details := ann.DetailMap()
		src, srcOK := details.Int("zone_src")
		dst, dstOK := details.Int("zone_dest")
		from := snap.zoneType(src, srcOK)
		to := snap.zoneType(dst, dstOK)
		if from != ZoneHand || (to != ZoneBattlefield && to != ZoneStack) {
			continue
		}

		category, _ := details.String("categoryString")
		isCast := category == CategoryCastSpell || to == ZoneStack
		isPlay := category == CategoryPlayLand || to == ZoneBattlefield

		info := actionInfo(snap.state, obj)
		kind := info.kind
		switch {
		case info.forcedPlay:
			kind = event.PlayKindPlay
		case isCast:
			kind = event.PlayKindCast
		case isPlay:
			kind = event.PlayKindPlay
		}

		actions = append(actions, &event.CardPlayedAction{
			Meta:       event.NewMeta(event.CardPlayed, ts),
			SeatID:     obj.Seat(),
			InstanceID: obj.InstanceID,
			GrpID:      obj.GrpID,
			ActionType: kind,
			ManaCost:   info.manaCost,
			Card:       cardRefPtr(obj),
		})
	}
	return actions
}

type playInfo struct {
	kind       event.PlayKind
	forcedPlay bool
	manaCost   []event.ManaCost
}

// actionInfo recovers play details from the snapshot's available actions,
// falling back to the land card type.
func actionInfo(state *GameStateMessage, obj *GameObject) playInfo {
	for _, entry := range state.Actions {
		a := entry.Action
		if a == nil || a.InstanceID != obj.InstanceID {
			continue
		}
		if a.ActionType == ActionTypePlay {
			return playInfo{kind: event.PlayKindPlay, forcedPlay: true}
		}
		if a.ActionType == ActionTypeCast && a.ManaCost != nil {
			cost := make([]event.ManaCost, 0, len(a.ManaCost))
			for _, mc := range a.ManaCost {
				color := mc.Color
				if color == nil {
					color = []string{}
				}
				cost = append(cost, event.ManaCost{Color: color, Count: mc.Count})
			}
			return playInfo{kind: event.PlayKindCast, manaCost: cost}
		}
	}
	if obj.IsLand() {
		return playInfo{kind: event.PlayKindPlay}
	}
	return playInfo{kind: event.PlayKindCast}
}

func (t *Tracker) attacks(snap *snapshot, ts time.Time) []event.GameAction {
	state := snap.state
	inDeclareAttack := state.TurnInfo != nil && state.TurnInfo.Step == StepDeclareAttack

	var actions []event.GameAction
	switch {
	case inDeclareAttack && !t.lastDeclareAttack:
		for i := range state.GameObjects {
			obj := &state.GameObjects[i]
			if obj.InstanceID == 0 || snap.zoneType(obj.ZoneID, true) != ZoneBattlefield {
				continue
			}
			if !t.lastTapped[obj.InstanceID] && obj.IsTapped {
				actions = append(actions, &event.CardAttackedAction{
					Meta:       event.NewMeta(event.CardAttacked, ts),
					SeatID:     obj.Seat(),
					InstanceID: obj.InstanceID,
					GrpID:      obj.GrpID,
					Card:       cardRefPtr(obj),
				})
			}
			t.lastTapped[obj.InstanceID] = obj.IsTapped
		}
	case inDeclareAttack:
		for i := range state.GameObjects {
			obj := &state.GameObjects[i]
			if obj.InstanceID != 0 {
				t.lastTapped[obj.InstanceID] = obj.IsTapped
			}
		}
	}

	for i := range state.Zones {
		z := &state.Zones[i]
		if z.Type != ZoneBattlefield || z.ObjectInstanceIDs == nil || z.OwnerSeatID == 0 {
			continue
		}
		cards := make(map[int]struct{}, len(z.ObjectInstanceIDs))
		for _, id := range z.ObjectInstanceIDs {
			cards[id] = struct{}{}
		}
		t.lastBattlefield[z.OwnerSeatID] = cards
	}

	t.lastDeclareAttack = inDeclareAttack
	return actions
}

// blocks recognizes the declare-blockers step. Blockers are not yet
// identifiable from snapshots, so it never emits.
func (t *Tracker) blocks(snap *snapshot, _ time.Time) []event.GameAction {
	if snap.state.TurnInfo == nil || snap.state.TurnInfo.Step != StepDeclareBlock {
		return nil
	}
	// TODO: emit CardBlockedAction once blocker assignments are decoded.
	return nil
}

func (t *Tracker) gameEnd(state *GameStateMessage, ts time.Time) event.GameAction {
	info := state.GameInfo
	if info == nil {
		return nil
	}
	if info.Stage != StageGameOver &&
		info.MatchState != MatchStateGameComplete &&
		info.MatchState != MatchStateMatchComplete {
		return nil
	}

	a := &event.GameEndedAction{
		Meta:       event.NewMeta(event.GameEnded, ts),
		MatchState: info.MatchState,
	}
	if r := findResult(info.Results, ScopeMatch); r != nil {
		a.WinningTeamID, a.Reason = r.WinningTeamID, r.Reason
	} else if r := findResult(info.Results, ScopeGame); r != nil {
		a.WinningTeamID, a.Reason = r.WinningTeamID, r.Reason
	}

	if a.WinningTeamID != 0 {
		for _, p := range state.Players {
			switch {
			case p.TeamID == a.WinningTeamID:
				a.WinningSeatID = p.SystemSeatNumber
			case p.Status == PlayerStatusPendingLoss || p.Status == PlayerStatusLost:
				a.LosingSeatID = p.SystemSeatNumber
			}
		}
	}
	t.logger.Debug("game ended", "match_id", t.matchID, "winning_team", a.WinningTeamID, "reason", a.Reason)
	return a
}

func findResult(results []Result, scope string) *Result {
	for i := range results {
		if results[i].Scope == scope {
			return &results[i]
		}
	}
	return nil
}
