// Package wire defines the kind-tagged client<->server message set of
// SPEC_FULL.md §6.1, carried as JSON payloads inside an Envelope over
// the Framed Transport (internal/transport).
//
// Grounded on internal/protocol/message.go's length-prefixed
// MessageID-tagged frame shape, generalized from a fixed single-byte
// BitTorrent message ID to a string Kind and a JSON payload body, per
// SPEC_FULL.md §6.2's note that RoomConfiguration (and, by the same
// convention, every other payload) round-trips through encoding/json
// rather than a schema/IDL codegen step.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/prxssh/thicketd/internal/carddb"
	"github.com/prxssh/thicketd/internal/draftconfig"
	"github.com/prxssh/thicketd/internal/inventory"
)

// Kind tags an Envelope's payload with the concrete message type it
// carries, so a receiver can dispatch before unmarshaling the body.
type Kind string

const (
	KindLoginReq                 Kind = "LoginReq"
	KindJoinRoomReq               Kind = "JoinRoomReq"
	KindCreateRoomReq             Kind = "CreateRoomReq"
	KindLeaveRoomInd              Kind = "LeaveRoomInd"
	KindReadyInd                  Kind = "ReadyInd"
	KindPlayerCardSelectionReq    Kind = "PlayerCardSelectionReq"
	KindGridPickReq                Kind = "GridPickReq"
	KindPlayerInventoryUpdateInd  Kind = "PlayerInventoryUpdateInd"
	KindChatIndUp                 Kind = "ChatInd"

	KindLoginRsp                   Kind = "LoginRsp"
	KindAnnouncementsInd           Kind = "AnnouncementsInd"
	KindRoomListInd                Kind = "RoomListInd"
	KindRoomAddedInd               Kind = "RoomAddedInd"
	KindRoomRemovedInd             Kind = "RoomRemovedInd"
	KindRoomPlayerCountInd         Kind = "RoomPlayerCountInd"
	KindCreateRoomRsp              Kind = "CreateRoomRsp"
	KindJoinRoomRsp                Kind = "JoinRoomRsp"
	KindRoomStageInd               Kind = "RoomStageInd"
	KindPlayerCurrentPackInd       Kind = "PlayerCurrentPackInd"
	KindPlayerCardSelectionRsp     Kind = "PlayerCardSelectionRsp"
	KindPlayerAutoCardSelectionInd Kind = "PlayerAutoCardSelectionInd"
	KindGridBoardInd               Kind = "GridBoardInd"
	KindGridPickRsp                Kind = "GridPickRsp"
	KindPlayerInventoryInd         Kind = "PlayerInventoryInd"
	KindChatIndDown                Kind = "ChatInd"
)

// Envelope is the one shape that actually crosses the wire: a Kind tag
// plus the raw JSON body of the concrete message it names. The Framed
// Transport carries Envelope's own JSON encoding as the frame payload.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// ---- Client -> Server payloads ----

type LoginReq struct {
	Name            string `json:"name"`
	ProtocolVersion int    `json:"protocol_version"`
}

type JoinRoomReq struct {
	RoomID   string `json:"room_id"`
	Password string `json:"password,omitempty"`
}

type CreateRoomReq struct {
	RoomConfig draftconfig.RoomConfig `json:"room_config"`
}

type LeaveRoomInd struct{}

type ReadyInd struct {
	Ready bool `json:"ready"`
}

type PlayerCardSelectionReq struct {
	PackID     uint64            `json:"pack_id"`
	Card       carddb.Card       `json:"card"`
	TargetZone inventory.ZoneType `json:"target_zone"`
}

// GridPickReq is a chair's choice of grid line during a Grid round, by
// slice index 0..5 (rows 0-2, columns 3-5).
type GridPickReq struct {
	Slice int `json:"slice"`
}

// InventoryMove and BasicLandAdjustment are the two kinds of entries a
// client may batch into a PlayerInventoryUpdateInd.
type InventoryMove struct {
	Card     carddb.Card       `json:"card"`
	ZoneFrom inventory.ZoneType `json:"zone_from"`
	ZoneTo   inventory.ZoneType `json:"zone_to"`
}

type BasicLandAdjustment struct {
	Basic inventory.BasicLand `json:"basic"`
	Zone  inventory.ZoneType  `json:"zone"`
	Delta int                 `json:"delta"`
}

type PlayerInventoryUpdateInd struct {
	Moves                 []InventoryMove       `json:"moves"`
	BasicLandAdjustments  []BasicLandAdjustment `json:"basic_land_adjustments"`
}

type ChatIndUp struct {
	Text string `json:"text"`
}

// ---- Server -> Client payloads ----

type LoginRsp struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

type AnnouncementsInd struct {
	Text string `json:"text"`
}

// RoomSummary is one entry of a RoomListInd/RoomAddedInd.
type RoomSummary struct {
	RoomID      string `json:"room_id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
	HasPassword bool   `json:"has_password"`
}

type RoomListInd struct {
	Rooms []RoomSummary `json:"rooms"`
}

type RoomAddedInd struct {
	Room RoomSummary `json:"room"`
}

type RoomRemovedInd struct {
	RoomID string `json:"room_id"`
}

type RoomPlayerCountInd struct {
	RoomID      string `json:"room_id"`
	PlayerCount int    `json:"player_count"`
}

type CreateRoomRsp struct {
	OK            bool                    `json:"ok"`
	RoomID        string                  `json:"room_id,omitempty"`
	FailureReason draftconfig.FailureCode `json:"failure_reason,omitempty"`
}

type JoinRoomRsp struct {
	OK            bool   `json:"ok"`
	FailureReason string `json:"failure_reason,omitempty"`
}

type RoomStageInd struct {
	Round    int  `json:"round"`
	Complete bool `json:"complete"`
}

type PlayerCurrentPackInd struct {
	PackID uint64        `json:"pack_id"`
	Cards  []carddb.Card `json:"cards"`
}

type PlayerCardSelectionRsp struct {
	OK     bool        `json:"ok"`
	PackID uint64      `json:"pack_id"`
	Card   carddb.Card `json:"card"`
}

// AutoSelectionType mirrors draft.AutoReason's two interactive-auto
// variants (NotAuto never reaches the wire: it isn't an auto-selection
// notification at all).
type AutoSelectionType string

const (
	AutoLastCard  AutoSelectionType = "AutoLastCard"
	AutoTimedOut  AutoSelectionType = "AutoTimedOut"
)

type PlayerAutoCardSelectionInd struct {
	Type   AutoSelectionType `json:"type"`
	PackID uint64            `json:"pack_id"`
	Card   carddb.Card       `json:"card"`
}

// GridBoardInd is the grid round's shared public state: the nine dealt
// cards, which positions are taken, which of the six lines have been
// picked, and whose turn it is. Broadcast to both grid-round chairs
// whenever any of that changes.
type GridBoardInd struct {
	Cards       []carddb.Card `json:"cards"`
	Taken       [9]bool       `json:"taken"`
	UsedSlices  [6]bool       `json:"used_slices"`
	ActiveChair int           `json:"active_chair"`
}

// GridPickRsp is the requesting chair's accept/reject response to its
// own GridPickReq, mirroring PlayerCardSelectionRsp's shape.
type GridPickRsp struct {
	OK     bool   `json:"ok"`
	Slice  int    `json:"slice"`
	Reason string `json:"reason,omitempty"`
}

// DraftedCards is one zone's worth of cards, and BasicLandQuantity one
// zone's count of one basic land, in a full-resync PlayerInventoryInd.
type DraftedCards struct {
	Zone  inventory.ZoneType `json:"zone"`
	Cards []carddb.Card      `json:"cards"`
}

type BasicLandQuantity struct {
	Zone  inventory.ZoneType  `json:"zone"`
	Basic inventory.BasicLand `json:"basic"`
	Count int                 `json:"count"`
}

type PlayerInventoryInd struct {
	DraftedCards      []DraftedCards      `json:"drafted_cards"`
	BasicLandQuantities []BasicLandQuantity `json:"basic_land_qtys"`
}

type ChatIndDown struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// EncodeEnvelopeJSON marshals env itself (kind tag plus raw payload)
// into the bytes a Framed Transport frame carries as its body.
func EncodeEnvelopeJSON(env *Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// DecodeEnvelopeJSON is EncodeEnvelopeJSON's inverse: it unmarshals one
// Framed Transport frame body into an Envelope, without yet decoding the
// Envelope's own Payload into a concrete message (see Decode).
func DecodeEnvelopeJSON(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("wire: decoding envelope: %w", err)
	}
	return &env, nil
}

// Encode wraps msg in an Envelope tagged with its Kind, ready to be
// JSON-marshaled as a Framed Transport payload. It accepts any of the
// payload types declared above.
func Encode(msg any) (*Envelope, error) {
	kind, err := kindOf(msg)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("wire: encoding %s: %w", kind, err)
	}

	return &Envelope{Kind: kind, Payload: body}, nil
}

func kindOf(msg any) (Kind, error) {
	switch msg.(type) {
	case LoginReq, *LoginReq:
		return KindLoginReq, nil
	case JoinRoomReq, *JoinRoomReq:
		return KindJoinRoomReq, nil
	case CreateRoomReq, *CreateRoomReq:
		return KindCreateRoomReq, nil
	case LeaveRoomInd, *LeaveRoomInd:
		return KindLeaveRoomInd, nil
	case ReadyInd, *ReadyInd:
		return KindReadyInd, nil
	case PlayerCardSelectionReq, *PlayerCardSelectionReq:
		return KindPlayerCardSelectionReq, nil
	case GridPickReq, *GridPickReq:
		return KindGridPickReq, nil
	case PlayerInventoryUpdateInd, *PlayerInventoryUpdateInd:
		return KindPlayerInventoryUpdateInd, nil
	case ChatIndUp, *ChatIndUp:
		return KindChatIndUp, nil
	case LoginRsp, *LoginRsp:
		return KindLoginRsp, nil
	case AnnouncementsInd, *AnnouncementsInd:
		return KindAnnouncementsInd, nil
	case RoomListInd, *RoomListInd:
		return KindRoomListInd, nil
	case RoomAddedInd, *RoomAddedInd:
		return KindRoomAddedInd, nil
	case RoomRemovedInd, *RoomRemovedInd:
		return KindRoomRemovedInd, nil
	case RoomPlayerCountInd, *RoomPlayerCountInd:
		return KindRoomPlayerCountInd, nil
	case CreateRoomRsp, *CreateRoomRsp:
		return KindCreateRoomRsp, nil
	case JoinRoomRsp, *JoinRoomRsp:
		return KindJoinRoomRsp, nil
	case RoomStageInd, *RoomStageInd:
		return KindRoomStageInd, nil
	case PlayerCurrentPackInd, *PlayerCurrentPackInd:
		return KindPlayerCurrentPackInd, nil
	case PlayerCardSelectionRsp, *PlayerCardSelectionRsp:
		return KindPlayerCardSelectionRsp, nil
	case PlayerAutoCardSelectionInd, *PlayerAutoCardSelectionInd:
		return KindPlayerAutoCardSelectionInd, nil
	case GridBoardInd, *GridBoardInd:
		return KindGridBoardInd, nil
	case GridPickRsp, *GridPickRsp:
		return KindGridPickRsp, nil
	case PlayerInventoryInd, *PlayerInventoryInd:
		return KindPlayerInventoryInd, nil
	case ChatIndDown, *ChatIndDown:
		return KindChatIndDown, nil
	default:
		return "", fmt.Errorf("wire: unrecognized message type %T", msg)
	}
}

// Decode unmarshals env's payload into a freshly allocated value of the
// concrete type its Kind names, returned as any; callers type-assert to
// the expected direction's type. dir distinguishes the two "ChatInd"
// names, which share a Kind string but differ by direction.
func Decode(env *Envelope, dir Direction) (any, error) {
	var target any

	switch env.Kind {
	case KindLoginReq:
		target = &LoginReq{}
	case KindJoinRoomReq:
		target = &JoinRoomReq{}
	case KindCreateRoomReq:
		target = &CreateRoomReq{}
	case KindLeaveRoomInd:
		target = &LeaveRoomInd{}
	case KindReadyInd:
		target = &ReadyInd{}
	case KindPlayerCardSelectionReq:
		target = &PlayerCardSelectionReq{}
	case KindGridPickReq:
		target = &GridPickReq{}
	case KindPlayerInventoryUpdateInd:
		target = &PlayerInventoryUpdateInd{}
	case KindChatIndUp:
		if dir == Upstream {
			target = &ChatIndUp{}
		} else {
			target = &ChatIndDown{}
		}
	case KindLoginRsp:
		target = &LoginRsp{}
	case KindAnnouncementsInd:
		target = &AnnouncementsInd{}
	case KindRoomListInd:
		target = &RoomListInd{}
	case KindRoomAddedInd:
		target = &RoomAddedInd{}
	case KindRoomRemovedInd:
		target = &RoomRemovedInd{}
	case KindRoomPlayerCountInd:
		target = &RoomPlayerCountInd{}
	case KindCreateRoomRsp:
		target = &CreateRoomRsp{}
	case KindJoinRoomRsp:
		target = &JoinRoomRsp{}
	case KindRoomStageInd:
		target = &RoomStageInd{}
	case KindPlayerCurrentPackInd:
		target = &PlayerCurrentPackInd{}
	case KindPlayerCardSelectionRsp:
		target = &PlayerCardSelectionRsp{}
	case KindPlayerAutoCardSelectionInd:
		target = &PlayerAutoCardSelectionInd{}
	case KindGridBoardInd:
		target = &GridBoardInd{}
	case KindGridPickRsp:
		target = &GridPickRsp{}
	case KindPlayerInventoryInd:
		target = &PlayerInventoryInd{}
	default:
		return nil, fmt.Errorf("wire: unrecognized envelope kind %q", env.Kind)
	}

	if err := json.Unmarshal(env.Payload, target); err != nil {
		return nil, fmt.Errorf("wire: decoding %s: %w", env.Kind, err)
	}
	return target, nil
}

// Direction disambiguates the one Kind string ("ChatInd") shared by a
// client->server and a server->client payload of different shape.
type Direction uint8

const (
	Upstream Direction = iota
	Downstream
)
