package protocol

// Outbound message types.
const (
	TypeClientInitResponse      = "client_init_response"
	TypeAuthResponse            = "auth_response"
	TypeCharacterSelectResponse = "character_select_response"
	TypeWorldJoined             = "world_joined"
	TypePlayerJoined            = "player_joined"
	TypePlayerLeft              = "player_left"
	TypeHeartbeatResponse       = "heartbeat_response"
	TypeWorldUpdate             = "world_update"
	TypeError                   = "error"

	TypeRegisterResponse        = "register_response"
	TypeLoginResponse           = "login_response"
	TypeLogoutResponse          = "logout_response"
	TypeCreateCharacterResponse = "create_character_response"
	TypeDeleteCharacterResponse = "delete_character_response"
	TypeCharacterList           = "character_list"
	TypeSaveCharacterResponse   = "save_character_response"
	TypeWorldInfo               = "world_info"
	TypePong                    = "pong"
)

// WorldInfo is the world snapshot included in world_joined and world_info
// replies. Time is the world clock as HH:MM.
type WorldInfo struct {
	Name    string `json:"name"`
	Time    string `json:"time"`
	Day     int    `json:"day"`
	Weather string `json:"weather"`
	Players int    `json:"players"`
}

// CharacterInfo is one roster entry: what peers need to render a character.
type CharacterInfo struct {
	CharacterID   string   `json:"character_id"`
	Name          string   `json:"name"`
	CharacterType string   `json:"character_type,omitempty"`
	Level         int      `json:"level,omitempty"`
	Health        int      `json:"health,omitempty"`
	Position      Position `json:"position"`
}

type ClientInitResponse struct {
	Type       string    `json:"type"`
	ClientID   string    `json:"client_id"`
	ServerTime Timestamp `json:"server_time"`
}

func NewClientInitResponse(clientID string, now Timestamp) *ClientInitResponse {
	return &ClientInitResponse{Type: TypeClientInitResponse, ClientID: clientID, ServerTime: now}
}

type AuthResponse struct {
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	PlayerID string `json:"player_id,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

func NewAuthResponse(playerID, username string) *AuthResponse {
	return &AuthResponse{Type: TypeAuthResponse, Success: true, PlayerID: playerID, Username: username}
}

func NewAuthFailure(msg string) *AuthResponse {
	return &AuthResponse{Type: TypeAuthResponse, Success: false, Message: msg}
}

type CharacterSelectResponse struct {
	Type          string `json:"type"`
	Success       bool   `json:"success"`
	CharacterID   string `json:"character_id,omitempty"`
	CharacterName string `json:"character_name,omitempty"`
	Message       string `json:"message,omitempty"`
}

func NewCharacterSelectResponse(id, name string) *CharacterSelectResponse {
	return &CharacterSelectResponse{Type: TypeCharacterSelectResponse, Success: true, CharacterID: id, CharacterName: name}
}

type WorldJoined struct {
	Type    string          `json:"type"`
	World   WorldInfo       `json:"world"`
	Players []CharacterInfo `json:"players"`
}

func NewWorldJoined(world WorldInfo, players []CharacterInfo) *WorldJoined {
	if players == nil {
		players = []CharacterInfo{}
	}
	return &WorldJoined{Type: TypeWorldJoined, World: world, Players: players}
}

type PlayerJoined struct {
	Type          string   `json:"type"`
	CharacterID   string   `json:"character_id"`
	CharacterName string   `json:"character_name"`
	Position      Position `json:"position"`
}

func NewPlayerJoined(id, name string, pos Position) *PlayerJoined {
	return &PlayerJoined{Type: TypePlayerJoined, CharacterID: id, CharacterName: name, Position: pos}
}

type PlayerLeft struct {
	Type          string `json:"type"`
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
}

func NewPlayerLeft(id, name string) *PlayerLeft {
	return &PlayerLeft{Type: TypePlayerLeft, CharacterID: id, CharacterName: name}
}

// PositionBroadcast relays one character's movement to its peers. It reuses
// the position_update type on the wire so clients handle both directions
// with one code path.
type PositionBroadcast struct {
	Type          string    `json:"type"`
	CharacterID   string    `json:"character_id"`
	CharacterName string    `json:"character_name"`
	Position      Position  `json:"position"`
	Timestamp     Timestamp `json:"timestamp"`
}

func NewPositionBroadcast(id, name string, pos Position, now Timestamp) *PositionBroadcast {
	return &PositionBroadcast{Type: TypePositionUpdate, CharacterID: id, CharacterName: name, Position: pos, Timestamp: now}
}

type ChatBroadcast struct {
	Type          string    `json:"type"`
	CharacterID   string    `json:"character_id"`
	CharacterName string    `json:"character_name"`
	Text          string    `json:"text"`
	Timestamp     Timestamp `json:"timestamp"`
}

func NewChatBroadcast(id, name, text string, now Timestamp) *ChatBroadcast {
	return &ChatBroadcast{Type: TypeChatMessage, CharacterID: id, CharacterName: name, Text: text, Timestamp: now}
}

type HeartbeatResponse struct {
	Type       string    `json:"type"`
	Tick       uint64    `json:"tick"`
	ServerTime Timestamp `json:"server_time"`
}

func NewHeartbeatResponse(tick uint64, now Timestamp) *HeartbeatResponse {
	return &HeartbeatResponse{Type: TypeHeartbeatResponse, Tick: tick, ServerTime: now}
}

// WorldUpdate announces a world clock or weather change. UpdateType is
// "time" or "weather".
type WorldUpdate struct {
	Type       string `json:"type"`
	UpdateType string `json:"update_type"`
	Time       string `json:"time"`
	Day        int    `json:"day"`
	Weather    string `json:"weather"`
}

func NewWorldUpdate(updateType, clock string, day int, weather string) *WorldUpdate {
	return &WorldUpdate{Type: TypeWorldUpdate, UpdateType: updateType, Time: clock, Day: day, Weather: weather}
}

type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorResponse(msg string) *ErrorResponse {
	return &ErrorResponse{Type: TypeError, Message: msg}
}

type RegisterResponse struct {
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	PlayerID string `json:"player_id,omitempty"`
	Message  string `json:"message,omitempty"`
}

type LoginResponse struct {
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	PlayerID string `json:"player_id,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

type LogoutResponse struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
}

type CreateCharacterResponse struct {
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	CharacterID string `json:"character_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

type DeleteCharacterResponse struct {
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	CharacterID string `json:"character_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

type CharacterList struct {
	Type       string          `json:"type"`
	Characters []CharacterInfo `json:"characters"`
}

func NewCharacterList(chars []CharacterInfo) *CharacterList {
	if chars == nil {
		chars = []CharacterInfo{}
	}
	return &CharacterList{Type: TypeCharacterList, Characters: chars}
}

type SaveCharacterResponse struct {
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	CharacterID string `json:"character_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

type WorldInfoResponse struct {
	Type  string    `json:"type"`
	World WorldInfo `json:"world"`
}

func NewWorldInfoResponse(world WorldInfo) *WorldInfoResponse {
	return &WorldInfoResponse{Type: TypeWorldInfo, World: world}
}

type Pong struct {
	Type      string    `json:"type"`
	Timestamp Timestamp `json:"timestamp"`
}

func NewPong(now Timestamp) *Pong {
	return &Pong{Type: TypePong, Timestamp: now}
}
