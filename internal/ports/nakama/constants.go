package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a
	// lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameLiap is the authoritative match handler name registered with
	// Nakama.
	MatchNameLiap = "liap_match"

	// MatchLabelKeyOpenSeats is the label key advertising open seats.
	MatchLabelKeyOpenSeats = "open"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame      int64 = 1
	OpRedealDecision int64 = 2
	OpDeclare        int64 = 3
	OpPlayPieces     int64 = 4
	OpResync         int64 = 5

	// Server -> Client
	OpError int64 = 99

	OpPlayerJoined       int64 = 101
	OpPlayerLeft         int64 = 102
	OpPlayerConnected    int64 = 103
	OpPlayerDisconnected int64 = 104
	OpGameStarted        int64 = 105
	OpRoundStarted       int64 = 106
	OpHandDealt          int64 = 107 // sent privately
	OpRedealOffered      int64 = 108
	OpRedealAccepted     int64 = 109
	OpRedealDeclined     int64 = 110
	OpDeclarationMade    int64 = 111
	OpPiecesPlayed       int64 = 112
	OpTurnResolved       int64 = 113
	OpRoundScored        int64 = 114
	OpGameOver           int64 = 115
	OpPhaseChanged       int64 = 116
)
