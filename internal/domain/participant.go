package domain

// VoiceParticipant is one member of a voice room as announced to its peers.
// ConnID (not UserID) is the mesh address: signaling targets a connection.
type VoiceParticipant struct {
	UserID UserID `json:"userId"`
	ConnID string `json:"socketId"`
}
