package authorization

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Scope is a Spotify authorization scope identifier.
// See https://developer.spotify.com/documentation/general/guides/authorization/scopes/
type Scope string

const (
	ScopeAppRemoteControl          Scope = "app-remote-control"
	ScopePlaylistModifyPrivate     Scope = "playlist-modify-private"
	ScopePlaylistModifyPublic      Scope = "playlist-modify-public"
	ScopePlaylistReadCollaborative Scope = "playlist-read-collaborative"
	ScopePlaylistReadPrivate       Scope = "playlist-read-private"
	ScopeStreaming                 Scope = "streaming"
	ScopeUgcImageUpload            Scope = "ugc-image-upload"
	ScopeUserFollowModify          Scope = "user-follow-modify"
	ScopeUserFollowRead            Scope = "user-follow-read"
	ScopeUserLibraryModify         Scope = "user-library-modify"
	ScopeUserLibraryRead           Scope = "user-library-read"
	ScopeUserModifyPlaybackState   Scope = "user-modify-playback-state"
	ScopeUserReadCurrentlyPlaying  Scope = "user-read-currently-playing"
	ScopeUserReadEmail             Scope = "user-read-email"
	ScopeUserReadPlaybackPosition  Scope = "user-read-playback-position"
	ScopeUserReadPlaybackState     Scope = "user-read-playback-state"
	ScopeUserReadPrivate           Scope = "user-read-private"
	ScopeUserReadRecentlyPlayed    Scope = "user-read-recently-played"
	ScopeUserTopRead               Scope = "user-top-read"
)

var allScopes = map[Scope]struct{}{
	ScopeAppRemoteControl:          {},
	ScopePlaylistModifyPrivate:     {},
	ScopePlaylistModifyPublic:      {},
	ScopePlaylistReadCollaborative: {},
	ScopePlaylistReadPrivate:       {},
	ScopeStreaming:                 {},
	ScopeUgcImageUpload:            {},
	ScopeUserFollowModify:          {},
	ScopeUserFollowRead:            {},
	ScopeUserLibraryModify:         {},
	ScopeUserLibraryRead:           {},
	ScopeUserModifyPlaybackState:   {},
	ScopeUserReadCurrentlyPlaying:  {},
	ScopeUserReadEmail:             {},
	ScopeUserReadPlaybackPosition:  {},
	ScopeUserReadPlaybackState:     {},
	ScopeUserReadPrivate:           {},
	ScopeUserReadRecentlyPlayed:    {},
	ScopeUserTopRead:               {},
}

// ParseScope maps a scope identifier back to its Scope.
func ParseScope(s string) (Scope, error) {
	scope := Scope(s)
	if _, ok := allScopes[scope]; !ok {
		return "", errors.Errorf("unrecognised scope %q", s)
	}
	return scope, nil
}

func (s Scope) String() string { return string(s) }

// Scopes is an ordered set of requested permission scopes. An empty set grants
// access to publicly available information only.
type Scopes []Scope

// String serializes the scopes as their identifiers joined by a single space,
// in the order provided.
func (s Scopes) String() string {
	identifiers := make([]string, 0, len(s))
	for _, scope := range s {
		identifiers = append(identifiers, string(scope))
	}
	return strings.Join(identifiers, " ")
}

// ParseScopes splits a space-joined scope string, mapping each token back to a
// Scope. The whole collection fails if any token is unrecognised. An empty
// string parses to an empty set.
func ParseScopes(s string) (Scopes, error) {
	if s == "" {
		return Scopes{}, nil
	}
	tokens := strings.Split(s, " ")
	scopes := make(Scopes, 0, len(tokens))
	for _, token := range tokens {
		scope, err := ParseScope(token)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid scope string %q", s)
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

// MarshalJSON serializes the scopes as a single space-joined string.
func (s Scopes) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a space-joined scope string.
func (s *Scopes) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	scopes, err := ParseScopes(joined)
	if err != nil {
		return err
	}
	*s = scopes
	return nil
}
