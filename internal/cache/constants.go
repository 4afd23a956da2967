package cache

import (
	"fmt"
	"strconv"

	"github.com/qs-lzh/film-catalog/internal/util"
)

// key names definition
const (
	SessionKey     = "session:%s"      // session record, '%s' is the session token
	SessionUserKey = "session:%s:user" // denormalized user of a session, '%s' is the session token

	OMDbDetailsKey = "omdb:details:%s:%s" // enrichment record, title is normalized, year may be empty
	OMDbPosterKey  = "omdb:poster:%s:%s"  // poster url only
)

func MakeSessionKey(token string) string {
	return fmt.Sprintf(SessionKey, token)
}

func MakeSessionUserKey(token string) string {
	return fmt.Sprintf(SessionUserKey, token)
}

func MakeOMDbDetailsKey(title string, year int) string {
	return fmt.Sprintf(OMDbDetailsKey, util.Normalize(title), yearPart(year))
}

func MakeOMDbPosterKey(title string, year int) string {
	return fmt.Sprintf(OMDbPosterKey, util.Normalize(title), yearPart(year))
}

func yearPart(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}

// struct definitions
// values written under SessionKey follow this struct
type SessionValue struct {
	UserID string `json:"userId"`
}
