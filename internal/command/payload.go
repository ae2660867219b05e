package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// QueryCommand is a command decoded from inline-button callback data.
// Exactly one of Offset, Detail or Progress is non-nil.
type QueryCommand struct {
	Offset   *OffsetQuery
	Detail   *DetailQuery
	Progress *ProgressQuery
}

// OffsetQuery asks for page Offset of a user's anime list.
type OffsetQuery struct {
	KitsuId int64
	Offset  int64
}

// DetailQuery asks for the detail view of one anime in a list.
type DetailQuery struct {
	KitsuId int64
	AnimeId int64
}

// ProgressQuery asks to set the watched-episode count of a library entry.
// AnimeId and EntryId are opaque Kitsu identifiers and must not contain '/'.
type ProgressQuery struct {
	KitsuId  int64
	AnimeId  string
	EntryId  string
	Progress int64
}

// ErrBadPayload reports callback data that does not match the payload
// grammar: wrong segment count, a non-numeric value in a numeric slot,
// or an unknown discriminator.
var ErrBadPayload = errors.New("malformed callback payload")

// Payload grammar, all forms wrapped in slashes:
//
//	/{kitsu_id}/offset/{offset}/
//	/{kitsu_id}/detail/{anime_id}/
//	/{kitsu_id}/progress/{anime_id}/{entry_id}/{progress}/
func ParseQueryCommand(payload string) (QueryCommand, error) {
	if !strings.HasPrefix(payload, "/") || !strings.HasSuffix(payload, "/") {
		return QueryCommand{}, ErrBadPayload
	}

	parts := strings.Split(payload, "/")
	// "/a/offset/0/" splits into ["", "a", "offset", "0", ""].
	if len(parts) < 4 {
		return QueryCommand{}, ErrBadPayload
	}
	fields := parts[1 : len(parts)-1]

	kitsuId, err := parseId(fields[0])
	if err != nil {
		return QueryCommand{}, err
	}

	switch fields[1] {
	case "offset":
		if len(fields) != 3 {
			return QueryCommand{}, ErrBadPayload
		}
		offset, err := parseId(fields[2])
		if err != nil {
			return QueryCommand{}, err
		}
		return QueryCommand{Offset: &OffsetQuery{KitsuId: kitsuId, Offset: offset}}, nil
	case "detail":
		if len(fields) != 3 {
			return QueryCommand{}, ErrBadPayload
		}
		animeId, err := parseId(fields[2])
		if err != nil {
			return QueryCommand{}, err
		}
		return QueryCommand{Detail: &DetailQuery{KitsuId: kitsuId, AnimeId: animeId}}, nil
	case "progress":
		if len(fields) != 5 || fields[2] == "" || fields[3] == "" {
			return QueryCommand{}, ErrBadPayload
		}
		progress, err := parseId(fields[4])
		if err != nil {
			return QueryCommand{}, err
		}
		return QueryCommand{Progress: &ProgressQuery{
			KitsuId:  kitsuId,
			AnimeId:  fields[2],
			EntryId:  fields[3],
			Progress: progress,
		}}, nil
	default:
		return QueryCommand{}, ErrBadPayload
	}
}

// parseId parses a non-negative decimal integer field. Signs are not
// part of the grammar even though ParseInt would accept them.
func parseId(s string) (int64, error) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, ErrBadPayload
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrBadPayload
	}
	return n, nil
}

// OffsetPayload encodes the offset form of the payload grammar.
func OffsetPayload(kitsuId, offset int64) string {
	return fmt.Sprintf("/%d/offset/%d/", kitsuId, offset)
}

// DetailPayload encodes the detail form of the payload grammar.
func DetailPayload(kitsuId, animeId int64) string {
	return fmt.Sprintf("/%d/detail/%d/", kitsuId, animeId)
}

// ProgressPayload encodes the progress form of the payload grammar.
func ProgressPayload(kitsuId int64, animeId, entryId string, progress int64) string {
	return fmt.Sprintf("/%d/progress/%s/%s/%d/", kitsuId, animeId, entryId, progress)
}
