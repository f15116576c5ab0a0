package pipeline

import (
	"bytes"
	"strings"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

// Resolve maps a free-text assignee hint to a known user id.
//
// An exact case-insensitive email match wins. Otherwise the hint is matched as a
// case-insensitive substring of each user's name; when several names match,
// the user with the lowest id is chosen. A nil, blank or unmatched hint
// resolves to nil.
func Resolve(hint *string, users []*entities.User) *uuid.UUID {
	if hint == nil {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(*hint))
	if needle == "" {
		return nil
	}

	for _, u := range users {
		if u != nil && strings.ToLower(u.Email) == needle {
			id := u.ID
			return &id
		}
	}

	var best *entities.User
	for _, u := range users {
		if u == nil || !strings.Contains(strings.ToLower(u.Name), needle) {
			continue
		}
		if best == nil || bytes.Compare(u.ID[:], best.ID[:]) < 0 {
			best = u
		}
	}
	if best == nil {
		return nil
	}
	id := best.ID
	return &id
}
