package mention

import (
	"context"
	"errors"
	"regexp"

	"recruithub/internal/domain"
	hub_errors "recruithub/pkg/errors"
)

// mentionPattern captures maximal @name tokens: "@" followed by one or more
// word characters (letters, digits, underscore).
var mentionPattern = regexp.MustCompile(`@(\w+)`)

// Extract returns every @name token in text, in order, duplicates preserved.
// The leading "@" is stripped.
func Extract(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, m[1])
	}
	return tokens
}

// UserLookup resolves a display name to a user. Exact match only.
type UserLookup interface {
	GetByName(ctx context.Context, name string) (domain.User, error)
}

// Resolver turns raw message text into the ordered mention list stored on a
// message. Tokens that do not match an existing user's display name exactly
// are silently dropped. Duplicate resolutions to the same user are kept;
// notification fan-out is responsible for not double-notifying.
type Resolver struct {
	users UserLookup
}

func NewResolver(users UserLookup) *Resolver {
	return &Resolver{users: users}
}

func (r *Resolver) Resolve(ctx context.Context, text string) ([]domain.Mention, error) {
	tokens := Extract(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	mentions := make([]domain.Mention, 0, len(tokens))
	for _, token := range tokens {
		user, err := r.users.GetByName(ctx, token)
		if err != nil {
			if errors.Is(err, hub_errors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		mentions = append(mentions, domain.Mention{
			UserID:   user.ID,
			Username: user.Name,
			Position: len(mentions),
		})
	}
	return mentions, nil
}
