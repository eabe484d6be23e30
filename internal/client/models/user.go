package models

import "encoding/json"

// User is the account record returned by login and /auth/me. Unknown fields
// are kept in Extra so a shallow merge never drops server data.
type User struct {
	ID         RefID          `json:"id"`
	Email      string         `json:"email"`
	Nickname   string         `json:"nickname"`
	IsVerified bool           `json:"is_verified,omitempty"`
	CreatedAt  Timestamp      `json:"created_at,omitempty"`
	Extra      map[string]any `json:"-"`
}

// UserPatch carries a partial profile update; nil fields are left alone.
type UserPatch struct {
	Email    *string `json:"email,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Merge returns a copy of u with the non-nil fields of p applied.
func (u User) Merge(p UserPatch) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Nickname != nil {
		u.Nickname = *p.Nickname
	}
	if u.Extra != nil {
		extra := make(map[string]any, len(u.Extra))
		for k, v := range u.Extra {
			extra[k] = v
		}
		u.Extra = extra
	}
	return u
}

// Credentials is the result of a successful login.
type Credentials struct {
	Token     string `json:"access_token"`
	TokenType string `json:"token_type,omitempty"`
	User      *User  `json:"user,omitempty"`
}

var userKnownFields = []string{"id", "email", "nickname", "is_verified", "created_at"}

type userAlias User

func (u *User) UnmarshalJSON(b []byte) error {
	var a userAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range userKnownFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		a.Extra = raw
	}
	*u = User(a)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(userAlias(u))
	if err != nil || len(u.Extra) == 0 {
		return b, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range u.Extra {
		if _, known := out[k]; !known {
			out[k] = v
		}
	}
	return json.Marshal(out)
}
