package domain

import "strings"

// Product is a catalog entry owned by the storefront.
type Product struct {
	ID           string
	Name         string
	ArtistID     string
	ArtistName   string
	ArtistAvatar string
	Images       []string
}

// ServiceAgent is a customer-service directory entry. Lists written by
// different app versions use either id/name/avatar or userId/nickName/avatarUrl.
type ServiceAgent struct {
	ID        string
	UserID    string
	Name      string
	NickName  string
	Avatar    string
	AvatarURL string
	IsActive  bool
}

// Keys returns the identities the agent can be referenced by.
func (s ServiceAgent) Keys() []string {
	var keys []string
	if s.ID != "" {
		keys = append(keys, s.ID)
	}
	if s.UserID != "" && s.UserID != s.ID {
		keys = append(keys, s.UserID)
	}
	return keys
}

// Key is the primary identity.
func (s ServiceAgent) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.UserID
}

func (s ServiceAgent) DisplayName() string {
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	return s.NickName
}

func (s ServiceAgent) DisplayAvatar() string {
	if strings.TrimSpace(s.Avatar) != "" {
		return s.Avatar
	}
	return s.AvatarURL
}

const ArtistStatusApproved = "approved"

// Artist is an entry of the artist application directory.
type Artist struct {
	ID     string
	UserID string
	Name   string
	Avatar string
	Status string
}

func (a Artist) Approved() bool {
	return strings.EqualFold(a.Status, ArtistStatusApproved)
}

// ProductFromRecord decodes a catalog record; it reports false when the
// record has neither an id nor a name to be matched by.
func ProductFromRecord(r Record) (Product, bool) {
	p := Product{
		ID:           r.String("id"),
		Name:         r.String("name"),
		ArtistID:     r.String(FieldArtistID),
		ArtistName:   r.String(FieldArtistName),
		ArtistAvatar: r.String(FieldArtistAvatar),
	}
	for _, img := range AsSlice(r["images"]) {
		if s := AsString(img); s != "" {
			p.Images = append(p.Images, s)
		}
	}
	if p.ID == "" && strings.TrimSpace(p.Name) == "" {
		return Product{}, false
	}
	return p, true
}

func ServiceAgentFromRecord(r Record) (ServiceAgent, bool) {
	s := ServiceAgent{
		ID:        r.String("id"),
		UserID:    r.String("userId"),
		Name:      r.String("name"),
		NickName:  r.String("nickName"),
		Avatar:    r.String("avatar"),
		AvatarURL: r.String("avatarUrl"),
		IsActive:  AsBool(r["isActive"]),
	}
	if s.Key() == "" {
		return ServiceAgent{}, false
	}
	return s, true
}

func ArtistFromRecord(r Record) (Artist, bool) {
	a := Artist{
		ID:     r.String("id"),
		UserID: r.String("userId"),
		Name:   r.String("name"),
		Avatar: r.String("avatar"),
		Status: r.String("status"),
	}
	if a.Name == "" {
		a.Name = r.String(FieldArtistName)
	}
	if a.ID == "" && a.UserID == "" {
		return Artist{}, false
	}
	return a, true
}
