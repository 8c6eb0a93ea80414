package schema

import (
	"net/http"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
)

type SortOrder string

const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

// ParseSortOrder accepts exactly "ASC" or "DESC".
func ParseSortOrder(token string) (SortOrder, error) {
	switch SortOrder(token) {
	case Asc, Desc:
		return SortOrder(token), nil
	}
	return "", apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
		"sort order must be %s or %s, got %q", Asc, Desc, token)
}

type SortField struct {
	Name  string    `json:"name" yaml:"name"`
	Order SortOrder `json:"order" yaml:"order"`
}

// ParseSortField parses "points:DESC". A missing order defaults to DESC.
func ParseSortField(text string) (SortField, error) {
	name, orderTok, found := text, "", false
	if i := strings.LastIndexByte(text, ':'); i >= 0 {
		name, orderTok, found = text[:i], text[i+1:], true
	}
	if name == "" {
		return SortField{}, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"sort field name is required in %q", text)
	}
	if !found {
		return SortField{Name: name, Order: Desc}, nil
	}
	order, err := ParseSortOrder(orderTok)
	if err != nil {
		return SortField{}, err
	}
	return SortField{Name: name, Order: order}, nil
}
