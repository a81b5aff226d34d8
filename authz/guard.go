// Package authz decides whether a principal may perform an operation on a
// catalog resource. It has no side effects and no storage access.
package authz

import (
	"gin-catalog/apperrors"
	"gin-catalog/constants"
)

// Principal is the authenticated actor of a request. A nil *Principal is the
// anonymous actor. IsAdmin is cached at login time.
type Principal struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

type Operation int

const (
	Read Operation = iota
	Create
	Update
	Delete
)

func (o Operation) String() string {
	switch o {
	case Read:
		return "read"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

type ResourceKind int

const (
	CategoryResource ResourceKind = iota
	ItemResource
)

func (k ResourceKind) String() string {
	if k == CategoryResource {
		return "category"
	}
	return "item"
}

// Resource describes the target of an operation. OwnerID is only consulted
// for item updates and deletes.
type Resource struct {
	Kind    ResourceKind
	OwnerID uint
}

func Category() Resource {
	return Resource{Kind: CategoryResource}
}

func Item(ownerID uint) Resource {
	return Resource{Kind: ItemResource, OwnerID: ownerID}
}

// Authorize returns nil when p may perform op on res, otherwise an
// apperrors.Error of kind Unauthenticated or Forbidden.
//
// Admins have no override on items they do not own.
func Authorize(p *Principal, op Operation, res Resource) error {
	if op == Read {
		return nil
	}

	switch res.Kind {
	case CategoryResource:
		if p == nil || !p.IsAdmin {
			return apperrors.New(apperrors.Forbidden, constants.ErrNoAccess)
		}
		return nil
	case ItemResource:
		if p == nil {
			return apperrors.New(apperrors.Unauthenticated, constants.ErrLoginRequired)
		}
		if op == Create {
			return nil
		}
		if p.ID != res.OwnerID {
			return apperrors.New(apperrors.Forbidden, constants.ErrItemNoAccess)
		}
		return nil
	}
	return apperrors.New(apperrors.Forbidden, constants.ErrNoAccess)
}
