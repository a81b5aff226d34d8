package authz

import (
	"testing"

	"gin-catalog/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	admin := &Principal{ID: 1, DisplayName: "Admin", IsAdmin: true}
	owner := &Principal{ID: 2, DisplayName: "Owner"}
	other := &Principal{ID: 3, DisplayName: "Other"}

	tests := []struct {
		name      string
		principal *Principal
		op        Operation
		res       Resource
		want      apperrors.Kind
		allowed   bool
	}{
		{"anonymous reads categories", nil, Read, Category(), 0, true},
		{"anonymous reads items", nil, Read, Item(2), 0, true},
		{"anonymous creates category", nil, Create, Category(), apperrors.Forbidden, false},
		{"user creates category", owner, Create, Category(), apperrors.Forbidden, false},
		{"user updates category", owner, Update, Category(), apperrors.Forbidden, false},
		{"user deletes category", owner, Delete, Category(), apperrors.Forbidden, false},
		{"admin creates category", admin, Create, Category(), 0, true},
		{"admin updates category", admin, Update, Category(), 0, true},
		{"admin deletes category", admin, Delete, Category(), 0, true},
		{"anonymous creates item", nil, Create, Item(0), apperrors.Unauthenticated, false},
		{"user creates item", other, Create, Item(0), 0, true},
		{"anonymous updates item", nil, Update, Item(2), apperrors.Unauthenticated, false},
		{"owner updates item", owner, Update, Item(2), 0, true},
		{"owner deletes item", owner, Delete, Item(2), 0, true},
		{"other updates item", other, Update, Item(2), apperrors.Forbidden, false},
		{"other deletes item", other, Delete, Item(2), apperrors.Forbidden, false},
		{"admin updates foreign item", admin, Update, Item(2), apperrors.Forbidden, false},
		{"admin deletes foreign item", admin, Delete, Item(2), apperrors.Forbidden, false},
		{"admin deletes own item", admin, Delete, Item(1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.op, tt.res)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.want, apperrors.KindOf(err))
		})
	}
}

func TestAuthorizeIsPure(t *testing.T) {
	p := &Principal{ID: 7, DisplayName: "Seven"}
	_ = Authorize(p, Delete, Item(8))
	assert.Equal(t, &Principal{ID: 7, DisplayName: "Seven"}, p)
}
