package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"classifieds/internal/apperr"
	"classifieds/models"
)

func TestAuthorize_Table(t *testing.T) {
	user := &models.User{ID: 1}
	other := &models.User{ID: 2}
	mod := &models.User{ID: 3, IsModerator: true}
	su := &models.User{ID: 4, IsSuperuser: true}
	banned := &models.User{ID: 5, IsBanned: true}
	bannedSU := &models.User{ID: 6, IsBanned: true, IsSuperuser: true}

	ownedBy1 := Target{OwnerID: 1}

	tests := []struct {
		name   string
		caller *models.User
		action Action
		target Target
		want   *apperr.Error
	}{
		{"anonymous registers", nil, ActionRegister, Target{}, nil},
		{"logged in cannot register", user, ActionRegister, Target{}, apperr.ErrForbidden},
		{"anonymous logs in", nil, ActionLogin, Target{}, nil},
		{"anonymous cannot create advert", nil, ActionCreateAdvert, Target{}, apperr.ErrUnauthenticated},
		{"user creates advert", user, ActionCreateAdvert, Target{}, nil},
		{"banned cannot create advert", banned, ActionCreateAdvert, Target{}, apperr.ErrForbidden},
		{"banned cannot comment", banned, ActionCreateComment, Target{}, apperr.ErrForbidden},
		{"banned sees own profile", banned, ActionViewSelf, Target{}, nil},
		{"anonymous profile", nil, ActionViewSelf, Target{}, apperr.ErrUnauthenticated},
		{"report others", other, ActionReportAdvert, ownedBy1, nil},
		{"self report rejected", user, ActionReportAdvert, ownedBy1, apperr.ErrForbidden},
		{"owner deletes", user, ActionDeleteAdvert, ownedBy1, nil},
		{"stranger cannot delete", other, ActionDeleteAdvert, ownedBy1, apperr.ErrForbidden},
		{"moderator cannot delete others", mod, ActionDeleteAdvert, ownedBy1, apperr.ErrForbidden},
		{"superuser deletes any", su, ActionDeleteAdvert, ownedBy1, nil},
		{"moderator moves", mod, ActionMoveAdvert, Target{}, nil},
		{"superuser moves", su, ActionMoveAdvert, Target{}, nil},
		{"user cannot move", user, ActionMoveAdvert, Target{}, apperr.ErrForbidden},
		{"anonymous cannot move", nil, ActionMoveAdvert, Target{}, apperr.ErrUnauthenticated},
		{"superuser changes state", su, ActionChangeUserState, Target{}, nil},
		{"moderator cannot change state", mod, ActionChangeUserState, Target{}, apperr.ErrForbidden},
		{"superuser creates category", su, ActionCreateCategory, Target{}, nil},
		{"moderator cannot create category", mod, ActionCreateCategory, Target{}, apperr.ErrForbidden},
		{"superuser deletes category", su, ActionDeleteCategory, Target{}, nil},
		{"superuser admin delete", su, ActionAdminDelete, Target{}, nil},
		{"user cannot admin delete", user, ActionAdminDelete, Target{}, apperr.ErrForbidden},
		{"moderator lists reports", mod, ActionListReports, Target{}, nil},
		{"user cannot list reports", user, ActionListReports, Target{}, apperr.ErrForbidden},
		{"moderator reads report", mod, ActionReadReport, Target{}, nil},
		{"superuser lists users", su, ActionListUsers, Target{}, nil},
		{"moderator reads user", mod, ActionReadUser, Target{}, nil},
		{"user cannot read user", user, ActionReadUser, Target{}, apperr.ErrForbidden},
		{"superuser manages allowlist", su, ActionManageAllowlist, Target{}, nil},
		{"moderator cannot manage allowlist", mod, ActionManageAllowlist, Target{}, apperr.ErrForbidden},
		{"banned superuser loses rights", bannedSU, ActionAdminDelete, Target{}, apperr.ErrForbidden},
		{"unknown action", su, Action(999), Target{}, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.action, tt.target)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.True(t, Allow(tt.caller, tt.action, tt.target))
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, Allow(tt.caller, tt.action, tt.target))
		})
	}
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "move advertisement", ActionMoveAdvert.String())
	assert.Equal(t, "unknown action", Action(0).String())
}
