package auth

import (
	"classifieds/internal/apperr"
	"classifieds/models"
)

// Action is an operation subject to authorization.
type Action int

const (
	ActionRegister Action = iota + 1
	ActionLogin
	ActionViewSelf
	ActionCreateAdvert
	ActionCreateComment
	ActionReportAdvert
	ActionDeleteAdvert
	ActionMoveAdvert
	ActionChangeUserState
	ActionCreateCategory
	ActionDeleteCategory
	ActionAdminDelete
	ActionListReports
	ActionReadReport
	ActionListUsers
	ActionReadUser
	ActionManageAllowlist
)

var actionNames = map[Action]string{
	ActionRegister:        "register",
	ActionLogin:           "login",
	ActionViewSelf:        "view own profile",
	ActionCreateAdvert:    "create advertisement",
	ActionCreateComment:   "comment",
	ActionReportAdvert:    "report advertisement",
	ActionDeleteAdvert:    "delete advertisement",
	ActionMoveAdvert:      "move advertisement",
	ActionChangeUserState: "change user state",
	ActionCreateCategory:  "create category",
	ActionDeleteCategory:  "delete category",
	ActionAdminDelete:     "delete",
	ActionListReports:     "list reports",
	ActionReadReport:      "read report",
	ActionListUsers:       "list users",
	ActionReadUser:        "read user",
	ActionManageAllowlist: "manage superuser allowlist",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown action"
}

// Target carries what the policy needs to know about the object acted upon.
type Target struct {
	// OwnerID is the user owning the target advertisement, if any.
	OwnerID int64
}

// requirement is the caller state an action needs.
type requirement int

const (
	anonymousOnly requirement = iota
	authenticated
	activeUser // authenticated and not banned
	notOwner
	ownerOrSuperuser
	moderator
	superuser
)

var policy = map[Action]requirement{
	ActionRegister:        anonymousOnly,
	ActionLogin:           anonymousOnly,
	ActionViewSelf:        authenticated,
	ActionCreateAdvert:    activeUser,
	ActionCreateComment:   activeUser,
	ActionReportAdvert:    notOwner,
	ActionDeleteAdvert:    ownerOrSuperuser,
	ActionMoveAdvert:      moderator,
	ActionChangeUserState: superuser,
	ActionCreateCategory:  superuser,
	ActionDeleteCategory:  superuser,
	ActionAdminDelete:     superuser,
	ActionListReports:     moderator,
	ActionReadReport:      moderator,
	ActionListUsers:       moderator,
	ActionReadUser:        moderator,
	ActionManageAllowlist: superuser,
}

// Authorize decides whether caller (nil when anonymous) may perform action on target.
// A denied anonymous caller gets an Unauthenticated error, a denied resolved caller a
// Forbidden one. Banned callers are denied every action that needs an active account.
func Authorize(caller *models.User, action Action, target Target) error {
	req, ok := policy[action]
	if !ok {
		return apperr.Forbidden("action is not permitted")
	}
	if req == anonymousOnly {
		if caller != nil {
			return apperr.Forbidden("already logged in")
		}
		return nil
	}
	if caller == nil {
		return apperr.Unauthenticated("not authenticated")
	}
	if req == authenticated {
		return nil
	}
	if caller.IsBanned {
		return apperr.Forbidden("user is banned")
	}
	switch req {
	case activeUser:
		return nil
	case notOwner:
		if caller.ID == target.OwnerID {
			return apperr.Forbidden("you cannot report your own advertisement")
		}
		return nil
	case ownerOrSuperuser:
		if caller.ID == target.OwnerID || caller.IsSuperuser {
			return nil
		}
	case moderator:
		if caller.CanModerate() {
			return nil
		}
	case superuser:
		if caller.IsSuperuser {
			return nil
		}
	}
	return apperr.Forbidden("you don't have enough permission to %s", action)
}

// Allow is the boolean form of Authorize.
func Allow(caller *models.User, action Action, target Target) bool {
	return Authorize(caller, action, target) == nil
}
