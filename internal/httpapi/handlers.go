package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classifieds/internal/auth"
	"classifieds/internal/logger"
	"classifieds/internal/service"
	"classifieds/models"
)

type cookieSettings struct {
	name   string
	secure bool
	maxAge time.Duration
}

func (s cookieSettings) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, token, int(s.maxAge.Seconds()), "/", "", s.secure, true)
}

func (s cookieSettings) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, "", -1, "/", "", s.secure, true)
}

func caller(c *gin.Context) *models.User {
	return auth.CallerFrom(c.Request.Context())
}

func (a *api) healthz(c *gin.Context) {
	if a.health != nil {
		if err := a.health.Ping(c.Request.Context()); err != nil {
			logger.Warningf("health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// users

func (a *api) register(c *gin.Context) {
	var req registerReq
	if !bind(c, &req) {
		return
	}
	msg, err := a.svc.Users.Register(c.Request.Context(), caller(c), service.RegisterInput{
		Username: req.Username, Email: req.Email, Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusCreated, msg)
}

func (a *api) login(c *gin.Context) {
	var req loginReq
	if !bind(c, &req) {
		return
	}
	token, err := a.svc.Users.Login(c.Request.Context(), caller(c), service.LoginInput{
		Email: req.Email, Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	a.cookie.set(c, token)
	message(c, http.StatusOK, service.MsgLoggedIn)
}

func (a *api) logout(c *gin.Context) {
	a.cookie.clear(c)
	message(c, http.StatusOK, service.MsgLoggedOut)
}

func (a *api) me(c *gin.Context) {
	u, err := a.svc.Users.Me(c.Request.Context(), caller(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (a *api) getUser(c *gin.Context) {
	var req getItemReq
	if !bind(c, &req) {
		return
	}
	u, err := a.svc.Users.Get(c.Request.Context(), caller(c), req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (a *api) listUsers(c *gin.Context) {
	var req paginationReq
	if !bind(c, &req) {
		return
	}
	list, err := a.svc.Users.List(c.Request.Context(), caller(c), req.page())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// advertisements

func (a *api) listAdverts(c *gin.Context) {
	var req paginationReq
	if !bind(c, &req) {
		return
	}
	list, err := a.svc.Adverts.List(c.Request.Context(), req.page())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (a *api) listAdvertsByCategory(c *gin.Context) {
	var req paginationFilteredReq
	if !bind(c, &req) {
		return
	}
	list, err := a.svc.Adverts.ListByCategory(c.Request.Context(), req.CategoryID, req.page())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (a *api) listAdvertsByUser(c *gin.Context) {
	var req userAdvertsReq
	if !bind(c, &req) {
		return
	}
	list, err := a.svc.Adverts.ListByOwner(c.Request.Context(), req.UserID, req.page())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (a *api) getAdvert(c *gin.Context) {
	var req getItemReq
	if !bind(c, &req) {
		return
	}
	adv, err := a.svc.Adverts.Get(c.Request.Context(), req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, adv)
}

func (a *api) createAdvert(c *gin.Context) {
	var req advCreateReq
	if !bind(c, &req) {
		return
	}
	adv, err := a.svc.Adverts.Create(c.Request.Context(), caller(c), service.AdvertInput{
		CategoryID: req.CategoryID, Title: req.Title, Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": service.MsgAdvertCreated, "id": adv.ID})
}

func (a *api) deleteAdvert(c *gin.Context) {
	var req getItemReq
	if !bind(c, &req) {
		return
	}
	msg, err := a.svc.Adverts.Delete(c.Request.Context(), caller(c), req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, msg)
}

func (a *api) createComment(c *gin.Context) {
	var req advCommentReq
	if !bind(c, &req) {
		return
	}
	cm, err := a.svc.Comments.Create(c.Request.Context(), caller(c), service.CommentInput{
		AdvertisementID: req.AdvertisementID, Content: req.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": service.MsgCommentCreated, "id": cm.ID})
}

func (a *api) listComments(c *gin.Context) {
	var req commentsPaginationReq
	if !bind(c, &req) {
		return
	}
	list, err := a.svc.Comments.ListByAdvert(c.Request.Context(), req.AdvertisementID, req.page())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (a *api) createReport(c *gin.Context) {
	var req reportReq
	if !bind(c, &req) {
		return
	}
	rep, err := a.svc.Reports.Create(c.Request.Context(), caller(c), service.ReportInput{
		AdvertisementID: req.AdvID, Title: req.Title, Content: req.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": service.MsgReportCreated, "id": rep.ID})
}

// categories

func (a *api) listCategories(c *gin.Context) {
	var req paginationReq
	if !bind(c, &req) {
		return
	}
	list, err := a.svc.Categories.List(c.Request.Context(), req.page())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (a *api) getCategory(c *gin.Context) {
	var req getItemReq
	if !bind(c, &req) {
		return
	}
	cat, err := a.svc.Categories.Get(c.Request.Context(), req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// admin

func (a *api) changeState(c *gin.Context) {
	var req changeStateReq
	if !bind(c, &req) {
		return
	}
	msg, err := a.svc.Users.ChangeState(c.Request.Context(), caller(c), service.ChangeStateInput{
		Param: req.Param, Email: req.Email,
	})
	if err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, msg)
}

func (a *api) adminDelete(c *gin.Context) {
	var req deleteReq
	if !bind(c, &req) {
		return
	}
	msg, err := a.svc.Admin.Delete(c.Request.Context(), caller(c), req.Type, req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, msg)
}

func (a *api) createCategory(c *gin.Context) {
	var req createCategoryReq
	if !bind(c, &req) {
		return
	}
	cat, err := a.svc.Categories.Create(c.Request.Context(), caller(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": service.MsgCategoryCreated, "id": cat.ID})
}

func (a *api) moveAdvert(c *gin.Context) {
	var req moveCategoryReq
	if !bind(c, &req) {
		return
	}
	msg, err := a.svc.Adverts.MoveToCategory(c.Request.Context(), caller(c), service.MoveInput{
		AdvertisementID: req.AdvID, CategoryID: req.TargetCat,
	})
	if err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, msg)
}

func (a *api) listReports(c *gin.Context) {
	var req paginationReq
	if !bind(c, &req) {
		return
	}
	list, err := a.svc.Reports.List(c.Request.Context(), caller(c), req.page())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (a *api) getReport(c *gin.Context) {
	var req getItemReq
	if !bind(c, &req) {
		return
	}
	rep, err := a.svc.Reports.Get(c.Request.Context(), caller(c), req.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (a *api) addAllowlist(c *gin.Context) {
	var req emailUsageReq
	if !bind(c, &req) {
		return
	}
	n, err := a.svc.Allowlist.AddBulk(c.Request.Context(), caller(c), req.Emails)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d emails have been added to the allowlist", n), "added": n})
}

func (a *api) removeAllowlist(c *gin.Context) {
	var req emailReq
	if !bind(c, &req) {
		return
	}
	msg, err := a.svc.Allowlist.Remove(c.Request.Context(), caller(c), req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, msg)
}

func (a *api) listAllowlist(c *gin.Context) {
	var req paginationReq
	if !bind(c, &req) {
		return
	}
	list, err := a.svc.Allowlist.List(c.Request.Context(), caller(c), req.page())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// nonNil renders empty pages as [] rather than null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
