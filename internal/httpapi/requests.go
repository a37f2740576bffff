package httpapi

import "classifieds/repository"

type registerReq struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type changeStateReq struct {
	Param string `json:"param" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type deleteReq struct {
	Type string `json:"type" binding:"required"`
	ID   int64  `json:"id" binding:"required,min=1"`
}

type createCategoryReq struct {
	Name string `json:"name" binding:"required"`
}

type moveCategoryReq struct {
	AdvID     int64 `json:"adv_id" binding:"required,min=1"`
	TargetCat int64 `json:"target_cat" binding:"required,min=1"`
}

type advCreateReq struct {
	CategoryID  int64  `json:"category_id" binding:"required,min=1"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type reportReq struct {
	AdvID   int64  `json:"adv_id" binding:"required,min=1"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

type getItemReq struct {
	ID int64 `json:"id" binding:"required,min=1"`
}

// paginationReq is a 1-indexed page. Missing values fall back to the store defaults.
// paginationReq fields are optional, but a present value must be in range.
type paginationReq struct {
	Page     *int `json:"page" binding:"omitempty,min=1"`
	PageSize *int `json:"page_size" binding:"omitempty,min=1,max=100"`
}

func (p paginationReq) page() repository.Page {
	var pg repository.Page
	if p.Page != nil {
		pg.Number = *p.Page
	}
	if p.PageSize != nil {
		pg.Size = *p.PageSize
	}
	return pg
}

type paginationFilteredReq struct {
	paginationReq
	CategoryID int64 `json:"category_id" binding:"required,min=1"`
}

type advCommentReq struct {
	AdvertisementID int64  `json:"advertisement_id" binding:"required,min=1"`
	Content         string `json:"content" binding:"required"`
}

type commentsPaginationReq struct {
	paginationReq
	AdvertisementID int64 `json:"advertisement_id" binding:"required,min=1"`
}

type userAdvertsReq struct {
	paginationReq
	UserID int64 `json:"user_id" binding:"required,min=1"`
}

type emailUsageReq struct {
	Emails []string `json:"emails" binding:"required,min=1,dive,email"`
}

type emailReq struct {
	Email string `json:"email" binding:"required,email"`
}
